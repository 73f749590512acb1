package chat

import "time"

// Status is the latest lifecycle transition a session went through.
type Status string

const (
	StatusActive      Status = "active"
	StatusAdminJoined Status = "admin_joined"
	StatusEnded       Status = "ended"
	StatusFlagged     Status = "flagged"
)

// Mode decides who answers the user: the completion service or a human admin.
type Mode string

const (
	ModeBot   Mode = "bot"
	ModeHuman Mode = "human"
)

// MoodEntry is a self-reported mood sample.
type MoodEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Mood      int       `json:"mood"`
	Emotion   string    `json:"emotion,omitempty"`
}

// Session captures one conversation between a user and the assistant (or an admin).
type Session struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	UserName       string      `json:"userName"`
	PersonaID      string      `json:"personaId"`
	Language       string      `json:"language"`
	StartTime      time.Time   `json:"startTime"`
	LastActivity   time.Time   `json:"lastActivity"`
	Status         Status      `json:"status"`
	Mode           Mode        `json:"mode"`
	AdminName      string      `json:"adminName,omitempty"`
	Messages       []Message   `json:"messages"`
	CurrentEmotion string      `json:"currentEmotion,omitempty"`
	MoodHistory    []MoodEntry `json:"moodHistory"`
	Notes          string      `json:"notes,omitempty"`
	Flagged        bool        `json:"flagged,omitempty"`
	FlagReason     string      `json:"flagReason,omitempty"`
}

// HumanDriven reports whether an admin has taken over the session.
func (s Session) HumanDriven() bool {
	return s.Mode == ModeHuman
}

// Clone returns a deep copy so callers can't reach into the stored logs.
func (s Session) Clone() Session {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	out.MoodHistory = append([]MoodEntry(nil), s.MoodHistory...)
	return out
}
