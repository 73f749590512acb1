package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleAdmin  Role = "admin"
	RoleSystem Role = "system"
)

// Message is one immutable entry of a session log.
type Message struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Emotion    string    `json:"emotion,omitempty"`
	Intent     string    `json:"intent,omitempty"`
	Persona    string    `json:"persona,omitempty"`
	AdminName  string    `json:"adminName,omitempty"`
	Flagged    bool      `json:"flagged,omitempty"`
	FlagReason string    `json:"flagReason,omitempty"`
}
