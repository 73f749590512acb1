package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	analysis "github.com/mentalmate/mindbot/backend/internal/analysis/emotion"
	"github.com/mentalmate/mindbot/backend/internal/model/chat"
)

// ActionType names a state transition of a session.
type ActionType string

const (
	ActionSubmitUserMessage   ActionType = "SUBMIT_USER_MESSAGE"
	ActionAppendBotMessage    ActionType = "APPEND_BOT_MESSAGE"
	ActionAppendSystemMessage ActionType = "APPEND_SYSTEM_MESSAGE"
	ActionJoinSession         ActionType = "JOIN_SESSION"
	ActionLeaveSession        ActionType = "LEAVE_SESSION"
	ActionFlagSession         ActionType = "FLAG_SESSION"
	ActionRecordMood          ActionType = "RECORD_MOOD"
	ActionSubmitAdminMessage  ActionType = "SUBMIT_ADMIN_MESSAGE"
	ActionSaveNotes           ActionType = "SAVE_NOTES"
	ActionEndSession          ActionType = "END_SESSION"
)

// FarewellMessage closes every ended session.
const FarewellMessage = "Thank you for chatting with me today. Remember, you're not alone, and it's okay to seek help when you need it. Take care of yourself!"

// Action is one request to change a session. Build it with the constructors below.
type Action struct {
	Type      ActionType
	Content   string
	Emotion   string
	Intent    string
	Persona   string
	AdminName string
	Flagged   bool
	Reason    string
	Mood      int
	Notes     string

	// BotDrivenOnly makes a bot append fail with ErrHumanDriven once an admin took over.
	BotDrivenOnly bool
}

func SubmitUserMessage(content string, flagged bool, reason string) Action {
	return Action{Type: ActionSubmitUserMessage, Content: content, Flagged: flagged, Reason: reason}
}

// AppendBotReply appends an automated reply. It is dropped with ErrHumanDriven if the
// session was taken over in the meantime.
func AppendBotReply(content, emotion, intent, persona string) Action {
	return Action{
		Type:          ActionAppendBotMessage,
		Content:       content,
		Emotion:       emotion,
		Intent:        intent,
		Persona:       persona,
		BotDrivenOnly: true,
	}
}

func AppendSystemMessage(content string, flagged bool, reason string) Action {
	return Action{Type: ActionAppendSystemMessage, Content: content, Flagged: flagged, Reason: reason}
}

// JoinSession hands the session to adminName. An empty announcement uses JoinAnnouncement.
func JoinSession(adminName, announcement string) Action {
	return Action{Type: ActionJoinSession, AdminName: adminName, Content: announcement}
}

func LeaveSession(adminName string) Action {
	return Action{Type: ActionLeaveSession, AdminName: adminName}
}

func FlagSession(reason string) Action {
	return Action{Type: ActionFlagSession, Reason: reason}
}

func RecordMood(mood int) Action {
	return Action{Type: ActionRecordMood, Mood: mood}
}

func SubmitAdminMessage(adminName, content string) Action {
	return Action{Type: ActionSubmitAdminMessage, AdminName: adminName, Content: content}
}

func SaveNotes(notes string) Action {
	return Action{Type: ActionSaveNotes, Notes: notes}
}

func EndSession() Action {
	return Action{Type: ActionEndSession}
}

// JoinAnnouncement is what the user sees when a support specialist takes over.
func JoinAnnouncement(adminName string) string {
	return fmt.Sprintf("%s (Support Specialist) has joined the conversation to provide additional assistance.", adminName)
}

// LeaveAnnouncement is what the user sees when the specialist hands back to the bot.
func LeaveAnnouncement(adminName string) string {
	return fmt.Sprintf("%s (Support Specialist) has left the conversation. MindBot will continue to support you.", adminName)
}

// MoodAnnouncement confirms a recorded mood sample.
func MoodAnnouncement(emotion string, mood int) string {
	return fmt.Sprintf("You've updated your mood to %s (%d/10).", emotion, mood)
}

// reduce applies a to s in place and returns the messages it appended.
func reduce(s *chat.Session, a Action, now time.Time) ([]chat.Message, error) {
	ended := s.Status == chat.StatusEnded
	switch a.Type {
	case ActionSubmitUserMessage:
		if ended {
			return nil, ErrSessionEnded
		}
		if strings.TrimSpace(a.Content) == "" {
			return nil, ErrEmptyMessage
		}
		msg := newMessage(s, chat.RoleUser, a.Content, now)
		if a.Flagged {
			msg.Flagged = true
			msg.FlagReason = a.Reason
		}
		return appendMessages(s, now, msg), nil

	case ActionAppendBotMessage:
		if ended {
			return nil, ErrSessionEnded
		}
		if a.BotDrivenOnly && s.HumanDriven() {
			return nil, ErrHumanDriven
		}
		if strings.TrimSpace(a.Content) == "" {
			return nil, ErrEmptyMessage
		}
		msg := newMessage(s, chat.RoleBot, a.Content, now)
		msg.Emotion = a.Emotion
		msg.Intent = a.Intent
		msg.Persona = a.Persona
		if msg.Persona == "" {
			msg.Persona = s.PersonaID
		}
		if a.Emotion != "" {
			s.CurrentEmotion = a.Emotion
		}
		return appendMessages(s, now, msg), nil

	case ActionAppendSystemMessage:
		if strings.TrimSpace(a.Content) == "" {
			return nil, ErrEmptyMessage
		}
		msg := newMessage(s, chat.RoleSystem, a.Content, now)
		if a.Flagged {
			msg.Flagged = true
			msg.FlagReason = a.Reason
		}
		return appendMessages(s, now, msg), nil

	case ActionJoinSession:
		if ended {
			return nil, ErrSessionEnded
		}
		name := strings.TrimSpace(a.AdminName)
		if name == "" {
			return nil, ErrAdminRequired
		}
		// First admin in keeps the session until they leave.
		if s.HumanDriven() {
			return nil, nil
		}
		s.Mode = chat.ModeHuman
		s.Status = chat.StatusAdminJoined
		s.AdminName = name
		content := a.Content
		if strings.TrimSpace(content) == "" {
			content = JoinAnnouncement(name)
		}
		msg := newMessage(s, chat.RoleAdmin, content, now)
		msg.AdminName = name
		return appendMessages(s, now, msg), nil

	case ActionLeaveSession:
		if !s.HumanDriven() {
			return nil, nil
		}
		name := strings.TrimSpace(a.AdminName)
		if name == "" {
			name = s.AdminName
		}
		s.Mode = chat.ModeBot
		s.AdminName = ""
		if !ended {
			s.Status = chat.StatusActive
			if s.Flagged {
				s.Status = chat.StatusFlagged
			}
		}
		msg := newMessage(s, chat.RoleAdmin, LeaveAnnouncement(name), now)
		msg.AdminName = name
		return appendMessages(s, now, msg), nil

	case ActionFlagSession:
		s.Flagged = true
		s.FlagReason = strings.TrimSpace(a.Reason)
		if !ended {
			s.Status = chat.StatusFlagged
		}
		return nil, nil

	case ActionRecordMood:
		if ended {
			return nil, ErrSessionEnded
		}
		if !analysis.ValidMood(a.Mood) {
			return nil, ErrInvalidMood
		}
		label := a.Emotion
		if label == "" {
			label = string(analysis.FromMood(a.Mood))
		}
		s.MoodHistory = append(s.MoodHistory, chat.MoodEntry{Timestamp: now, Mood: a.Mood, Emotion: label})
		s.CurrentEmotion = label
		msg := newMessage(s, chat.RoleSystem, MoodAnnouncement(label, a.Mood), now)
		return appendMessages(s, now, msg), nil

	case ActionSubmitAdminMessage:
		if ended {
			return nil, ErrSessionEnded
		}
		name := strings.TrimSpace(a.AdminName)
		if name == "" {
			return nil, ErrAdminRequired
		}
		if !s.HumanDriven() {
			return nil, ErrNotHumanDriven
		}
		if strings.TrimSpace(a.Content) == "" {
			return nil, ErrEmptyMessage
		}
		msg := newMessage(s, chat.RoleAdmin, a.Content, now)
		msg.AdminName = name
		return appendMessages(s, now, msg), nil

	case ActionSaveNotes:
		s.Notes = a.Notes
		return nil, nil

	case ActionEndSession:
		if ended {
			return nil, nil
		}
		s.Status = chat.StatusEnded
		msg := newMessage(s, chat.RoleBot, FarewellMessage, now)
		msg.Persona = s.PersonaID
		return appendMessages(s, now, msg), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

func newMessage(s *chat.Session, role chat.Role, content string, now time.Time) chat.Message {
	return chat.Message{
		ID:        uuid.NewString(),
		SessionID: s.ID,
		Role:      role,
		Content:   content,
		Timestamp: now,
	}
}

func appendMessages(s *chat.Session, now time.Time, msgs ...chat.Message) []chat.Message {
	s.Messages = append(s.Messages, msgs...)
	s.LastActivity = now
	return msgs
}
