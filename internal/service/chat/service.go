package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	analysis "github.com/mentalmate/mindbot/backend/internal/analysis/emotion"
	"github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/internal/model/persona"
	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

var (
	ErrSessionNotFound = fmt.Errorf("%w: session not found", apperrors.ErrNotFound)
	ErrUserRequired    = fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	ErrUnknownPersona  = fmt.Errorf("%w: unknown persona", apperrors.ErrInvalidInput)
	ErrSessionEnded    = fmt.Errorf("%w: session has ended", apperrors.ErrInvalidInput)
	ErrEmptyMessage    = fmt.Errorf("%w: message content is required", apperrors.ErrInvalidInput)
	ErrAdminRequired   = fmt.Errorf("%w: admin name is required", apperrors.ErrInvalidInput)
	ErrInvalidMood     = fmt.Errorf("%w: mood must be between %d and %d", apperrors.ErrInvalidInput, analysis.MinMood, analysis.MaxMood)
	ErrUnknownAction   = fmt.Errorf("%w: unknown action", apperrors.ErrInvalidInput)
	ErrNotHumanDriven  = fmt.Errorf("%w: session is not human-driven", apperrors.ErrConflict)
	ErrHumanDriven     = fmt.Errorf("%w: session is human-driven", apperrors.ErrConflict)
)

// InitialMood is the neutral sample every new session starts with.
const InitialMood = 5

// Result is the outcome of a dispatched action.
type Result struct {
	Session  chat.Session
	Appended []chat.Message
}

// Service is the session store. Every change goes through Dispatch so the log stays append-only
// and ordered by completion.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
	current  map[string]string
	personas persona.Store
	feed     *feed
	now      func() time.Time
	log      *logger.Logger
}

// NewService bootstraps the in-memory session store.
func NewService(personas persona.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		sessions: make(map[string]*chat.Session),
		current:  make(map[string]string),
		personas: personas,
		feed:     newFeed(),
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With("component", "session-store"),
	}
}

// CreateSession opens a session for userID. The persona's opening line becomes the first
// message and the mood history starts with a neutral sample. The new session becomes the
// user's current one.
func (s *Service) CreateSession(_ context.Context, userID, userName, personaID, language string) (chat.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return chat.Session{}, ErrUserRequired
	}

	var p persona.Persona
	if personaID = strings.TrimSpace(personaID); personaID != "" && s.personas != nil {
		found, ok := s.personas.FindByID(personaID)
		if !ok {
			return chat.Session{}, fmt.Errorf("%w: %s", ErrUnknownPersona, personaID)
		}
		p = found
	} else if resolved, ok := persona.Resolve(s.personas, persona.DefaultID); ok {
		p = resolved
	}
	if p.ID == "" {
		p.ID = personaID
	}

	if strings.TrimSpace(userName) == "" {
		userName = "Guest"
	}
	if strings.TrimSpace(language) == "" {
		language = "en"
	}

	now := s.now()
	session := &chat.Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		UserName:       userName,
		PersonaID:      p.ID,
		Language:       language,
		StartTime:      now,
		LastActivity:   now,
		Status:         chat.StatusActive,
		Mode:           chat.ModeBot,
		Messages:       make([]chat.Message, 0, 16),
		CurrentEmotion: string(analysis.Neutral),
		MoodHistory: []chat.MoodEntry{{
			Timestamp: now,
			Mood:      InitialMood,
			Emotion:   string(analysis.FromMood(InitialMood)),
		}},
	}
	if p.OpeningLine != "" {
		opening := newMessage(session, chat.RoleBot, p.OpeningLine, now)
		opening.Persona = p.ID
		opening.Emotion = string(analysis.Neutral)
		session.Messages = append(session.Messages, opening)
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.current[userID] = session.ID
	snapshot := session.Clone()
	s.feed.publish(Event{Type: EventSessionCreated, SessionID: session.ID, Session: snapshot, Messages: snapshot.Messages})
	s.mu.Unlock()

	s.log.Info("session created", "session_id", session.ID, "user_id", userID, "persona", p.ID)
	return snapshot, nil
}

// Dispatch applies an action to a session and returns the resulting snapshot and the
// messages the action appended. Nothing is changed when the action fails.
func (s *Service) Dispatch(_ context.Context, sessionID string, action Action) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[sessionID]
	if !ok {
		return Result{}, ErrSessionNotFound
	}

	working := stored.Clone()
	appended, err := reduce(&working, action, s.now())
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", action.Type, err)
	}
	*stored = working

	snapshot := stored.Clone()
	s.feed.publish(Event{Type: EventType(action.Type), SessionID: sessionID, Session: snapshot, Messages: appended})
	s.log.Debug("action applied", "session_id", sessionID, "action", action.Type, "appended", len(appended))

	return Result{Session: snapshot, Appended: appended}, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session.Clone(), nil
}

// CurrentSession returns the latest session created for userID.
func (s *Service) CurrentSession(_ context.Context, userID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.current[userID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return s.sessions[id].Clone(), nil
}

// ListSessions returns every session, most recently active first.
func (s *Service) ListSessions(_ context.Context) []chat.Session {
	s.mu.RLock()
	out := make([]chat.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(session.Messages))
	copy(copied, session.Messages)
	return copied, nil
}

// Subscribe registers a listener for store events. The returned function unregisters it
// and closes the channel.
func (s *Service) Subscribe(buffer int) (<-chan Event, func()) {
	return s.feed.subscribe(buffer)
}
