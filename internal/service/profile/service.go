package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	analysis "github.com/mentalmate/mindbot/backend/internal/analysis/emotion"
	"github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/internal/model/profile"
	"github.com/mentalmate/mindbot/backend/internal/model/resource"
	chatsvc "github.com/mentalmate/mindbot/backend/internal/service/chat"
	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

var (
	ErrUserRequired     = fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	ErrProfileNotFound  = fmt.Errorf("%w: profile not found", apperrors.ErrNotFound)
	ErrInvalidMood      = fmt.Errorf("%w: mood must be between %d and %d", apperrors.ErrInvalidInput, analysis.MinMood, analysis.MaxMood)
	ErrGoalRequired     = fmt.Errorf("%w: goal text is required", apperrors.ErrInvalidInput)
	ErrGoalNotFound     = fmt.Errorf("%w: goal not found", apperrors.ErrNotFound)
	ErrResourceNotFound = fmt.Errorf("%w: resource not found", apperrors.ErrNotFound)
	ErrContactInvalid   = fmt.Errorf("%w: emergency contact needs a name and a phone number", apperrors.ErrInvalidInput)
)

// MoodResult is what RecordMood changed.
type MoodResult struct {
	Entry   chat.MoodEntry      `json:"entry"`
	Profile profile.UserProfile `json:"profile"`
	// Session is the user's current session after the update, nil if there was none to update.
	Session *chat.Session `json:"session,omitempty"`
}

// Service tracks moods, goals, saved resources and emergency contacts per user.
type Service struct {
	mu        sync.RWMutex
	profiles  map[string]*profile.UserProfile
	sessions  *chatsvc.Service
	resources *resource.Catalog
	now       func() time.Time
	log       *logger.Logger
}

func NewService(sessions *chatsvc.Service, resources *resource.Catalog, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		profiles:  make(map[string]*profile.UserProfile),
		sessions:  sessions,
		resources: resources,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With("component", "profile"),
	}
}

// EnsureProfile returns the user's profile, creating it on first use. Non-empty name and
// preferredPersona overwrite the stored values.
func (s *Service) EnsureProfile(_ context.Context, userID, name, preferredPersona string) (profile.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return profile.UserProfile{}, ErrUserRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.lockedEnsure(userID)
	if name = strings.TrimSpace(name); name != "" {
		p.Name = name
	}
	if preferredPersona = strings.TrimSpace(preferredPersona); preferredPersona != "" {
		p.PreferredPersona = preferredPersona
	}
	return p.Clone(), nil
}

// GetProfile returns a copy of the user's profile.
func (s *Service) GetProfile(_ context.Context, userID string) (profile.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return profile.UserProfile{}, ErrProfileNotFound
	}
	return p.Clone(), nil
}

// AttachSession records that sessionID belongs to userID.
func (s *Service) AttachSession(_ context.Context, userID, sessionID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.lockedEnsure(userID)
	for _, id := range p.Sessions {
		if id == sessionID {
			return nil
		}
	}
	p.Sessions = append(p.Sessions, sessionID)
	return nil
}

// RecordMood stores a self-reported mood on the profile and on the user's current session.
func (s *Service) RecordMood(ctx context.Context, userID string, mood int) (MoodResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return MoodResult{}, ErrUserRequired
	}
	if !analysis.ValidMood(mood) {
		return MoodResult{}, ErrInvalidMood
	}

	entry := chat.MoodEntry{
		Timestamp: s.now(),
		Mood:      mood,
		Emotion:   string(analysis.FromMood(mood)),
	}

	var result MoodResult
	if s.sessions != nil {
		session, err := s.sessions.CurrentSession(ctx, userID)
		switch {
		case err == nil:
			res, err := s.sessions.Dispatch(ctx, session.ID, chatsvc.RecordMood(mood))
			switch {
			case err == nil:
				if n := len(res.Session.MoodHistory); n > 0 {
					entry = res.Session.MoodHistory[n-1]
				}
				result.Session = &res.Session
			case errors.Is(err, chatsvc.ErrSessionEnded):
				// An ended session keeps its log; the profile still gets the sample.
			default:
				return MoodResult{}, err
			}
		case errors.Is(err, chatsvc.ErrSessionNotFound):
		default:
			return MoodResult{}, err
		}
	}

	s.mu.Lock()
	p := s.lockedEnsure(userID)
	p.MoodHistory = append(p.MoodHistory, entry)
	result.Profile = p.Clone()
	s.mu.Unlock()

	result.Entry = entry
	s.log.Info("mood recorded", "user_id", userID, "mood", mood, "emotion", entry.Emotion)
	return result, nil
}

// ToggleSavedResource adds resourceID to the saved set, or removes it when already saved.
func (s *Service) ToggleSavedResource(_ context.Context, userID, resourceID string) (profile.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return profile.UserProfile{}, ErrUserRequired
	}
	if s.resources != nil {
		if _, ok := s.resources.FindByID(resourceID); !ok {
			return profile.UserProfile{}, fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.lockedEnsure(userID)
	if p.HasSavedResource(resourceID) {
		kept := p.SavedResources[:0]
		for _, id := range p.SavedResources {
			if id != resourceID {
				kept = append(kept, id)
			}
		}
		p.SavedResources = kept
	} else {
		p.SavedResources = append(p.SavedResources, resourceID)
	}
	return p.Clone(), nil
}

// AddGoal appends an open goal.
func (s *Service) AddGoal(_ context.Context, userID, text string) (profile.Goal, error) {
	if strings.TrimSpace(userID) == "" {
		return profile.Goal{}, ErrUserRequired
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return profile.Goal{}, ErrGoalRequired
	}

	goal := profile.Goal{ID: uuid.NewString(), Text: text, CreatedAt: s.now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.lockedEnsure(userID)
	p.Goals = append(p.Goals, goal)
	return goal, nil
}

// ToggleGoal flips the completed flag of a goal.
func (s *Service) ToggleGoal(_ context.Context, userID, goalID string) (profile.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return profile.Goal{}, ErrProfileNotFound
	}
	for i := range p.Goals {
		if p.Goals[i].ID == goalID {
			p.Goals[i].Completed = !p.Goals[i].Completed
			return p.Goals[i], nil
		}
	}
	return profile.Goal{}, ErrGoalNotFound
}

// AddEmergencyContact appends a contact to the user's crisis list.
func (s *Service) AddEmergencyContact(_ context.Context, userID string, contact profile.EmergencyContact) (profile.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return profile.UserProfile{}, ErrUserRequired
	}
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Phone = strings.TrimSpace(contact.Phone)
	contact.Relationship = strings.TrimSpace(contact.Relationship)
	if contact.Name == "" || contact.Phone == "" {
		return profile.UserProfile{}, ErrContactInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.lockedEnsure(userID)
	p.EmergencyContacts = append(p.EmergencyContacts, contact)
	return p.Clone(), nil
}

// Summary renders what the assistant should know about the user, or "" when there is
// nothing worth mentioning.
func (s *Service) Summary(_ context.Context, userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return ""
	}

	var lines []string
	if p.Name != "" {
		lines = append(lines, "Name: "+p.Name)
	}
	if n := len(p.MoodHistory); n > 0 {
		recent := p.MoodHistory[max(0, n-3):]
		moods := make([]string, 0, len(recent))
		for _, m := range recent {
			moods = append(moods, fmt.Sprintf("%d/10 (%s)", m.Mood, m.Emotion))
		}
		lines = append(lines, "Recent moods: "+strings.Join(moods, ", "))
	}
	var open []string
	for _, g := range p.Goals {
		if !g.Completed {
			open = append(open, g.Text)
		}
	}
	if len(open) > 0 {
		lines = append(lines, "Current goals: "+strings.Join(open, "; "))
	}
	return strings.Join(lines, "\n")
}

// lockedEnsure must be called with s.mu held for writing.
func (s *Service) lockedEnsure(userID string) *profile.UserProfile {
	p, ok := s.profiles[userID]
	if !ok {
		p = &profile.UserProfile{
			ID:       userID,
			JoinDate: s.now(),
		}
		s.profiles[userID] = p
	}
	return p
}
