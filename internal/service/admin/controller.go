package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/mentalmate/mindbot/backend/internal/model/chat"
	chatsvc "github.com/mentalmate/mindbot/backend/internal/service/chat"
	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

const (
	// CrisisSupportName joins sessions escalated from the user's crisis prompt.
	CrisisSupportName         = "Crisis Support"
	specialistRequestedNotice = "I've notified a support specialist who will join this conversation shortly. Please stay with me."
	crisisSupportAnnouncement = "Crisis Support Specialist has joined the conversation. I'm here to help you through this difficult moment."
)

var ErrSessionRequired = fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)

// Canceller aborts a pending completion call.
type Canceller interface {
	Cancel(sessionID string) bool
}

// Controller lets support staff watch, flag and take over sessions.
type Controller struct {
	sessions *chatsvc.Service
	pending  Canceller
	log      *logger.Logger
}

func NewController(sessions *chatsvc.Service, pending Canceller, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		sessions: sessions,
		pending:  pending,
		log:      log.With("component", "admin"),
	}
}

// JoinSession switches the session to human-driven mode. Joining a session another
// admin already drives changes nothing.
func (c *Controller) JoinSession(ctx context.Context, sessionID, adminName string) (chat.Session, error) {
	return c.join(ctx, sessionID, adminName, "")
}

// LeaveSession hands the session back to the bot.
func (c *Controller) LeaveSession(ctx context.Context, sessionID, adminName string) (chat.Session, error) {
	res, err := c.dispatch(ctx, sessionID, chatsvc.LeaveSession(strings.TrimSpace(adminName)))
	if err != nil {
		return chat.Session{}, err
	}
	if len(res.Appended) > 0 {
		c.log.Info("admin left session", "session_id", sessionID, "admin", res.Appended[0].AdminName)
	}
	return res.Session, nil
}

// FlagSession marks the session for follow-up without touching its mode.
func (c *Controller) FlagSession(ctx context.Context, sessionID, reason string) (chat.Session, error) {
	res, err := c.dispatch(ctx, sessionID, chatsvc.FlagSession(reason))
	if err != nil {
		return chat.Session{}, err
	}
	c.log.Info("session flagged", "session_id", sessionID, "reason", reason)
	return res.Session, nil
}

// SendMessage posts an admin message. The session must be human-driven.
func (c *Controller) SendMessage(ctx context.Context, sessionID, adminName, text string) (chat.Message, error) {
	res, err := c.dispatch(ctx, sessionID, chatsvc.SubmitAdminMessage(adminName, text))
	if err != nil {
		return chat.Message{}, err
	}
	return res.Appended[0], nil
}

// SaveNotes stores free-form admin notes on the session.
func (c *Controller) SaveNotes(ctx context.Context, sessionID, notes string) (chat.Session, error) {
	res, err := c.dispatch(ctx, sessionID, chatsvc.SaveNotes(notes))
	if err != nil {
		return chat.Session{}, err
	}
	return res.Session, nil
}

// ListSessions returns every session, most recently active first.
func (c *Controller) ListSessions(ctx context.Context) []chat.Session {
	return c.sessions.ListSessions(ctx)
}

// ListFlagged returns the flagged sessions, most recently active first.
func (c *Controller) ListFlagged(ctx context.Context) []chat.Session {
	all := c.sessions.ListSessions(ctx)
	flagged := make([]chat.Session, 0, len(all))
	for _, s := range all {
		if s.Flagged {
			flagged = append(flagged, s)
		}
	}
	return flagged
}

// RequestSpecialist is the user's "talk to someone now" escalation: it tells the user
// help is coming and hands the session to crisis support.
func (c *Controller) RequestSpecialist(ctx context.Context, sessionID string) (chat.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return chat.Session{}, ErrSessionRequired
	}
	current, err := c.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	switch {
	case current.Status == chat.StatusEnded:
		return chat.Session{}, fmt.Errorf("%s: %w", chatsvc.ActionJoinSession, chatsvc.ErrSessionEnded)
	case current.HumanDriven():
		// A specialist is already here.
		return current, nil
	}

	if _, err := c.dispatch(ctx, sessionID, chatsvc.AppendSystemMessage(specialistRequestedNotice, false, "")); err != nil {
		return chat.Session{}, err
	}
	return c.join(ctx, sessionID, CrisisSupportName, crisisSupportAnnouncement)
}

func (c *Controller) join(ctx context.Context, sessionID, adminName, announcement string) (chat.Session, error) {
	adminName = strings.TrimSpace(adminName)
	if adminName == "" {
		return chat.Session{}, chatsvc.ErrAdminRequired
	}

	res, err := c.dispatch(ctx, sessionID, chatsvc.JoinSession(adminName, announcement))
	if err != nil {
		return chat.Session{}, err
	}

	// Late bot replies are already dropped by the store; this stops the call itself.
	if c.pending != nil && c.pending.Cancel(sessionID) {
		c.log.Info("pending completion cancelled by takeover", "session_id", sessionID)
	}
	if len(res.Appended) > 0 {
		c.log.Info("admin joined session", "session_id", sessionID, "admin", adminName)
	}
	return res.Session, nil
}

func (c *Controller) dispatch(ctx context.Context, sessionID string, action chatsvc.Action) (chatsvc.Result, error) {
	if strings.TrimSpace(sessionID) == "" {
		return chatsvc.Result{}, ErrSessionRequired
	}
	return c.sessions.Dispatch(ctx, sessionID, action)
}
