package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mentalmate/mindbot/backend/internal/analysis/crisis"
	analysis "github.com/mentalmate/mindbot/backend/internal/analysis/emotion"
	"github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/internal/model/persona"
	"github.com/mentalmate/mindbot/backend/internal/model/resource"
	"github.com/mentalmate/mindbot/backend/internal/service/ai"
	chatsvc "github.com/mentalmate/mindbot/backend/internal/service/chat"
	emotionsvc "github.com/mentalmate/mindbot/backend/internal/service/emotion"
	"github.com/mentalmate/mindbot/backend/internal/service/history"
	"github.com/mentalmate/mindbot/backend/internal/service/settings"
	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

const (
	// CrisisMessage is appended as a system message when crisis language is detected.
	CrisisMessage = "I've noticed some concerning language in your message. If you're in crisis or having thoughts of harming yourself, please know that help is available. Would you like to see crisis resources?"
	// ApologyMessage replaces the reply when the completion service fails.
	ApologyMessage = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment."

	defaultTimeout = 30 * time.Second
)

var (
	ErrSendInFlight = fmt.Errorf("%w: a message is already being answered for this session", apperrors.ErrConflict)
	ErrEmptyMessage = chatsvc.ErrEmptyMessage

	errEmptyCompletion = fmt.Errorf("%w: empty completion", apperrors.ErrServiceUnavailable)
)

// ProfileTracker is the slice of the profile service the pipeline needs.
type ProfileTracker interface {
	Summary(ctx context.Context, userID string) string
	AttachSession(ctx context.Context, userID, sessionID string) error
}

// Deps are the collaborators of a Pipeline. Sessions and Completer are required.
type Deps struct {
	Sessions   *chatsvc.Service
	Completer  ai.Completer
	Classifier emotionsvc.Classifier
	Personas   persona.Store
	Resources  *resource.Catalog
	History    history.Store
	Settings   settings.Store
	Profiles   ProfileTracker
}

// Config tunes the pipeline.
type Config struct {
	CompletionTimeout time.Duration
	DefaultLanguage   string
}

// Result reports what one user turn produced. Replies holds every message appended after
// the user message, crisis notices included.
type Result struct {
	Session     chat.Session       `json:"session"`
	UserMessage chat.Message       `json:"userMessage"`
	Crisis      bool               `json:"crisis"`
	Hotlines    []resource.Hotline `json:"hotlines,omitempty"`
	Replies     []chat.Message     `json:"replies"`
	Suppressed  bool               `json:"suppressed"`
	Cancelled   bool               `json:"cancelled"`
	Suggestions []string           `json:"suggestions,omitempty"`
	Speak       bool               `json:"speak"`
	Notify      bool               `json:"notify"`
}

// Option adjusts a single submission.
type Option func(*submitOptions)

type submitOptions struct {
	language string
	onDelta  func(string)
}

// WithLanguage overrides the reply language for one submission.
func WithLanguage(language string) Option {
	return func(o *submitOptions) { o.language = strings.TrimSpace(language) }
}

// WithDeltaSink streams partial reply text to fn while the completion is running.
func WithDeltaSink(fn func(string)) Option {
	return func(o *submitOptions) { o.onDelta = fn }
}

// Pipeline turns user input into session actions and, while the bot drives the
// session, into completion calls.
type Pipeline struct {
	deps  Deps
	cfg   Config
	tasks *taskRegistry
	log   *logger.Logger
}

func New(deps Deps, cfg Config, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	if deps.Classifier == nil {
		deps.Classifier = emotionsvc.HeuristicClassifier{}
	}
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = defaultTimeout
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = ai.LanguageEnglish
	}
	return &Pipeline{
		deps:  deps,
		cfg:   cfg,
		tasks: newTaskRegistry(),
		log:   log.With("component", "pipeline"),
	}
}

// StartSession opens a session for the user. An empty language falls back to the user's
// saved setting.
func (p *Pipeline) StartSession(ctx context.Context, userID, userName, personaID, language string) (chat.Session, error) {
	if strings.TrimSpace(language) == "" {
		language = p.preferences(ctx, userID).Language
	}

	session, err := p.deps.Sessions.CreateSession(ctx, userID, userName, personaID, language)
	if err != nil {
		return chat.Session{}, err
	}

	if p.deps.Profiles != nil {
		if err := p.deps.Profiles.AttachSession(ctx, session.UserID, session.ID); err != nil {
			p.log.Warn("attach session to profile failed", "session_id", session.ID, "error", err)
		}
	}
	return session, nil
}

// SubmitUserMessage runs one user turn. Completion failures are answered with an apology
// and never returned as errors.
func (p *Pipeline) SubmitUserMessage(ctx context.Context, sessionID, text string, opts ...Option) (*Result, error) {
	var o submitOptions
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	taskCtx, release, err := p.tasks.begin(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	log := p.log.With("session_id", sessionID)

	keyword, isCrisis := crisis.Match(text)
	submitted, err := p.deps.Sessions.Dispatch(ctx, sessionID, chatsvc.SubmitUserMessage(text, isCrisis, crisis.Reason))
	if err != nil {
		return nil, err
	}

	session := submitted.Session
	result := &Result{
		Session:     session,
		UserMessage: submitted.Appended[0],
		Crisis:      isCrisis,
	}
	p.mirror(ctx, session.UserID, text, true)

	if isCrisis {
		log.Warn("crisis language detected", "keyword", keyword)
		notice, err := p.deps.Sessions.Dispatch(ctx, sessionID, chatsvc.AppendSystemMessage(CrisisMessage, true, crisis.Reason))
		if err != nil {
			return nil, err
		}
		result.Replies = append(result.Replies, notice.Appended...)

		flagged, err := p.deps.Sessions.Dispatch(ctx, sessionID, chatsvc.FlagSession(crisis.Reason))
		if err != nil {
			return nil, err
		}
		session = flagged.Session
		result.Session = session
		if p.deps.Resources != nil {
			result.Hotlines = p.deps.Resources.HotlineList()
		}
	}

	if session.HumanDriven() {
		result.Suppressed = true
		return result, nil
	}

	prefs := p.preferences(ctx, session.UserID)
	language := o.language
	if language == "" {
		language = session.Language
	}
	if !ai.SupportedLanguage(language) {
		language = prefs.Language
	}
	if !ai.SupportedLanguage(language) {
		language = p.cfg.DefaultLanguage
	}

	reply, err := p.complete(taskCtx, session, language, o.onDelta)

	if taskCtx.Err() != nil {
		log.Info("completion abandoned", "reason", context.Cause(taskCtx))
		result.Cancelled = true
		return p.refresh(ctx, result), nil
	}

	if err == nil && (reply == nil || strings.TrimSpace(reply.Text) == "") {
		err = errEmptyCompletion
	}

	var action chatsvc.Action
	if err != nil {
		log.Error("completion failed", "error", err)
		action = chatsvc.AppendBotReply(ApologyMessage, string(analysis.Neutral), string(analysis.ActiveListening), session.PersonaID)
	} else {
		action = p.replyAction(taskCtx, session, text, reply)
	}

	appended, dispatchErr := p.deps.Sessions.Dispatch(ctx, sessionID, action)
	switch {
	case dispatchErr == nil:
	case errors.Is(dispatchErr, chatsvc.ErrHumanDriven):
		result.Suppressed = true
		return p.refresh(ctx, result), nil
	case errors.Is(dispatchErr, chatsvc.ErrSessionEnded):
		result.Cancelled = true
		return p.refresh(ctx, result), nil
	default:
		return nil, dispatchErr
	}

	result.Session = appended.Session
	result.Replies = append(result.Replies, appended.Appended...)
	botMsg := appended.Appended[0]
	result.Suggestions = analysis.Suggestions(analysis.Label(botMsg.Emotion))
	result.Speak = prefs.SpeechEnabled
	result.Notify = prefs.NotificationsEnabled
	if err == nil {
		p.mirror(ctx, session.UserID, botMsg.Content, false)
	}
	return result, nil
}

// Cancel aborts the pending completion of sessionID. No bot message is appended for it.
func (p *Pipeline) Cancel(sessionID string) bool {
	cancelled := p.tasks.cancel(sessionID)
	if cancelled {
		p.log.Info("pending completion cancelled", "session_id", sessionID)
	}
	return cancelled
}

// Pending reports whether a send is in flight for sessionID.
func (p *Pipeline) Pending(sessionID string) bool {
	return p.tasks.pending(sessionID)
}

// EndSession cancels any pending completion, then closes the session with the farewell.
func (p *Pipeline) EndSession(ctx context.Context, sessionID string) (chat.Session, error) {
	p.Cancel(sessionID)
	res, err := p.deps.Sessions.Dispatch(ctx, sessionID, chatsvc.EndSession())
	if err != nil {
		return chat.Session{}, err
	}
	return res.Session, nil
}

func (p *Pipeline) complete(ctx context.Context, session chat.Session, language string, onDelta func(string)) (*ai.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.CompletionTimeout)
	defer cancel()

	req := ai.Request{
		SessionID: session.ID,
		History:   session.Messages,
		Language:  language,
	}
	if resolved, ok := persona.Resolve(p.deps.Personas, session.PersonaID); ok {
		req.Persona = &resolved
	}
	if p.deps.Profiles != nil {
		req.ProfileSummary = p.deps.Profiles.Summary(ctx, session.UserID)
	}

	if streamer, ok := p.deps.Completer.(ai.StreamCompleter); ok && onDelta != nil {
		return streamer.Stream(ctx, req, onDelta)
	}
	return p.deps.Completer.Complete(ctx, req)
}

// replyAction tags the reply with the completion's emotion and intent, asking the
// classifier for whatever is missing.
func (p *Pipeline) replyAction(ctx context.Context, session chat.Session, userText string, reply *ai.Completion) chatsvc.Action {
	emotion, emotionOK := analysis.ParseLabel(reply.Emotion)
	intent, intentOK := analysis.ParseIntent(reply.Intent)
	if !emotionOK || !intentOK {
		c, err := p.deps.Classifier.Classify(ctx, userText)
		if err != nil {
			p.log.Warn("classification failed", "session_id", session.ID, "error", err)
			c = emotionsvc.Classification{Emotion: analysis.Neutral, Intent: analysis.ActiveListening}
		}
		if !emotionOK {
			emotion = c.Emotion
		}
		if !intentOK {
			intent = c.Intent
		}
	}
	return chatsvc.AppendBotReply(reply.Text, string(emotion), string(intent), session.PersonaID)
}

func (p *Pipeline) preferences(ctx context.Context, userID string) settings.Settings {
	prefs := settings.Defaults()
	prefs.Language = p.cfg.DefaultLanguage
	if p.deps.Settings == nil || strings.TrimSpace(userID) == "" {
		return prefs
	}
	stored, err := p.deps.Settings.Get(ctx, userID)
	if err != nil {
		p.log.Warn("load settings failed, using defaults", "user_id", userID, "error", err)
		return prefs
	}
	if stored.Language == "" {
		stored.Language = p.cfg.DefaultLanguage
	}
	return stored
}

func (p *Pipeline) mirror(ctx context.Context, userID, text string, fromUser bool) {
	if p.deps.History == nil {
		return
	}
	if err := p.deps.History.AppendMessage(ctx, userID, text, fromUser); err != nil {
		p.log.Warn("mirror to history failed", "user_id", userID, "error", err)
	}
}

func (p *Pipeline) refresh(ctx context.Context, result *Result) *Result {
	if latest, err := p.deps.Sessions.GetSession(ctx, result.Session.ID); err == nil {
		result.Session = latest
	}
	return result
}
