package ai

import (
	"context"
	"fmt"

	"github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/internal/model/persona"
	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
)

// Request is everything the completion service needs to answer the latest user turn.
// History holds the session log in order; its last user message is the query.
type Request struct {
	SessionID      string
	History        []chat.Message
	Language       string
	Persona        *persona.Persona
	ProfileSummary string
}

// Completion is a finished reply. Emotion and Intent are optional hints.
type Completion struct {
	Text    string
	Emotion string
	Intent  string
}

// Completer produces a whole reply.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// StreamCompleter additionally reports partial text as it arrives.
type StreamCompleter interface {
	Completer
	Stream(ctx context.Context, req Request, onDelta func(string)) (*Completion, error)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrServiceUnavailable, err)
}

// latestUserMessage splits history into the prior turns and the query.
func latestUserMessage(history []chat.Message) ([]chat.Message, string) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == chat.RoleUser {
			return history[:i], history[i].Content
		}
	}
	return history, ""
}
