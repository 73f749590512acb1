package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
)

// ErrNotAuthenticated is returned when no user identity accompanies a request.
var ErrNotAuthenticated = fmt.Errorf("%w: a signed-in user is required", apperrors.ErrNotAuthenticated)

// Entry is one persisted chat line.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	FromUser  bool      `json:"fromUser"`
}

// Store keeps a durable per-user chat history.
type Store interface {
	AppendMessage(ctx context.Context, userID, text string, fromUser bool) error
	ListMessages(ctx context.Context, userID string) ([]Entry, error)
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrNotAuthenticated
	}
	return userID, nil
}
