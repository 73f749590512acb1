package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
)

// Keys persisted per user.
const (
	KeyLanguage             = "language"
	KeyNotificationsEnabled = "notificationsEnabled"
	KeySpeechEnabled        = "speechEnabled"
)

var (
	ErrUnknownKey      = fmt.Errorf("%w: unknown setting", apperrors.ErrInvalidInput)
	ErrInvalidValue    = fmt.Errorf("%w: invalid setting value", apperrors.ErrInvalidInput)
	ErrUserRequired    = fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	supportedLanguages = map[string]struct{}{"en": {}, "sw": {}, "fr": {}}
)

// Settings are the per-user client preferences. An empty Language means the user never
// picked one and the server default applies.
type Settings struct {
	Language             string `json:"language,omitempty"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	SpeechEnabled        bool   `json:"speechEnabled"`
}

// Defaults returns the settings of a user who never changed anything.
func Defaults() Settings {
	return Settings{NotificationsEnabled: true, SpeechEnabled: false}
}

// Store reads and writes settings.
type Store interface {
	Get(ctx context.Context, userID string) (Settings, error)
	Set(ctx context.Context, userID, key, value string) (Settings, error)
}

// Validate checks a single key/value pair and returns the canonical value.
func Validate(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch key {
	case KeyLanguage:
		lang := strings.ToLower(value)
		if _, ok := supportedLanguages[lang]; !ok {
			return "", fmt.Errorf("%w: language %q is not one of en, sw, fr", ErrInvalidValue, value)
		}
		return lang, nil
	case KeyNotificationsEnabled, KeySpeechEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalidValue, key, value)
		}
		return strconv.FormatBool(b), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

// apply folds validated raw values over the defaults.
func apply(raw map[string]string) Settings {
	out := Defaults()
	if v, ok := raw[KeyLanguage]; ok {
		out.Language = v
	}
	if v, ok := raw[KeyNotificationsEnabled]; ok {
		out.NotificationsEnabled = v == "true"
	}
	if v, ok := raw[KeySpeechEnabled]; ok {
		out.SpeechEnabled = v == "true"
	}
	return out
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrUserRequired
	}
	return userID, nil
}
