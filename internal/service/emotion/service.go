package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/mentalmate/mindbot/backend/internal/analysis/emotion"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

const (
	ModeHeuristic = "heuristic"
	ModeModel     = "model"
)

// Classification is the emotion and intent attached to a bot reply.
type Classification struct {
	Emotion    analysis.Label  `json:"emotion"`
	Intent     analysis.Intent `json:"intent"`
	Confidence float32         `json:"confidence"`
	Source     string          `json:"source"`
}

// Classifier labels a user message with an emotion and the reply intent it calls for.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// Config selects and tunes the classifier.
type Config struct {
	Mode string
}

// New picks an implementation by cfg.Mode. Model mode without a chat model
// degrades to the heuristic classifier.
func New(ctx context.Context, chatModel model.ChatModel, cfg Config, log *logger.Logger) (Classifier, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", ModeHeuristic:
		return HeuristicClassifier{}, nil
	case ModeModel:
		if chatModel == nil {
			log.Warn("model classifier requested without a chat model, using heuristics", "component", "emotion")
			return HeuristicClassifier{}, nil
		}
		return NewModelClassifier(ctx, chatModel, log)
	default:
		return nil, fmt.Errorf("unknown classifier mode %q", cfg.Mode)
	}
}

// HeuristicClassifier wraps the keyword analyzer.
type HeuristicClassifier struct{}

// Classify never fails.
func (HeuristicClassifier) Classify(_ context.Context, text string) (Classification, error) {
	decision := analysis.Analyze(text)
	confidence := float32(0.3)
	if decision.Score > 0 {
		confidence = 0.55
	}
	return Classification{
		Emotion:    decision.Emotion,
		Intent:     decision.Intent,
		Confidence: confidence,
		Source:     ModeHeuristic,
	}, nil
}

// ModelClassifier asks the chat model for a JSON verdict and falls back to
// the heuristic whenever the call or its output is unusable.
type ModelClassifier struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	fallback HeuristicClassifier
	log      *logger.Logger
}

// NewModelClassifier compiles the classification chain.
func NewModelClassifier(ctx context.Context, chatModel model.ChatModel, log *logger.Logger) (*ModelClassifier, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(classifierSystemPrompt),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile emotion classifier chain: %w", err)
	}

	return &ModelClassifier{chain: runnable, log: log}, nil
}

// Classify implements Classifier.
func (c *ModelClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	msg, err := c.chain.Invoke(ctx, map[string]any{"message": strings.TrimSpace(text)})
	if err != nil {
		c.log.Warn("classifier invoke failed, use fallback", "component", "emotion", "error", err)
		return c.fallback.Classify(ctx, text)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return c.fallback.Classify(ctx, text)
	}

	payload, err := parseClassifierOutput(msg.Content)
	if err != nil {
		c.log.Warn("classifier output parse failed, use fallback", "component", "emotion", "error", err)
		return c.fallback.Classify(ctx, text)
	}

	label, ok := analysis.ParseLabel(payload.Emotion)
	if !ok {
		return c.fallback.Classify(ctx, text)
	}
	intent, ok := analysis.ParseIntent(payload.Intent)
	if !ok {
		intent = analysis.IntentFor(label)
	}

	confidence := payload.Confidence
	if confidence <= 0 {
		confidence = 0.6
	}
	if confidence > 1 {
		confidence = 1
	}

	return Classification{
		Emotion:    label,
		Intent:     intent,
		Confidence: confidence,
		Source:     ModeModel,
	}, nil
}

// parseClassifierOutput extracts the first JSON object from the model reply.
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

type classifierPayload struct {
	Emotion    string  `json:"emotion"`
	Intent     string  `json:"intent"`
	Confidence float32 `json:"confidence"`
}

const classifierSystemPrompt = "You label messages sent to a mental health support chat. Read the user's message and infer their current emotion and what kind of reply would help.\nReturn a single JSON object and nothing else, with fields: emotion (one of neutral/happy/sad/anxious/angry/excited), intent (one of emotional_support/coping_strategies/positive_reinforcement/active_listening/crisis_support), confidence (a number between 0 and 1)."

const classifierUserPrompt = "User message:\n{message}\n\nReturn the JSON."
