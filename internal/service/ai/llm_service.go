package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/mentalmate/mindbot/backend/internal/config"
	"github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

const historyLimit = 10

// Service answers user turns through an eino chain over the configured chat model.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
	prompts   *PersonaPromptManager
	log       *logger.Logger
}

// NewService creates the chat model from configuration and compiles the chain.
func NewService(ctx context.Context, cfg config.AIConfig, log *logger.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg, log)
}

// NewServiceWithModel compiles the chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel, cfg config.AIConfig, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
		prompts:   NewPersonaPromptManager(),
		log:       log.With("component", "ai"),
	}, nil
}

// StreamingEnabled 指示是否开启流式输出。
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// GetChatModel exposes the underlying model so the classifier can share it.
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

// Complete implements Completer.
func (s *Service) Complete(ctx context.Context, req Request) (*Completion, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(req))
	if err != nil {
		return nil, unavailable(fmt.Errorf("failed to run AI chain: %w", err))
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return nil, unavailable(errors.New("empty completion"))
	}

	s.log.Debug("generated response", "session", req.SessionID, "language", req.Language, "length", len(response.Content))
	return &Completion{Text: response.Content}, nil
}

// Stream implements StreamCompleter. When streaming is disabled by configuration the
// whole reply is delivered as a single delta.
func (s *Service) Stream(ctx context.Context, req Request, onDelta func(string)) (*Completion, error) {
	if !s.StreamingEnabled() {
		completion, err := s.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		if onDelta != nil {
			onDelta(completion.Text)
		}
		return completion, nil
	}

	stream, err := s.chain.Stream(ctx, s.buildChainInput(req))
	if err != nil {
		return nil, unavailable(fmt.Errorf("failed to stream AI chain output: %w", err))
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, unavailable(recvErr)
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, chunk)
		if chunk.Content != "" && onDelta != nil {
			onDelta(chunk.Content)
		}
	}
	if len(chunks) == 0 {
		return nil, unavailable(errors.New("empty completion stream"))
	}

	merged, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, unavailable(err)
	}
	return &Completion{Text: merged.Content}, nil
}

func (s *Service) buildChainInput(req Request) map[string]any {
	prior, query := latestUserMessage(req.History)
	return map[string]any{
		"system":  s.buildSystemPrompt(req),
		"history": buildHistoryMessages(prior),
		"query":   query,
	}
}

func (s *Service) buildSystemPrompt(req Request) string {
	base := s.prompts.BuildSystemPrompt(req.Persona, req.Language)
	if strings.TrimSpace(req.ProfileSummary) == "" {
		return base
	}

	var builder strings.Builder
	builder.WriteString(base)
	builder.WriteString("\n\nWhat you know about the user:\n")
	builder.WriteString(req.ProfileSummary)
	return builder.String()
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleBot:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		case chat.RoleAdmin:
			history = append(history, schema.AssistantMessage(fmt.Sprintf("[Support specialist %s] %s", msg.AdminName, msg.Content), nil))
		}
	}

	return history
}
