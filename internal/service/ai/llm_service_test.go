package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentalmate/mindbot/backend/internal/config"
	"github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/internal/model/persona"
	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

type recordingModel struct {
	chunks []string
	err    error
	input  []*schema.Message
}

func (m *recordingModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(strings.Join(m.chunks, ""), nil), nil
}

func (m *recordingModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	msgs := make([]*schema.Message, 0, len(m.chunks))
	for _, c := range m.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func (m *recordingModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func sampleRequest() Request {
	p := persona.Seed()[0]
	return Request{
		SessionID: "s1",
		Language:  LanguageFrench,
		Persona:   &p,
		History: []chat.Message{
			{Role: chat.RoleBot, Content: "Hello! How are you feeling today?"},
			{Role: chat.RoleSystem, Content: "You've updated your mood"},
			{Role: chat.RoleUser, Content: "Pas très bien"},
		},
		ProfileSummary: "Recent moods: 3/10 (sad)",
	}
}

func TestCompleteBuildsPromptFromRequest(t *testing.T) {
	ctx := context.Background()
	m := &recordingModel{chunks: []string{"Je suis là pour vous."}}
	svc, err := NewServiceWithModel(ctx, m, config.AIConfig{}, logger.Nop())
	require.NoError(t, err)

	got, err := svc.Complete(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "Je suis là pour vous.", got.Text)

	require.Len(t, m.input, 3, "system + bot history + query; system messages are skipped")
	assert.Equal(t, schema.System, m.input[0].Role)
	assert.Contains(t, m.input[0].Content, "Vous êtes un assistant IA utile")
	assert.Contains(t, m.input[0].Content, "Empathetic Listener")
	assert.Contains(t, m.input[0].Content, "Recent moods: 3/10 (sad)")
	assert.Equal(t, schema.Assistant, m.input[1].Role)
	assert.Equal(t, schema.User, m.input[2].Role)
	assert.Equal(t, "Pas très bien", m.input[2].Content)
}

func TestCompleteWrapsProviderErrors(t *testing.T) {
	ctx := context.Background()
	svc, err := NewServiceWithModel(ctx, &recordingModel{err: errors.New("rate limited")}, config.AIConfig{}, logger.Nop())
	require.NoError(t, err)

	_, err = svc.Complete(ctx, sampleRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}

func TestStreamDeliversDeltas(t *testing.T) {
	ctx := context.Background()
	m := &recordingModel{chunks: []string{"Take ", "a deep ", "breath."}}
	svc, err := NewServiceWithModel(ctx, m, config.AIConfig{StreamResponse: true}, logger.Nop())
	require.NoError(t, err)

	var deltas []string
	got, err := svc.Stream(ctx, sampleRequest(), func(d string) { deltas = append(deltas, d) })
	require.NoError(t, err)
	assert.Equal(t, "Take a deep breath.", got.Text)
	assert.Equal(t, []string{"Take ", "a deep ", "breath."}, deltas)
}

func TestStreamDisabledSendsWholeReply(t *testing.T) {
	ctx := context.Background()
	m := &recordingModel{chunks: []string{"All at once."}}
	svc, err := NewServiceWithModel(ctx, m, config.AIConfig{StreamResponse: false}, logger.Nop())
	require.NoError(t, err)

	var deltas []string
	_, err = svc.Stream(ctx, sampleRequest(), func(d string) { deltas = append(deltas, d) })
	require.NoError(t, err)
	assert.Equal(t, []string{"All at once."}, deltas)
}

func TestBuildHistoryMessagesKeepsLastTurns(t *testing.T) {
	msgs := make([]chat.Message, 0, 14)
	for i := 0; i < 14; i++ {
		msgs = append(msgs, chat.Message{Role: chat.RoleUser, Content: "m"})
	}
	msgs[13] = chat.Message{Role: chat.RoleAdmin, AdminName: "Alex", Content: "I'm here"}

	history := buildHistoryMessages(msgs)
	require.Len(t, history, historyLimit)
	assert.Equal(t, "[Support specialist Alex] I'm here", history[len(history)-1].Content)
}
