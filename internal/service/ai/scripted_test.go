package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analysis "github.com/mentalmate/mindbot/backend/internal/analysis/emotion"
	"github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
)

func userTurn(text string) Request {
	return Request{History: []chat.Message{{Role: chat.RoleUser, Content: text}}}
}

func TestScriptedCompleterPicksReplyByEmotion(t *testing.T) {
	ctx := context.Background()
	cases := map[string]struct {
		emotion analysis.Label
		intent  analysis.Intent
	}{
		"I feel so down today":              {analysis.Sad, analysis.EmotionalSupport},
		"I'm worried about my exams":        {analysis.Anxious, analysis.CopingStrategies},
		"Today was a great day":             {analysis.Happy, analysis.PositiveReinforcement},
		"What should I cook":                {analysis.Neutral, analysis.ActiveListening},
		"I have no reason to live":          {analysis.Sad, analysis.CrisisSupport},
		"This is amazing, I'm so excited!!": {analysis.Happy, analysis.PositiveReinforcement},
	}

	for text, want := range cases {
		got, err := ScriptedCompleter{}.Complete(ctx, userTurn(text))
		require.NoError(t, err, text)
		assert.Equal(t, string(want.emotion), got.Emotion, text)
		assert.Equal(t, string(want.intent), got.Intent, text)
		assert.NotEmpty(t, got.Text)
	}
}

func TestScriptedCompleterHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScriptedCompleter{}.Complete(ctx, userTurn("hi"))
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildSystemPromptFallsBackToEnglish(t *testing.T) {
	pm := NewPersonaPromptManager()
	prompt := pm.BuildSystemPrompt(nil, "de")
	assert.Contains(t, prompt, "You are a helpful AI assistant")
	assert.Contains(t, prompt, "Always reply in English.")

	prompt = pm.BuildSystemPrompt(nil, LanguageSwahili)
	assert.Contains(t, prompt, "Wewe ni msaidizi wa AI")
	assert.True(t, SupportedLanguage("sw"))
	assert.False(t, SupportedLanguage("de"))
}
