package ai

import (
	"context"

	analysis "github.com/mentalmate/mindbot/backend/internal/analysis/emotion"
)

type scriptedReply struct {
	text    string
	emotion analysis.Label
	intent  analysis.Intent
}

var scriptedReplies = map[analysis.Label]scriptedReply{
	analysis.Sad: {
		text:    "I hear that you're feeling sad. It's completely normal to have these feelings. Would you like to talk about what's been weighing on your mind?",
		emotion: analysis.Sad,
		intent:  analysis.EmotionalSupport,
	},
	analysis.Anxious: {
		text:    "Anxiety can feel overwhelming. Let's take this one step at a time. Have you tried any breathing exercises that help you feel more grounded?",
		emotion: analysis.Anxious,
		intent:  analysis.CopingStrategies,
	},
	analysis.Happy: {
		text:    "It's wonderful to hear that you're feeling good! What's been bringing you joy lately? Celebrating positive moments is important for our wellbeing.",
		emotion: analysis.Happy,
		intent:  analysis.PositiveReinforcement,
	},
}

var crisisReply = scriptedReply{
	text:    "I'm concerned about what you're sharing. It sounds like you're going through a really difficult time. Would it be okay if we talked about some immediate support options?",
	emotion: analysis.Sad,
	intent:  analysis.CrisisSupport,
}

var defaultReply = scriptedReply{
	text:    "Thank you for sharing that with me. I'm here to listen and support you. Can you tell me more about how you're feeling right now?",
	emotion: analysis.Neutral,
	intent:  analysis.ActiveListening,
}

// ScriptedCompleter answers from canned replies keyed by the heuristic emotion of
// the latest user message. It keeps the service usable without model credentials.
type ScriptedCompleter struct{}

// Complete implements Completer.
func (ScriptedCompleter) Complete(ctx context.Context, req Request) (*Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	_, query := latestUserMessage(req.History)
	decision := analysis.Analyze(query)

	reply := defaultReply
	switch {
	case decision.Intent == analysis.CrisisSupport:
		reply = crisisReply
	case decision.Emotion == analysis.Excited:
		reply = scriptedReplies[analysis.Happy]
	default:
		if r, ok := scriptedReplies[decision.Emotion]; ok {
			reply = r
		}
	}

	return &Completion{
		Text:    reply.text,
		Emotion: string(reply.emotion),
		Intent:  string(reply.intent),
	}, nil
}

// Stream implements StreamCompleter with a single delta.
func (s ScriptedCompleter) Stream(ctx context.Context, req Request, onDelta func(string)) (*Completion, error) {
	completion, err := s.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if onDelta != nil {
		onDelta(completion.Text)
	}
	return completion, nil
}
