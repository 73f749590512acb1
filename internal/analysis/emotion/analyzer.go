package emotion

import (
	"strings"

	"github.com/mentalmate/mindbot/backend/internal/analysis/crisis"
)

// Label is a coarse emotion tag attached to messages and mood samples.
type Label string

const (
	Neutral Label = "neutral"
	Happy   Label = "happy"
	Sad     Label = "sad"
	Anxious Label = "anxious"
	Angry   Label = "angry"
	Excited Label = "excited"
)

// Intent describes what a reply is trying to do for the user.
type Intent string

const (
	EmotionalSupport      Intent = "emotional_support"
	CopingStrategies      Intent = "coping_strategies"
	PositiveReinforcement Intent = "positive_reinforcement"
	ActiveListening       Intent = "active_listening"
	CrisisSupport         Intent = "crisis_support"
)

// Decision is the heuristic classification of a piece of text.
type Decision struct {
	Emotion Label
	Intent  Intent
	Score   int
}

// priority breaks score ties; distress outranks positive signals.
var priority = []Label{Sad, Anxious, Angry, Happy, Excited}

var keywordBuckets = map[Label][]string{
	Sad: {
		"sad", "down", "depressed", "lonely", "alone", "hopeless", "empty", "crying", "cry", "grief",
		"heartbroken", "miss", "worthless", "tired of", "huzuni", "triste", "déprimé",
	},
	Anxious: {
		"anxious", "worried", "nervous", "panic", "stress", "overwhelmed", "scared", "afraid", "fear",
		"can't sleep", "trouble sleeping", "insomnia", "tense", "wasiwasi", "anxieux", "stressé",
	},
	Angry: {
		"angry", "furious", "mad", "annoyed", "frustrated", "hate", "rage", "irritated", "fed up",
		"hasira", "en colère", "énervé",
	},
	Happy: {
		"happy", "good", "great", "grateful", "thankful", "thanks", "better", "calm", "relieved",
		"proud", "joy", "furaha", "heureux", "content",
	},
	Excited: {
		"excited", "amazing", "awesome", "can't wait", "thrilled", "fantastic", "wonderful",
	},
}

var intentByEmotion = map[Label]Intent{
	Sad:     EmotionalSupport,
	Anxious: CopingStrategies,
	Angry:   EmotionalSupport,
	Happy:   PositiveReinforcement,
	Excited: PositiveReinforcement,
	Neutral: ActiveListening,
}

// Analyze classifies text with keyword buckets. Crisis language always maps to
// a sad emotion with crisis_support intent.
func Analyze(text string) Decision {
	if crisis.Detect(text) {
		return Decision{Emotion: Sad, Intent: CrisisSupport, Score: 10}
	}

	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Emotion: Neutral, Intent: ActiveListening}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	// exclamations only amplify an already positive message
	if scores[Happy] > 0 || scores[Excited] > 0 {
		scores[Excited] += 2 * strings.Count(text, "!")
	}

	best, bestScore := Neutral, 0
	for _, label := range priority {
		if scores[label] > bestScore {
			best, bestScore = label, scores[label]
		}
	}

	return Decision{Emotion: best, Intent: IntentFor(best), Score: bestScore}
}

// IntentFor returns the default reply intent for an emotion.
func IntentFor(label Label) Intent {
	if intent, ok := intentByEmotion[label]; ok {
		return intent
	}
	return ActiveListening
}

// ParseLabel normalizes a free-form label, e.g. from a model response.
func ParseLabel(raw string) (Label, bool) {
	switch Label(strings.ToLower(strings.TrimSpace(raw))) {
	case Neutral:
		return Neutral, true
	case Happy:
		return Happy, true
	case Sad:
		return Sad, true
	case Anxious:
		return Anxious, true
	case Angry:
		return Angry, true
	case Excited:
		return Excited, true
	}
	return "", false
}

// ParseIntent normalizes a free-form intent.
func ParseIntent(raw string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case EmotionalSupport:
		return EmotionalSupport, true
	case CopingStrategies:
		return CopingStrategies, true
	case PositiveReinforcement:
		return PositiveReinforcement, true
	case ActiveListening:
		return ActiveListening, true
	case CrisisSupport:
		return CrisisSupport, true
	}
	return "", false
}
