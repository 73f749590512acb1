package emotion

var suggestionsByEmotion = map[Label][]string{
	Sad: {
		"I've been feeling down lately",
		"Tell me more about coping with sadness",
		"I need encouragement",
		"Help me find hope",
	},
	Anxious: {
		"I'm worried about everything",
		"Teach me breathing exercises",
		"I feel overwhelmed",
		"Help me calm down",
	},
	Happy: {
		"I want to maintain this good mood",
		"Share tips for staying positive",
		"I'm grateful for today",
		"How can I help others feel better?",
	},
	Angry: {
		"I'm frustrated and need to vent",
		"Help me manage my anger",
		"I need to calm down",
		"Teach me healthy ways to express anger",
	},
	Neutral: {
		"How are you doing today?",
		"I want to check in with myself",
		"Tell me about self-care",
		"I need motivation",
	},
}

var defaultSuggestions = []string{
	"Tell me more",
	"I need support",
	"Help me understand",
	"What should I do next?",
}

// StarterSuggestions are offered before the first exchange.
var StarterSuggestions = []string{
	"I'm feeling anxious today",
	"I need someone to talk to",
	"Help me with stress management",
	"I'm having trouble sleeping",
}

// Suggestions returns follow-up prompts for the emotion of the last bot reply.
func Suggestions(label Label) []string {
	if s, ok := suggestionsByEmotion[label]; ok {
		return append([]string(nil), s...)
	}
	return append([]string(nil), defaultSuggestions...)
}
