package emotion

const (
	MinMood = 1
	MaxMood = 10
)

// FromMood maps a 1..10 self-reported mood onto a coarse label.
// The bucket edges (3, 4, 6, 8 inclusive) are fixed product behaviour.
func FromMood(mood int) Label {
	switch {
	case mood <= 3:
		return Sad
	case mood <= 4:
		return Anxious
	case mood <= 6:
		return Neutral
	case mood <= 8:
		return Happy
	default:
		return Excited
	}
}

// ValidMood reports whether mood lies in the accepted slider range.
func ValidMood(mood int) bool {
	return mood >= MinMood && mood <= MaxMood
}
