package crisis

import "strings"

// Reason is recorded on sessions and messages flagged by the detector.
const Reason = "Crisis language detected"

// Keywords are matched as lower-case substrings. Negations ("not suicidal")
// still match; that false positive is accepted.
var Keywords = []string{
	"suicide",
	"kill myself",
	"end my life",
	"want to die",
	"hurt myself",
	"self harm",
	"no reason to live",
	"better off dead",
}

// Detect reports whether text contains any crisis keyword.
func Detect(text string) bool {
	_, ok := Match(text)
	return ok
}

// Match returns the first keyword found in text.
func Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range Keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}
