package response

import (
	"regexp"
	"sort"

	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

// Tone buckets keyed on the customer's emotional state.
const (
	ToneProfessionalFriendly   = "professional_friendly"
	ToneEnthusiasticSupportive = "enthusiastic_supportive"
	ToneReassuringConfident    = "reassuring_confident"
	ToneEmpatheticProfessional = "empathetic_professional"
)

// toneAdaptations maps a tone bucket to marker-word rewrites. When a marker
// word appears in the drafted message it is replaced with the bucket's
// phrasing for that beat of the response.
var toneAdaptations = map[string]map[string]string{
	ToneProfessionalFriendly: {
		"greeting":       "Hello! I'm happy to help you",
		"transition":     "Let me assist you with",
		"recommendation": "I'd recommend considering",
		"closing":        "Please let me know if you have any other questions",
	},
	ToneEnthusiasticSupportive: {
		"greeting":       "Hi there! I'm excited to help you find",
		"transition":     "This is going to be great for",
		"recommendation": "I really love this option for you",
		"closing":        "I can't wait to see how this turns out!",
	},
	ToneReassuringConfident: {
		"greeting":       "Don't worry, I'm here to help",
		"transition":     "Let me guide you through",
		"recommendation": "I'm confident this will work well",
		"closing":        "You're in good hands, we'll get this sorted",
	},
	ToneEmpatheticProfessional: {
		"greeting":       "I understand your concern, and I'm here to help",
		"transition":     "Let me address that for you",
		"recommendation": "Based on your situation, I'd suggest",
		"closing":        "I'm committed to resolving this for you",
	},
}

// toneMarkerPatterns compiles word-boundary matchers for the marker words
// once. Every bucket shares the same marker set.
var toneMarkerPatterns = map[string]*regexp.Regexp{
	"greeting":       regexp.MustCompile(`(?i)\bgreeting\b`),
	"transition":     regexp.MustCompile(`(?i)\btransition\b`),
	"recommendation": regexp.MustCompile(`(?i)\brecommendation\b`),
	"closing":        regexp.MustCompile(`(?i)\bclosing\b`),
}

// toneKey maps the emotional state to a tone bucket. Frustration always wins.
func toneKey(sentiment nlp.Sentiment) string {
	switch sentiment.EmotionalState {
	case nlp.EmotionFrustrated:
		return ToneEmpatheticProfessional
	case nlp.EmotionExcited:
		return ToneEnthusiasticSupportive
	case nlp.EmotionAnxious:
		return ToneReassuringConfident
	default:
		return ToneProfessionalFriendly
	}
}

// applyTone substitutes the tone bucket's phrasing for any marker words in
// the message and reports which beats were adapted.
func applyTone(message string, sentiment nlp.Sentiment) (string, []string) {
	bucket := toneAdaptations[toneKey(sentiment)]
	var applied []string
	for marker, replacement := range bucket {
		pattern := toneMarkerPatterns[marker]
		if pattern.MatchString(message) {
			message = pattern.ReplaceAllString(message, replacement)
			applied = append(applied, "tone_"+marker)
		}
	}
	// Map iteration order is random; keep the report stable.
	sort.Strings(applied)
	return message, applied
}
