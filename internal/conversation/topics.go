package conversation

import (
	"strings"

	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

// topicModel is a fixed keyword/phrase matcher used to label what a turn is
// about. Phrase matches are weighted double because they are far less
// ambiguous than single keywords.
type topicModel struct {
	name     string
	keywords []string
	phrases  []string
}

// TopicGeneral is the label when no topic model scores above zero.
const TopicGeneral = "general"

// Named topics, also used in the logical-progression table.
const (
	TopicStyleConsultation = "style_consultation"
	TopicProductDetails    = "product_details"
	TopicSizingFitting     = "sizing_fitting"
	TopicPricingBudget     = "pricing_budget"
	TopicOccasionStyling   = "occasion_styling"
)

// Topic models are hand-tuned business data, not derived from the catalog.
var topicModels = []topicModel{
	{
		name:     TopicStyleConsultation,
		keywords: []string{"style", "look", "outfit", "fashion", "advice", "recommend"},
		phrases:  []string{"what should i wear", "help me choose", "style advice"},
	},
	{
		name:     TopicProductDetails,
		keywords: []string{"fabric", "material", "quality", "construction", "details", "features"},
		phrases:  []string{"tell me about", "how is it made", "what kind of"},
	},
	{
		name:     TopicSizingFitting,
		keywords: []string{"size", "fit", "measurements", "alterations", "tailoring"},
		phrases:  []string{"what size", "how does it fit", "will it fit"},
	},
	{
		name:     TopicPricingBudget,
		keywords: []string{"price", "cost", "budget", "expensive", "affordable", "cheap"},
		phrases:  []string{"how much", "what does it cost", "in my budget"},
	},
	{
		name:     TopicOccasionStyling,
		keywords: []string{"wedding", "business", "formal", "casual", "event", "occasion"},
		phrases:  []string{"for a wedding", "business meeting", "formal event"},
	},
}

// logicalProgression lists topic pairs that commonly follow each other in a
// sales conversation. Transitions along these pairs get a confidence boost.
var logicalProgression = map[string][]string{
	TopicStyleConsultation: {TopicProductDetails, TopicSizingFitting, TopicPricingBudget},
	TopicProductDetails:    {TopicSizingFitting, TopicPricingBudget, TopicOccasionStyling},
	TopicSizingFitting:     {TopicProductDetails, TopicPricingBudget},
	TopicPricingBudget:     {TopicProductDetails, TopicOccasionStyling},
}

// contrastive connectives signal the customer steering the conversation.
var contrastiveConnectives = []string{"actually", "instead", "but"}

// redirectPhrases mark an assistant turn that steered toward a new topic.
var redirectPhrases = []string{"let's talk about", "let me help you with the next"}

var transitionPhrases = map[string][]string{
	TransitionNatural: {
		"Now that we've covered that, let's talk about...",
		"Speaking of which...",
		"That brings up another important point...",
	},
	TransitionCustomerInitiated: {
		"I understand you'd like to focus on...",
		"Absolutely, let's switch to...",
		"Of course, let me help you with...",
	},
	TransitionSystemRecommended: {
		"Based on what we've discussed, I'd recommend we look at...",
		"The next step would be to consider...",
		"Let me help you with the next important aspect...",
	},
}

// IdentifyTopic scores every topic model against the combined message text
// and returns the best match, or TopicGeneral when nothing matches.
func IdentifyTopic(messages []ChatMessage) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(strings.ToLower(m.Content))
		sb.WriteByte(' ')
	}
	content := sb.String()

	best := TopicGeneral
	bestScore := 0
	for _, model := range topicModels {
		score := 0
		for _, kw := range model.keywords {
			if strings.Contains(content, kw) {
				score++
			}
		}
		for _, ph := range model.phrases {
			if strings.Contains(content, ph) {
				score += 2
			}
		}
		if score > bestScore {
			bestScore = score
			best = model.name
		}
	}
	return best
}

// DetectTopicTransition compares the topic of the last two turns against the
// topic of the current message. It returns nil for the first message of a
// session and when the topic did not change.
func DetectTopicTransition(previousTurns []ChatMessage, currentMessage string, intent nlp.Intent, seed int64) *TopicTransition {
	if len(previousTurns) == 0 {
		return nil
	}

	window := previousTurns
	if len(window) > 2 {
		window = window[len(window)-2:]
	}
	fromTopic := IdentifyTopic(window)
	toTopic := IdentifyTopic([]ChatMessage{{Content: currentMessage}})

	if fromTopic == toTopic {
		return nil
	}

	transitionType := classifyTransition(previousTurns, currentMessage)

	return &TopicTransition{
		FromTopic:        fromTopic,
		ToTopic:          toTopic,
		TransitionType:   transitionType,
		Confidence:       transitionConfidence(fromTopic, toTopic, intent),
		TriggerWords:     triggerWords(currentMessage, toTopic),
		ContextClues:     contextClues(previousTurns, currentMessage),
		TransitionPhrase: transitionPhrase(transitionType, seed),
	}
}

func classifyTransition(previousTurns []ChatMessage, currentMessage string) string {
	lower := strings.ToLower(currentMessage)
	for _, c := range contrastiveConnectives {
		if strings.Contains(lower, c) {
			return TransitionCustomerInitiated
		}
	}

	last := previousTurns[len(previousTurns)-1]
	if last.Role == "assistant" {
		lastLower := strings.ToLower(last.Content)
		for _, r := range redirectPhrases {
			if strings.Contains(lastLower, r) {
				return TransitionSystemRecommended
			}
		}
	}
	return TransitionNatural
}

func transitionConfidence(fromTopic, toTopic string, intent nlp.Intent) float64 {
	confidence := intent.Confidence
	for _, next := range logicalProgression[fromTopic] {
		if next == toTopic {
			confidence += 0.2
			break
		}
	}
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

// transitionPhrase picks a phrase variant deterministically from the seed so
// repeated runs with the same inputs produce the same text.
func transitionPhrase(transitionType string, seed int64) string {
	phrases, ok := transitionPhrases[transitionType]
	if !ok {
		phrases = transitionPhrases[TransitionNatural]
	}
	if seed < 0 {
		seed = -seed
	}
	return phrases[int(seed)%len(phrases)]
}

func triggerWords(message, topic string) []string {
	var model *topicModel
	for i := range topicModels {
		if topicModels[i].name == topic {
			model = &topicModels[i]
			break
		}
	}
	if model == nil {
		return nil
	}

	keywords := make(map[string]struct{}, len(model.keywords))
	for _, kw := range model.keywords {
		keywords[kw] = struct{}{}
	}

	var words []string
	for _, w := range strings.Fields(strings.ToLower(message)) {
		w = strings.Trim(w, ".,!?;:")
		if _, ok := keywords[w]; ok {
			words = append(words, w)
		}
	}
	return words
}

var connectingWords = []string{"because", "since", "also", "additionally", "furthermore", "moreover"}

func contextClues(previousTurns []ChatMessage, currentMessage string) []string {
	var clues []string
	lower := strings.ToLower(currentMessage)
	for _, w := range connectingWords {
		if strings.Contains(lower, w) {
			clues = append(clues, "connecting_word:"+w)
		}
	}
	if strings.Contains(lower, "you mentioned") || strings.Contains(lower, "you said") {
		clues = append(clues, "reference_to_previous")
	}
	return clues
}

// TopicsDiscussed labels every turn and returns the distinct non-general
// topics in order of first appearance.
func TopicsDiscussed(history []ChatMessage) []string {
	var topics []string
	seen := make(map[string]struct{})
	for _, m := range history {
		topic := IdentifyTopic([]ChatMessage{m})
		if topic == TopicGeneral {
			continue
		}
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}
	return topics
}
