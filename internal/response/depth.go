package response

import (
	"strings"

	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

// determineDepth derives the depth configuration when the caller did not
// supply one. Frustrated or critical-urgency customers get the quick layer;
// engaged detail-seekers get the comprehensive one. High decision readiness
// bumps the layer up by one, capped at 3.
func determineDepth(intent nlp.Intent, pctx PersonalizationContext, sentiment nlp.Sentiment) DepthConfig {
	layer := 2
	if sentiment.UrgencyLevel == "critical" || sentiment.EmotionalState == nlp.EmotionFrustrated {
		layer = 1
	} else if pctx.Customer.DetailPreference == "comprehensive" && sentiment.EngagementLevel > 0.7 {
		layer = 3
	}

	if pctx.Customer.DecisionReadiness > 0.8 && layer < 3 {
		layer++
	}

	cfg := DepthForLayer(layer)
	// Complaints never get "alternatively, ..." padding.
	if intent.Category == nlp.IntentComplaint {
		cfg.IncludeAlternatives = false
	}
	return cfg
}

var explanations = map[string]string{
	nlp.IntentStyleAdvice:      "This recommendation is based on your style preferences and the occasion you mentioned.",
	nlp.IntentPurchaseIntent:   "This option aligns with your budget and requirements.",
	nlp.IntentOccasionGuidance: "This style is appropriate for your event and will help you look your best.",
	nlp.IntentFitSizing:        "Proper fit is crucial for both comfort and appearance.",
}

var examples = map[string]string{
	nlp.IntentStyleAdvice:      "a navy suit with a crisp white shirt creates a timeless, professional look.",
	nlp.IntentOccasionGuidance: "for a wedding, you might pair a charcoal suit with a subtle patterned tie.",
	nlp.IntentFitSizing:        "the jacket should close comfortably without pulling at the buttons.",
}

var alternativeSuggestions = map[string]string{
	nlp.IntentStyleAdvice:      "you could also consider a different color or pattern that achieves a similar effect.",
	nlp.IntentPurchaseIntent:   "we have similar options in different price ranges if you'd like to see them.",
	nlp.IntentOccasionGuidance: "depending on the venue, you might want a slightly more or less formal approach.",
}

var nextSteps = map[string]string{
	nlp.IntentStyleAdvice:      "Shall we look at some specific options that match this style?",
	nlp.IntentPurchaseIntent:   "Would you like me to check availability and schedule a fitting?",
	nlp.IntentOccasionGuidance: "Let's put together a complete look for your event.",
	nlp.IntentFitSizing:        "I'd recommend scheduling a fitting to ensure accurate measurements.",
}

// applyDepth appends the configured depth features in a fixed order, then
// enforces the layer's length budget.
func applyDepth(message string, cfg DepthConfig, intent nlp.Intent) (string, []string) {
	var added []string

	if cfg.IncludeExplanations && cfg.Layer >= 2 {
		if e, ok := explanations[intent.Category]; ok {
			message += " " + e
			added = append(added, "explanation")
		}
	}
	if cfg.IncludeExamples && cfg.Layer == 3 {
		if e, ok := examples[intent.Category]; ok {
			message += " For example, " + e
			added = append(added, "example")
		}
	}
	if cfg.IncludeAlternatives && cfg.Layer >= 2 {
		if a, ok := alternativeSuggestions[intent.Category]; ok {
			message += " Alternatively, " + a
			added = append(added, "alternatives")
		}
	}
	if cfg.IncludeNextSteps {
		if n, ok := nextSteps[intent.Category]; ok {
			message += " " + n
			added = append(added, "next_steps")
		}
	}

	if len(message) > cfg.MaxLength {
		message = truncateMessage(message, cfg.MaxLength)
		added = append(added, "truncated")
	}
	return message, added
}

// truncateMessage cuts at the nearest preceding word boundary when one sits
// close enough to the limit, and appends an ellipsis.
func truncateMessage(message string, maxLength int) string {
	if len(message) <= maxLength {
		return message
	}
	if maxLength <= len("...") {
		return message[:maxLength]
	}
	truncated := message[:maxLength-3]
	if lastSpace := strings.LastIndexByte(truncated, ' '); lastSpace > (maxLength*8)/10 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}

// suggestedActions lists the UI actions offered with the response, limited to
// layer+1 entries.
func suggestedActions(intent nlp.Intent, cfg DepthConfig) []string {
	var actions []string
	switch intent.Category {
	case nlp.IntentStyleAdvice:
		actions = []string{"Show style examples", "Schedule consultation", "Browse similar items"}
	case nlp.IntentPurchaseIntent:
		actions = []string{"Add to cart", "Schedule fitting", "Check availability"}
	case nlp.IntentOccasionGuidance:
		actions = []string{"View occasion looks", "Get complete outfit", "Set event reminder"}
	case nlp.IntentFitSizing:
		actions = []string{"Schedule fitting appointment", "View size guide", "Get measurement tips"}
	default:
		actions = []string{"Continue conversation", "Browse products", "Contact specialist"}
	}
	limit := cfg.Layer + 1
	if len(actions) > limit {
		actions = actions[:limit]
	}
	return actions
}

// followUpHooks merges the template's triggers with intent-specific hooks,
// deduplicated and capped at 5.
func followUpHooks(t Template, intent nlp.Intent) []string {
	hooks := append([]string(nil), t.FollowUpTriggers...)
	switch intent.Category {
	case nlp.IntentStyleAdvice:
		hooks = append(hooks, "occasion_details", "color_preferences", "budget_discussion")
	case nlp.IntentPurchaseIntent:
		hooks = append(hooks, "sizing_check", "timeline_confirmation", "accessory_suggestions")
	}

	seen := make(map[string]struct{}, len(hooks))
	out := hooks[:0]
	for _, h := range hooks {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
