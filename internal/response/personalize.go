package response

import (
	"strings"

	"github.com/sartoria-ai/chat-platform/internal/conversation"
	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

// personalityProfile captures how a communication style prefers to receive
// information.
type personalityProfile struct {
	detailLevel       string
	responseStructure string // "logical_progression", "conversational_flow", "action_focused"
}

var personalityProfiles = map[string]personalityProfile{
	"analytical":           {detailLevel: "comprehensive", responseStructure: "logical_progression"},
	"relationship_focused": {detailLevel: "moderate", responseStructure: "conversational_flow"},
	"task_oriented":        {detailLevel: "brief", responseStructure: "action_focused"},
}

// buildPersonalizationContext fuses the session context, the analysis output,
// and the engine's insight snapshot into the pipeline's working context.
func buildPersonalizationContext(enhanced *conversation.EnhancedContext, analysis *nlp.Analysis, insights conversation.Insights) PersonalizationContext {
	communicationStyle := insights.CommunicationStyle
	if communicationStyle == "" {
		communicationStyle = "professional"
	}

	var previous []string
	for _, m := range enhanced.History {
		if m.Role == "assistant" {
			previous = append(previous, m.Content)
		}
	}
	if len(previous) > 3 {
		previous = previous[len(previous)-3:]
	}

	stage := enhanced.CurrentStage
	if stage == "" {
		stage = conversation.StageInitialDiscovery
	}

	return PersonalizationContext{
		Customer: CustomerProfile{
			CommunicationStyle:  communicationStyle,
			FormalityPreference: formalityPreference(enhanced.History),
			DetailPreference:    detailPreference(analysis.Sentiment, len(enhanced.History)),
			EmotionalState:      analysis.Sentiment.EmotionalState,
			DecisionReadiness:   analysis.Sentiment.DecisionReadiness,
		},
		Conversation: ConversationProfile{
			Stage:             stage,
			Framework:         enhanced.Framework,
			MessageCount:      len(enhanced.History),
			TopicsDiscussed:   enhanced.Session.TopicsDiscussed,
			PreviousResponses: previous,
		},
		Business: BusinessContext{
			UrgencyLevel:          analysis.Sentiment.UrgencyLevel,
			ConversionOpportunity: conversionOpportunity(analysis.Sentiment, insights),
			CrossSellPotential:    insights.MotivationTriggers,
			RetentionRisk:         retentionRisk(analysis.Sentiment),
		},
	}
}

// formalityPreference reads lexical cues out of the customer's own turns.
func formalityPreference(history []conversation.ChatMessage) string {
	var sb strings.Builder
	for _, m := range history {
		if m.Role == "user" {
			sb.WriteString(strings.ToLower(m.Content))
			sb.WriteByte(' ')
		}
	}
	text := sb.String()

	switch {
	case strings.Contains(text, "sir") || strings.Contains(text, "ma'am") || strings.Contains(text, "please"):
		return "formal"
	case strings.Contains(text, "hey") || strings.Contains(text, "yeah") || strings.Contains(text, "cool"):
		return "casual"
	default:
		return "professional"
	}
}

func detailPreference(sentiment nlp.Sentiment, messageCount int) string {
	switch {
	case sentiment.EngagementLevel < 0.4 || messageCount < 3:
		return "brief"
	case sentiment.EngagementLevel > 0.7 && messageCount > 5:
		return "comprehensive"
	default:
		return "moderate"
	}
}

func conversionOpportunity(sentiment nlp.Sentiment, insights conversation.Insights) float64 {
	opportunity := 0.5
	if sentiment.DecisionReadiness > 0.7 {
		opportunity += 0.3
	}
	if sentiment.Overall == "positive" {
		opportunity += 0.2
	}
	if insights.CurrentPhase == conversation.PhaseDecision {
		opportunity += 0.2
	}
	return minf(opportunity, 1.0)
}

func retentionRisk(sentiment nlp.Sentiment) float64 {
	risk := 0.1
	if sentiment.EmotionalState == nlp.EmotionFrustrated {
		risk += 0.4
	}
	if sentiment.Overall == "negative" {
		risk += 0.3
	}
	if sentiment.UrgencyLevel == "critical" {
		risk += 0.2
	}
	return minf(risk, 1.0)
}

// variableValue resolves one {placeholder} from the intent and context.
// Returns "" for unknown variables, which the caller then strips.
func variableValue(variable string, intent nlp.Intent, enhanced *conversation.EnhancedContext, pctx PersonalizationContext) string {
	switch variable {
	case "occasion":
		if v := intent.Entities["occasion"]; v != "" {
			return v
		}
		if len(enhanced.Preferences.Occasions) > 0 {
			return enhanced.Preferences.Occasions[0]
		}
		return "your event"
	case "item":
		if v := intent.Entities["product"]; v != "" {
			return v
		}
		return "the perfect piece"
	case "style_preference":
		if len(enhanced.Preferences.Styles) > 0 {
			return enhanced.Preferences.Styles[0] + " style"
		}
		return "preferred style"
	case "budget_range":
		if enhanced.Preferences.BudgetRange != "" {
			return enhanced.Preferences.BudgetRange
		}
		return "your budget"
	case "urgency":
		return pctx.Business.UrgencyLevel
	default:
		return ""
	}
}

// renderTemplate substitutes the template's variables and strips any
// placeholder that did not resolve.
func renderTemplate(t Template, intent nlp.Intent, enhanced *conversation.EnhancedContext, pctx PersonalizationContext) (string, []string) {
	message := t.BaseTemplate
	var used []string
	for _, v := range t.Variables {
		value := variableValue(v, intent, enhanced, pctx)
		if value == "" {
			continue
		}
		placeholder := "{" + v + "}"
		if strings.Contains(message, placeholder) {
			message = strings.ReplaceAll(message, placeholder, value)
			used = append(used, v)
		}
	}
	message = stripPlaceholders(message)
	return message, used
}

// stripPlaceholders removes any unresolved {variable} tokens.
func stripPlaceholders(message string) string {
	var sb strings.Builder
	depth := 0
	for _, r := range message {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// applyPersonality rewrites the message per the customer's communication
// style profile. Unknown styles pass through untouched.
func applyPersonality(message string, style string) (string, bool) {
	profile, ok := personalityProfiles[style]
	if !ok {
		return message, false
	}
	switch profile.responseStructure {
	case "action_focused":
		lower := strings.ToLower(message)
		if !strings.Contains(lower, "let's") && !strings.Contains(lower, "we can") {
			return "Let's get right to it. " + message, true
		}
	case "conversational_flow":
		if !strings.Contains(message, "I") && !strings.Contains(message, "you") {
			return "I'd love to help you with this. " + message, true
		}
	}
	return message, true
}

// contextAdaptation prepends the fixed phrase keyed by stage and emotional
// state, when the template defines one.
func contextAdaptation(t Template, pctx PersonalizationContext, message string) (string, bool) {
	if len(t.ContextAdaptations) == 0 {
		return message, false
	}
	key := pctx.Conversation.Stage + "_" + pctx.Customer.EmotionalState
	adaptation, ok := t.ContextAdaptations[key]
	if !ok {
		return message, false
	}
	return adaptation + " " + message, true
}

// personalizationScore rewards variable usage and applied personalization
// features, capped at 1.0.
func personalizationScore(variablesUsed, applied []string) float64 {
	score := 0.5
	score += float64(len(variablesUsed)) * 0.1
	score += float64(len(applied)) * 0.05
	for _, a := range applied {
		if a == "personality_adaptation" || a == "context_adaptation" {
			score += 0.1
		}
	}
	return minf(score, 1.0)
}
