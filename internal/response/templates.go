package response

import (
	"fmt"

	"github.com/sartoria-ai/chat-platform/internal/conversation"
	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

// defaultTemplates is the curated template set. Coverage is deliberately
// uneven: the high-traffic intent/framework pairs get dedicated templates and
// everything else falls through to fallbackTemplate.
func defaultTemplates() []Template {
	return []Template{
		{
			ID:           "consultative_style_advice_l2",
			Category:     nlp.IntentStyleAdvice,
			Subcategory:  "general_consultation",
			Framework:    conversation.FrameworkConsultative,
			Layer:        2,
			BaseTemplate: "I'd love to help you find the perfect {item} for {occasion}. Based on your {style_preference}, I have some excellent recommendations that would work beautifully.",
			Variables:    []string{"item", "occasion", "style_preference"},
			ToneVariations: map[string]string{
				"professional": "I would be pleased to assist you in finding the ideal {item} for {occasion}.",
				"enthusiastic": "I'm so excited to help you find an amazing {item} for {occasion}!",
				"reassuring":   "Don't worry, we'll find the perfect {item} for {occasion} together.",
			},
			ContextAdaptations: map[string]string{
				"initial_discovery_excited":  "This is going to be fun!",
				"style_consultation_anxious": "Let me help ease your concerns.",
			},
			FollowUpTriggers: []string{"style_examples", "color_discussion", "budget_confirmation"},
		},
		{
			ID:           "consultative_style_advice_l1",
			Category:     nlp.IntentStyleAdvice,
			Subcategory:  "quick_consultation",
			Framework:    conversation.FrameworkConsultative,
			Layer:        1,
			BaseTemplate: "Happy to help with {item} for {occasion}.",
			Variables:    []string{"item", "occasion"},
			ToneVariations: map[string]string{
				"professional": "Certainly, let me help with {item} for {occasion}.",
			},
			FollowUpTriggers: []string{"style_examples"},
		},
		{
			ID:           "directive_purchase_l3",
			Category:     nlp.IntentPurchaseIntent,
			Subcategory:  "buying_decision",
			Framework:    conversation.FrameworkDirective,
			Layer:        3,
			BaseTemplate: "Excellent choice! This {item} is a great fit for {occasion} and offers strong value within {budget_range}. The quality construction ensures years of wear, and the style will remain timeless.",
			Variables:    []string{"item", "occasion", "budget_range"},
			ToneVariations: map[string]string{
				"confident":    "You've made an outstanding decision with this {item}.",
				"supportive":   "This {item} is going to work really well for you.",
				"professional": "This {item} represents excellent value and quality.",
			},
			ContextAdaptations: map[string]string{
				"purchase_decision_excited": "Your instincts are spot-on.",
				"purchase_decision_anxious": "Let me share why this is such a strong choice.",
			},
			FollowUpTriggers: []string{"sizing_confirmation", "delivery_timeline", "accessory_suggestions"},
		},
		{
			ID:           "directive_purchase_l2",
			Category:     nlp.IntentPurchaseIntent,
			Subcategory:  "buying_decision",
			Framework:    conversation.FrameworkDirective,
			Layer:        2,
			BaseTemplate: "Great choice. This {item} works well for {occasion}, and I can walk you through the next steps whenever you're ready.",
			Variables:    []string{"item", "occasion"},
			ToneVariations: map[string]string{
				"confident": "You won't regret this {item}.",
			},
			FollowUpTriggers: []string{"sizing_confirmation", "delivery_timeline"},
		},
		{
			ID:           "consultative_occasion_l2",
			Category:     nlp.IntentOccasionGuidance,
			Subcategory:  "event_styling",
			Framework:    conversation.FrameworkConsultative,
			Layer:        2,
			BaseTemplate: "For {occasion}, the right {item} makes all the difference. Given your {style_preference}, here's what I'd suggest.",
			Variables:    []string{"item", "occasion", "style_preference"},
			ToneVariations: map[string]string{
				"professional": "Allow me to suggest appropriate options for {occasion}.",
				"enthusiastic": "What a great event to dress for!",
			},
			FollowUpTriggers: []string{"dress_code_check", "complete_look"},
		},
		{
			ID:           "consultative_fit_l2",
			Category:     nlp.IntentFitSizing,
			Subcategory:  "measurement_guidance",
			Framework:    conversation.FrameworkConsultative,
			Layer:        2,
			BaseTemplate: "Getting the fit right matters more than anything else. Let's work through your measurements so the {item} fits the way it should.",
			Variables:    []string{"item"},
			ToneVariations: map[string]string{
				"reassuring": "Fit questions are the easiest ones to sort out, I promise.",
			},
			FollowUpTriggers: []string{"schedule_fitting", "size_guide"},
		},
		{
			ID:           "empathetic_complaint_l1",
			Category:     nlp.IntentComplaint,
			Subcategory:  "issue_recovery",
			Framework:    conversation.FrameworkEmpathetic,
			Layer:        1,
			BaseTemplate: "I'm sorry about the trouble with your {item}. Let me make this right for you.",
			Variables:    []string{"item"},
			ToneVariations: map[string]string{
				"professional": "I apologize for the inconvenience with your {item}.",
			},
			ContextAdaptations: map[string]string{
				"initial_discovery_frustrated": "I understand your concern, and I'm here to help.",
			},
			FollowUpTriggers: []string{"issue_details", "resolution_options"},
		},
		{
			ID:           "empathetic_complaint_l2",
			Category:     nlp.IntentComplaint,
			Subcategory:  "issue_recovery",
			Framework:    conversation.FrameworkEmpathetic,
			Layer:        2,
			BaseTemplate: "I'm sorry about the trouble with your {item}. That's not the experience we want you to have, and I'll work through it with you until it's resolved.",
			Variables:    []string{"item"},
			ToneVariations: map[string]string{
				"professional": "I apologize for the inconvenience, and I'm committed to resolving this.",
			},
			FollowUpTriggers: []string{"issue_details", "resolution_options"},
		},
	}
}

// fallbackTemplate covers every category/framework/layer with no dedicated
// entry in the template set.
func fallbackTemplate(category string, framework conversation.Framework, layer int) Template {
	return Template{
		ID:               fmt.Sprintf("default_%s_%s_l%d", category, framework, layer),
		Category:         category,
		Subcategory:      "general",
		Framework:        framework,
		Layer:            layer,
		BaseTemplate:     "I'm here to help you with {item}. Let me share some recommendations.",
		Variables:        []string{"item"},
		FollowUpTriggers: []string{"continue_conversation"},
	}
}

// scoreTemplate ranks candidate templates. Framework match dominates, then
// variable richness, then tone-variation richness.
func scoreTemplate(t Template, pctx PersonalizationContext) float64 {
	score := 0.5
	if t.Framework == pctx.Conversation.Framework {
		score += 0.2
	}
	score += minf(float64(len(t.Variables))*0.05, 0.2)
	score += minf(float64(len(t.ToneVariations))*0.03, 0.1)
	return score
}

// selectTemplate picks the best-scoring template matching the intent category,
// framework, and layer, or the generic fallback when nothing matches.
func selectTemplate(templates []Template, category string, framework conversation.Framework, layer int, pctx PersonalizationContext) Template {
	var best *Template
	bestScore := -1.0
	for i := range templates {
		t := &templates[i]
		if t.Category != category || t.Framework != framework || t.Layer != layer {
			continue
		}
		if s := scoreTemplate(*t, pctx); s > bestScore {
			best = t
			bestScore = s
		}
	}
	if best == nil {
		return fallbackTemplate(category, framework, layer)
	}
	return *best
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
