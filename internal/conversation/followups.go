package conversation

import (
	"sort"
	"strings"

	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

const maxFollowUpQuestions = 5

// GenerateFollowUpQuestions assembles candidate questions from the intent,
// from gaps in what we know, and from the decision journey, then returns the
// top candidates ranked by priority × relevance.
func GenerateFollowUpQuestions(enhanced *EnhancedContext, memory *ContextualMemory, flow *ConversationFlow, intent nlp.Intent) []FollowUpQuestion {
	var questions []FollowUpQuestion

	switch intent.Category {
	case nlp.IntentStyleAdvice:
		questions = append(questions, styleAdviceQuestions(enhanced)...)
	case nlp.IntentPurchaseIntent:
		questions = append(questions, purchaseQuestions(enhanced)...)
	case nlp.IntentOccasionGuidance:
		questions = append(questions, occasionQuestions(intent)...)
	case nlp.IntentFitSizing:
		questions = append(questions, fitQuestions()...)
	}

	questions = append(questions, gapFillingQuestions(enhanced, memory)...)
	if flow != nil {
		questions = append(questions, flowQuestions(flow)...)
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return float64(questions[i].Priority)*questions[i].ContextRelevance >
			float64(questions[j].Priority)*questions[j].ContextRelevance
	})

	if len(questions) > maxFollowUpQuestions {
		questions = questions[:maxFollowUpQuestions]
	}
	return questions
}

func styleAdviceQuestions(enhanced *EnhancedContext) []FollowUpQuestion {
	var questions []FollowUpQuestion
	if len(enhanced.Preferences.Occasions) == 0 {
		questions = append(questions, FollowUpQuestion{
			Question:             "What occasions do you typically dress for?",
			Category:             "occasion_discovery",
			Priority:             8,
			ContextRelevance:     0.9,
			ExpectedResponseType: "occasions_list",
			FollowUpActions:      []string{"update_occasion_preferences", "suggest_occasion_appropriate_styles"},
		})
	}
	if len(enhanced.Preferences.Styles) == 0 {
		questions = append(questions, FollowUpQuestion{
			Question:             "Do you prefer a more classic look or something more modern and trendy?",
			Category:             "style_preference",
			Priority:             7,
			ContextRelevance:     0.8,
			ExpectedResponseType: "style_preference",
			FollowUpActions:      []string{"update_style_preferences", "show_style_examples"},
		})
	}
	return questions
}

func purchaseQuestions(enhanced *EnhancedContext) []FollowUpQuestion {
	questions := []FollowUpQuestion{{
		Question:             "When do you need this by?",
		Category:             "timeline",
		Priority:             9,
		ContextRelevance:     0.95,
		ExpectedResponseType: "date_timeline",
		FollowUpActions:      []string{"check_availability", "schedule_alterations"},
	}}
	if enhanced.Preferences.BudgetRange == "" {
		questions = append(questions, FollowUpQuestion{
			Question:             "What investment level are you considering for this piece?",
			Category:             "budget",
			Priority:             8,
			ContextRelevance:     0.85,
			ExpectedResponseType: "budget_range",
			FollowUpActions:      []string{"filter_by_budget", "show_value_options"},
		})
	}
	return questions
}

func occasionQuestions(intent nlp.Intent) []FollowUpQuestion {
	if occasion, ok := intent.Entities["occasion"]; ok && strings.Contains(strings.ToLower(occasion), "wedding") {
		return []FollowUpQuestion{{
			Question:             "Are you the groom, a groomsman, or a guest at the wedding?",
			Category:             "role_clarification",
			Priority:             9,
			ContextRelevance:     0.9,
			ExpectedResponseType: "wedding_role",
			FollowUpActions:      []string{"suggest_role_appropriate_styles", "check_wedding_timeline"},
		}}
	}
	return nil
}

func fitQuestions() []FollowUpQuestion {
	return []FollowUpQuestion{{
		Question:             "Have you been professionally measured for a suit before?",
		Category:             "measurement_history",
		Priority:             8,
		ContextRelevance:     0.8,
		ExpectedResponseType: "yes_no_details",
		FollowUpActions:      []string{"schedule_fitting", "explain_measurement_process"},
	}}
}

func gapFillingQuestions(enhanced *EnhancedContext, memory *ContextualMemory) []FollowUpQuestion {
	var questions []FollowUpQuestion
	if memory != nil && memory.Demographics.Profession == "" {
		questions = append(questions, FollowUpQuestion{
			Question:             "What do you do for work? This helps me recommend appropriate styles.",
			Category:             "profession",
			Priority:             6,
			ContextRelevance:     0.7,
			ExpectedResponseType: "profession",
			FollowUpActions:      []string{"update_professional_context", "suggest_business_appropriate_styles"},
		})
	}
	return questions
}

func flowQuestions(flow *ConversationFlow) []FollowUpQuestion {
	j := flow.DecisionJourney
	if j.CurrentPhase == PhaseConsideration && j.ProgressionScore > 0.6 {
		return []FollowUpQuestion{{
			Question:             "Which option are you leaning towards, and what questions do you still have?",
			Category:             "decision_facilitation",
			Priority:             9,
			ContextRelevance:     0.9,
			ExpectedResponseType: "preference_with_concerns",
			FollowUpActions:      []string{"address_concerns", "facilitate_decision"},
		}}
	}
	return nil
}
