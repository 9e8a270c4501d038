package conversation

import (
	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

// stageAdjacency is the fixed stage-progression table, ordered from the next
// logical stage to the most advanced reachable stage.
var stageAdjacency = map[string][]string{
	StageInitialDiscovery:    {StageNeedsAssessment, StageStyleConsultation},
	StageNeedsAssessment:     {StageStyleConsultation, StageProductPresentation},
	StageStyleConsultation:   {StageProductPresentation, StageSizingConsultation},
	StageProductPresentation: {StageSizingConsultation, StagePurchaseDecision},
	StageSizingConsultation:  {StageFinalRecommendations, StagePurchaseDecision},
	StagePurchaseDecision:    {StageOrderCompletion, StageFollowUpScheduling},
}

// newFlow seeds flow state for a session's first turn. The framework follows
// the opening intent: complaints get the empathetic persona, confident
// purchase intent gets the directive one.
func newFlow(intent nlp.Intent) *ConversationFlow {
	return &ConversationFlow{
		CurrentStage: StageInitialDiscovery,
		Framework:    frameworkForIntent(intent),
		FlowState: FlowState{
			CurrentObjectives:    initialObjectives(intent),
			NextRecommendedStage: nextStageForIntent(intent),
		},
		EngagementMetrics: EngagementMetrics{DepthLevel: 1},
		DecisionJourney: DecisionJourney{
			CurrentPhase:       PhaseDiscovery,
			ProgressionScore:   0,
			RemainingDecisions: remainingDecisions(intent),
		},
	}
}

func frameworkForIntent(intent nlp.Intent) Framework {
	switch {
	case intent.Category == nlp.IntentComplaint:
		return FrameworkEmpathetic
	case intent.Category == nlp.IntentPurchaseIntent && intent.Confidence > 0.8:
		return FrameworkDirective
	default:
		return FrameworkConsultative
	}
}

func initialObjectives(intent nlp.Intent) []string {
	switch intent.Category {
	case nlp.IntentStyleAdvice:
		return []string{"understand_style_preferences", "identify_occasions", "gather_sizing_info"}
	case nlp.IntentPurchaseIntent:
		return []string{"confirm_product_interest", "check_availability", "discuss_timeline"}
	case nlp.IntentOccasionGuidance:
		return []string{"clarify_event_details", "understand_dress_code", "suggest_appropriate_styles"}
	default:
		return []string{"understand_needs", "gather_preferences"}
	}
}

func nextStageForIntent(intent nlp.Intent) string {
	switch intent.Category {
	case nlp.IntentStyleAdvice:
		return StageStyleConsultation
	case nlp.IntentPurchaseIntent:
		return StageProductPresentation
	case nlp.IntentOccasionGuidance:
		return StageOccasionStyling
	case nlp.IntentFitSizing:
		return StageSizingConsultation
	default:
		return StageNeedsAssessment
	}
}

func remainingDecisions(intent nlp.Intent) []string {
	base := []string{FactorStyle, FactorBudget, FactorTimeline}
	switch intent.Category {
	case nlp.IntentStyleAdvice:
		return append(base, FactorOccasion, "color_preference")
	case nlp.IntentPurchaseIntent:
		return []string{"size_confirmation", "final_selection", "purchase_decision"}
	case nlp.IntentOccasionGuidance:
		return append(base, FactorOccasion, "dress_code_compliance")
	default:
		return append(base, FactorOccasion)
	}
}

// AdvanceFlow updates a session's flow for one turn: counters, the decision
// journey, and the next recommended stage. It creates the flow on first call.
func AdvanceFlow(flow *ConversationFlow, intent nlp.Intent, enhanced *EnhancedContext, transition *TopicTransition) *ConversationFlow {
	if flow == nil {
		flow = newFlow(intent)
	}

	flow.EngagementMetrics.MessageCount++
	if transition != nil {
		flow.EngagementMetrics.TopicSwitches++
	}

	updateDecisionJourney(flow, enhanced)
	flow.FlowState.NextRecommendedStage = nextStage(flow, intent)
	return flow
}

// updateDecisionJourney recomputes the progression score from the decision
// factors currently known. Factors only accumulate, so the score is clamped
// non-decreasing as a hard invariant.
func updateDecisionJourney(flow *ConversationFlow, enhanced *EnhancedContext) {
	j := &flow.DecisionJourney

	score := float64(countKnownFactors(enhanced)) / 4
	if score > j.ProgressionScore {
		j.ProgressionScore = score
	}

	switch {
	case j.ProgressionScore > 0.7:
		j.CurrentPhase = PhaseDecision
	case j.ProgressionScore >= 0.4:
		j.CurrentPhase = PhaseConsideration
	default:
		j.CurrentPhase = PhaseDiscovery
	}

	markDecided := func(factor string) {
		for _, d := range j.KeyDecisionsMade {
			if d == factor {
				return
			}
		}
		j.KeyDecisionsMade = append(j.KeyDecisionsMade, factor)
	}
	if len(enhanced.Preferences.Styles) > 0 {
		markDecided(FactorStyle)
	}
	if len(enhanced.Preferences.Occasions) > 0 {
		markDecided(FactorOccasion)
	}
	if enhanced.Preferences.BudgetRange != "" {
		markDecided(FactorBudget)
	}
	if enhanced.Session.Timeline != "" {
		markDecided(FactorTimeline)
	}

	decided := make(map[string]struct{}, len(j.KeyDecisionsMade))
	for _, d := range j.KeyDecisionsMade {
		decided[d] = struct{}{}
	}
	remaining := j.RemainingDecisions[:0]
	for _, d := range j.RemainingDecisions {
		if _, ok := decided[d]; !ok {
			remaining = append(remaining, d)
		}
	}
	j.RemainingDecisions = remaining
}

func countKnownFactors(enhanced *EnhancedContext) int {
	known := 0
	if len(enhanced.Preferences.Styles) > 0 {
		known++
	}
	if len(enhanced.Preferences.Occasions) > 0 {
		known++
	}
	if enhanced.Preferences.BudgetRange != "" {
		known++
	}
	if enhanced.Session.Timeline != "" {
		known++
	}
	return known
}

// nextStage consults the adjacency table. With strong progression and
// purchase intent we jump to the most advanced reachable stage, otherwise the
// first adjacent one.
func nextStage(flow *ConversationFlow, intent nlp.Intent) string {
	adjacent, ok := stageAdjacency[flow.CurrentStage]
	if !ok || len(adjacent) == 0 {
		return StageNeedsAssessment
	}
	if flow.DecisionJourney.ProgressionScore > 0.7 && intent.Category == nlp.IntentPurchaseIntent {
		return adjacent[len(adjacent)-1]
	}
	return adjacent[0]
}

// EngagementLevel scores how invested the customer is, from message volume,
// topic diversity, and depth.
func EngagementLevel(m EngagementMetrics) float64 {
	engagement := 0.5
	engagement += min64(float64(m.MessageCount)*0.05, 0.3)
	engagement += min64(float64(m.TopicSwitches)*0.1, 0.2)
	engagement += min64(float64(m.DepthLevel)*0.1, 0.2)
	return min64(engagement, 1.0)
}

// RecommendedApproach maps journey phase and engagement to a coarse strategy
// tag the response pipeline can key on.
func RecommendedApproach(flow *ConversationFlow) string {
	engagement := EngagementLevel(flow.EngagementMetrics)
	j := flow.DecisionJourney

	switch {
	case engagement < 0.3:
		return "reengage"
	case j.CurrentPhase == PhaseDiscovery && j.ProgressionScore < 0.3:
		return "gather_more_info"
	case j.CurrentPhase == PhaseConsideration && j.ProgressionScore > 0.6:
		return "guide_to_decision"
	case j.CurrentPhase == PhaseDecision:
		return "facilitate_purchase"
	default:
		return "continue_current_flow"
	}
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
