package conversation

import "time"

// Framework is the conversational persona/strategy selected for a session.
type Framework string

const (
	// FrameworkConsultative is the default advisory persona.
	FrameworkConsultative Framework = "consultative"
	// FrameworkEmpathetic is used for complaint recovery.
	FrameworkEmpathetic Framework = "empathetic"
	// FrameworkDirective is used for high-confidence purchase intent.
	FrameworkDirective Framework = "directive"
)

// Conversation stages of the decision journey state machine.
const (
	StageInitialDiscovery     = "initial_discovery"
	StageNeedsAssessment      = "needs_assessment"
	StageStyleConsultation    = "style_consultation"
	StageProductPresentation  = "product_presentation"
	StageSizingConsultation   = "sizing_consultation"
	StageOccasionStyling      = "occasion_styling"
	StageFinalRecommendations = "final_recommendations"
	StagePurchaseDecision     = "purchase_decision"
	StageOrderCompletion      = "order_completion"
	StageFollowUpScheduling   = "follow_up_scheduling"
)

// Decision journey phases.
const (
	PhaseDiscovery     = "discovery"
	PhaseConsideration = "consideration"
	PhaseDecision      = "decision"
	PhasePostDecision  = "post_decision"
)

// Decision factors the progression score is computed from.
const (
	FactorStyle    = "style_preference"
	FactorOccasion = "occasion"
	FactorBudget   = "budget"
	FactorTimeline = "timeline"
)

// ChatMessage is a single turn in a conversation transcript.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Preferences are the accumulated shopping preferences for a session.
type Preferences struct {
	Styles         []string `json:"styles"`
	Colors         []string `json:"colors"`
	Occasions      []string `json:"occasions"`
	BudgetRange    string   `json:"budget_range"`
	FitPreferences []string `json:"fit_preferences"`
	AvoidedItems   []string `json:"avoided_items"`
}

// Behaviors capture how the customer shops and communicates.
type Behaviors struct {
	DecisionPatterns   []string `json:"decision_patterns"`
	BrowsingStyle      string   `json:"browsing_style"`
	CommunicationStyle string   `json:"communication_style"`
}

// HistoryRefs hold references (IDs, not copies) to the customer's commerce history.
type HistoryRefs struct {
	PastPurchases     []string `json:"past_purchases"`
	FavoriteItems     []string `json:"favorite_items"`
	AbandonedCarts    []string `json:"abandoned_carts"`
	FrequentOccasions []string `json:"frequent_occasions"`
}

// Demographics are slow-changing customer attributes. Overwrites require high
// observation confidence.
type Demographics struct {
	AgeRange            string   `json:"age_range,omitempty"`
	Profession          string   `json:"profession,omitempty"`
	Location            string   `json:"location,omitempty"`
	LifestyleIndicators []string `json:"lifestyle_indicators"`
}

// EmotionalProfile summarizes the customer's affective baseline.
type EmotionalProfile struct {
	TypicalSentiment   string   `json:"typical_sentiment"`
	DecisionConfidence float64  `json:"decision_confidence"` // [0,1]
	StressIndicators   []string `json:"stress_indicators"`
	MotivationTriggers []string `json:"motivation_triggers"`
}

// ContextualMemory is the long-lived per-session memory. List-valued fields
// are unioned on update, never replaced.
type ContextualMemory struct {
	CustomerID       string           `json:"customer_id"`
	SessionID        string           `json:"session_id"`
	Preferences      Preferences      `json:"preferences"`
	Behaviors        Behaviors        `json:"behaviors"`
	History          HistoryRefs      `json:"history"`
	Demographics     Demographics     `json:"demographics"`
	EmotionalProfile EmotionalProfile `json:"emotional_profile"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// FlowState tracks where the staged conversation is and where it can go.
type FlowState struct {
	CompletedStages      []string `json:"completed_stages"`
	CurrentObjectives    []string `json:"current_objectives"`
	NextRecommendedStage string   `json:"next_recommended_stage"`
	AlternativePaths     []string `json:"alternative_paths"`
}

// EngagementMetrics are per-session counters feeding the engagement score.
type EngagementMetrics struct {
	MessageCount  int `json:"message_count"`
	TopicSwitches int `json:"topic_switches"`
	DepthLevel    int `json:"depth_level"`
}

// DecisionJourney tracks progress toward a purchase decision. ProgressionScore
// never decreases within a session.
type DecisionJourney struct {
	CurrentPhase       string   `json:"current_phase"`
	ProgressionScore   float64  `json:"progression_score"`
	KeyDecisionsMade   []string `json:"key_decisions_made"`
	RemainingDecisions []string `json:"remaining_decisions"`
}

// ConversationFlow is the staged state machine for one session.
type ConversationFlow struct {
	CurrentStage      string            `json:"current_stage"`
	Framework         Framework         `json:"framework"`
	FlowState         FlowState         `json:"flow_state"`
	EngagementMetrics EngagementMetrics `json:"engagement_metrics"`
	DecisionJourney   DecisionJourney   `json:"decision_journey"`
	// KnownTimeline is the customer's stated delivery timeline, once given.
	// It is one of the four decision factors.
	KnownTimeline string `json:"known_timeline,omitempty"`
}

// Topic transition types.
const (
	TransitionNatural           = "natural"
	TransitionForced            = "forced"
	TransitionCustomerInitiated = "customer_initiated"
	TransitionSystemRecommended = "system_recommended"
)

// TopicTransition describes a detected change of conversation topic. It is
// computed per turn and never persisted.
type TopicTransition struct {
	FromTopic        string   `json:"from_topic"`
	ToTopic          string   `json:"to_topic"`
	TransitionType   string   `json:"transition_type"`
	Confidence       float64  `json:"confidence"`
	TriggerWords     []string `json:"trigger_words"`
	ContextClues     []string `json:"context_clues"`
	TransitionPhrase string   `json:"transition_phrase"`
}

// FollowUpQuestion is a ranked candidate question for the assistant to ask next.
type FollowUpQuestion struct {
	Question             string   `json:"question"`
	Category             string   `json:"category"`
	Priority             int      `json:"priority"`
	ContextRelevance     float64  `json:"context_relevance"`
	ExpectedResponseType string   `json:"expected_response_type"`
	FollowUpActions      []string `json:"follow_up_actions"`
}

// SessionContext is the per-turn snapshot of session-level signals.
type SessionContext struct {
	StartTime        time.Time `json:"start_time"`
	MessageCount     int       `json:"message_count"`
	LastInteraction  time.Time `json:"last_interaction"`
	CurrentStage     string    `json:"current_stage"`
	TopicsDiscussed  []string  `json:"topics_discussed"`
	DecisionProgress float64   `json:"decision_progress"`
	EngagementLevel  float64   `json:"engagement_level"`
	Timeline         string    `json:"timeline,omitempty"`
}

// EnhancedContext is the merged view of everything known about a session,
// rebuilt per turn and cached until the history grows.
type EnhancedContext struct {
	SessionID    string         `json:"session_id"`
	CustomerID   string         `json:"customer_id,omitempty"`
	Framework    Framework      `json:"framework"`
	CurrentStage string         `json:"current_stage"`
	History      []ChatMessage  `json:"history"`
	Preferences  Preferences    `json:"preferences"`
	Session      SessionContext `json:"session"`
}

// Insights is the condensed memory/flow view the response pipeline consumes.
type Insights struct {
	PreferredStyle      string   `json:"preferred_style,omitempty"`
	TypicalOccasions    []string `json:"typical_occasions,omitempty"`
	DecisionStyle       string   `json:"decision_style,omitempty"`
	EmotionalState      string   `json:"emotional_state,omitempty"`
	CommunicationStyle  string   `json:"communication_style,omitempty"`
	MotivationTriggers  []string `json:"motivation_triggers,omitempty"`
	CurrentPhase        string   `json:"current_phase,omitempty"`
	Progression         float64  `json:"progression"`
	EngagementLevel     float64  `json:"engagement_level"`
	RecommendedApproach string   `json:"recommended_approach,omitempty"`
	MessageCount        int      `json:"message_count"`
	TopicSwitches       int      `json:"topic_switches"`
	DepthLevel          int      `json:"depth_level"`
}
