package nlp

// Package nlp defines the contract with the external message-analysis
// service. The core never classifies intent or scores sentiment itself; it
// consumes this service's output and degrades gracefully when it is down.

// Intent is the classified purpose of a customer message.
type Intent struct {
	Category           string            `json:"category"`
	Subcategory        string            `json:"subcategory,omitempty"`
	Confidence         float64           `json:"confidence"`
	Entities           map[string]string `json:"entities,omitempty"`
	RequiresEscalation bool              `json:"requires_escalation,omitempty"`
}

// Intent categories the orchestration core keys behavior on.
const (
	IntentStyleAdvice      = "style_advice"
	IntentPurchaseIntent   = "purchase_intent"
	IntentOccasionGuidance = "occasion_guidance"
	IntentFitSizing        = "fit_sizing"
	IntentComplaint        = "complaint"
	IntentGeneral          = "general"
)

// Sentiment is the affective read on a single message.
type Sentiment struct {
	Overall           string  `json:"overall"` // "positive", "negative", "neutral"
	EmotionalState    string  `json:"emotional_state"`
	Confidence        float64 `json:"confidence"`
	UrgencyLevel      string  `json:"urgency_level"` // "low", "medium", "high", "critical"
	EngagementLevel   float64 `json:"engagement_level"`
	DecisionReadiness float64 `json:"decision_readiness"`
}

// Emotional states the core reacts to.
const (
	EmotionFrustrated = "frustrated"
	EmotionExcited    = "excited"
	EmotionAnxious    = "anxious"
	EmotionEngaged    = "engaged"
)

// Entities are the retail attributes extracted from a message.
type Entities struct {
	Styles      []string `json:"styles,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Occasions   []string `json:"occasions,omitempty"`
	BudgetRange string   `json:"budget_range,omitempty"`
	FitNotes    []string `json:"fit_notes,omitempty"`
}

// Analysis is the full output of the analysis service for one message.
type Analysis struct {
	Intent    Intent    `json:"intent"`
	Sentiment Sentiment `json:"sentiment"`
	Entities  Entities  `json:"entities"`
}

// FallbackAnalysis returns a neutral, low-confidence analysis used when the
// analysis service is unavailable. The turn still completes, just degraded.
func FallbackAnalysis() *Analysis {
	return &Analysis{
		Intent: Intent{
			Category:   IntentGeneral,
			Confidence: 0.2,
		},
		Sentiment: Sentiment{
			Overall:         "neutral",
			EmotionalState:  EmotionEngaged,
			Confidence:      0.2,
			UrgencyLevel:    "low",
			EngagementLevel: 0.5,
		},
	}
}
