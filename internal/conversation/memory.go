package conversation

import (
	"time"

	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

// Minimum observation confidence required to mutate each memory area.
// Demographics are the most sensitive and require near-certainty.
const (
	preferenceConfidenceThreshold  = 0.6
	behaviorConfidenceThreshold    = 0.7
	emotionalConfidenceThreshold   = 0.6
	demographicConfidenceThreshold = 0.8
)

// NewContextualMemory creates default memory for a fresh session.
func NewContextualMemory(sessionID, customerID string) *ContextualMemory {
	if customerID == "" {
		customerID = "anonymous"
	}
	now := time.Now().UTC()
	return &ContextualMemory{
		CustomerID: customerID,
		SessionID:  sessionID,
		Behaviors: Behaviors{
			BrowsingStyle:      "exploratory",
			CommunicationStyle: "casual",
		},
		EmotionalProfile: EmotionalProfile{
			TypicalSentiment:   "neutral",
			DecisionConfidence: 0.5,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MemoryObservation is one extracted fact about the customer, with the
// confidence of the extraction. Low-confidence observations are dropped
// rather than polluting memory.
type MemoryObservation struct {
	Preferences *PreferenceObservation
	Behavior    *BehaviorObservation
	Demographic *DemographicObservation
	Emotional   *EmotionalObservation
	Confidence  float64
}

// PreferenceObservation carries newly seen shopping preferences.
type PreferenceObservation struct {
	Styles         []string
	Colors         []string
	Occasions      []string
	BudgetRange    string
	FitPreferences []string
}

// BehaviorObservation carries newly inferred behavior traits.
type BehaviorObservation struct {
	DecisionPattern    string
	BrowsingStyle      string
	CommunicationStyle string
}

// DemographicObservation carries newly inferred demographics.
type DemographicObservation struct {
	AgeRange            string
	Profession          string
	Location            string
	LifestyleIndicators []string
}

// EmotionalObservation carries newly inferred emotional-profile updates.
type EmotionalObservation struct {
	Sentiment          string
	DecisionConfidence *float64
	StressIndicators   []string
	MotivationTriggers []string
}

// Apply folds an observation into memory, honoring per-area confidence
// thresholds. List fields are unioned; scalars overwrite only above threshold.
func (m *ContextualMemory) Apply(obs MemoryObservation) {
	changed := false

	if obs.Preferences != nil && obs.Confidence > preferenceConfidenceThreshold {
		p := obs.Preferences
		m.Preferences.Styles = union(m.Preferences.Styles, p.Styles)
		m.Preferences.Colors = union(m.Preferences.Colors, p.Colors)
		m.Preferences.Occasions = union(m.Preferences.Occasions, p.Occasions)
		m.Preferences.FitPreferences = union(m.Preferences.FitPreferences, p.FitPreferences)
		if p.BudgetRange != "" {
			m.Preferences.BudgetRange = p.BudgetRange
		}
		changed = true
	}

	if obs.Behavior != nil && obs.Confidence > behaviorConfidenceThreshold {
		b := obs.Behavior
		if b.DecisionPattern != "" {
			m.Behaviors.DecisionPatterns = union(m.Behaviors.DecisionPatterns, []string{b.DecisionPattern})
		}
		if b.BrowsingStyle != "" {
			m.Behaviors.BrowsingStyle = b.BrowsingStyle
		}
		if b.CommunicationStyle != "" {
			m.Behaviors.CommunicationStyle = b.CommunicationStyle
		}
		changed = true
	}

	if obs.Demographic != nil && obs.Confidence >= demographicConfidenceThreshold {
		d := obs.Demographic
		if d.AgeRange != "" {
			m.Demographics.AgeRange = d.AgeRange
		}
		if d.Profession != "" {
			m.Demographics.Profession = d.Profession
		}
		if d.Location != "" {
			m.Demographics.Location = d.Location
		}
		m.Demographics.LifestyleIndicators = union(m.Demographics.LifestyleIndicators, d.LifestyleIndicators)
		changed = true
	}

	if obs.Emotional != nil && obs.Confidence > emotionalConfidenceThreshold {
		e := obs.Emotional
		if e.Sentiment != "" {
			m.EmotionalProfile.TypicalSentiment = e.Sentiment
		}
		if e.DecisionConfidence != nil {
			m.EmotionalProfile.DecisionConfidence = clamp01(*e.DecisionConfidence)
		}
		m.EmotionalProfile.StressIndicators = union(m.EmotionalProfile.StressIndicators, e.StressIndicators)
		m.EmotionalProfile.MotivationTriggers = union(m.EmotionalProfile.MotivationTriggers, e.MotivationTriggers)
		changed = true
	}

	if changed {
		m.UpdatedAt = time.Now().UTC()
	}
}

// MergePreferences unions persisted preferences with freshly extracted ones.
// The most recent explicit budget wins; avoided items only come from memory.
func MergePreferences(persisted Preferences, extracted Preferences) Preferences {
	merged := Preferences{
		Styles:         union(persisted.Styles, extracted.Styles),
		Colors:         union(persisted.Colors, extracted.Colors),
		Occasions:      union(persisted.Occasions, extracted.Occasions),
		FitPreferences: union(persisted.FitPreferences, extracted.FitPreferences),
		AvoidedItems:   persisted.AvoidedItems,
		BudgetRange:    persisted.BudgetRange,
	}
	if extracted.BudgetRange != "" {
		merged.BudgetRange = extracted.BudgetRange
	}
	return merged
}

// preferencesFromEntities converts analysis entities to preferences.
func preferencesFromEntities(e nlp.Entities) Preferences {
	return Preferences{
		Styles:         e.Styles,
		Colors:         e.Colors,
		Occasions:      e.Occasions,
		BudgetRange:    e.BudgetRange,
		FitPreferences: e.FitNotes,
	}
}

// union appends items from add that are not already in base, preserving order.
func union(base []string, add []string) []string {
	if len(add) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	out := base
	for _, v := range add {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
