package conversation

import (
	"reflect"
	"testing"
)

func TestNewContextualMemoryDefaults(t *testing.T) {
	m := NewContextualMemory("s1", "")
	if m.CustomerID != "anonymous" {
		t.Errorf("CustomerID = %q, want anonymous", m.CustomerID)
	}
	if m.Behaviors.BrowsingStyle != "exploratory" {
		t.Errorf("BrowsingStyle = %q, want exploratory", m.Behaviors.BrowsingStyle)
	}
	if m.EmotionalProfile.TypicalSentiment != "neutral" {
		t.Errorf("TypicalSentiment = %q, want neutral", m.EmotionalProfile.TypicalSentiment)
	}
	if m.EmotionalProfile.DecisionConfidence != 0.5 {
		t.Errorf("DecisionConfidence = %v, want 0.5", m.EmotionalProfile.DecisionConfidence)
	}
}

func TestApplyHonorsConfidenceThresholds(t *testing.T) {
	tests := []struct {
		name       string
		obs        MemoryObservation
		wantStyles []string
		wantProf   string
	}{
		{
			name: "preferences above threshold stick",
			obs: MemoryObservation{
				Preferences: &PreferenceObservation{Styles: []string{"classic"}},
				Confidence:  0.7,
			},
			wantStyles: []string{"classic"},
		},
		{
			name: "preferences at threshold are dropped",
			obs: MemoryObservation{
				Preferences: &PreferenceObservation{Styles: []string{"classic"}},
				Confidence:  0.6,
			},
		},
		{
			name: "demographics need near certainty",
			obs: MemoryObservation{
				Demographic: &DemographicObservation{Profession: "architect"},
				Confidence:  0.79,
			},
		},
		{
			name: "demographics at 0.8 stick",
			obs: MemoryObservation{
				Demographic: &DemographicObservation{Profession: "architect"},
				Confidence:  0.8,
			},
			wantProf: "architect",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewContextualMemory("s1", "c1")
			m.Apply(tt.obs)
			if !reflect.DeepEqual(m.Preferences.Styles, tt.wantStyles) {
				t.Errorf("Styles = %v, want %v", m.Preferences.Styles, tt.wantStyles)
			}
			if m.Demographics.Profession != tt.wantProf {
				t.Errorf("Profession = %q, want %q", m.Demographics.Profession, tt.wantProf)
			}
		})
	}
}

func TestApplyUnionsListsWithoutDuplicates(t *testing.T) {
	m := NewContextualMemory("s1", "c1")
	m.Apply(MemoryObservation{
		Preferences: &PreferenceObservation{Styles: []string{"classic", "modern"}},
		Confidence:  0.9,
	})
	m.Apply(MemoryObservation{
		Preferences: &PreferenceObservation{Styles: []string{"modern", "casual"}},
		Confidence:  0.9,
	})
	want := []string{"classic", "modern", "casual"}
	if !reflect.DeepEqual(m.Preferences.Styles, want) {
		t.Errorf("Styles = %v, want %v", m.Preferences.Styles, want)
	}
}

func TestApplyClampsDecisionConfidence(t *testing.T) {
	m := NewContextualMemory("s1", "c1")
	over := 1.4
	m.Apply(MemoryObservation{
		Emotional:  &EmotionalObservation{DecisionConfidence: &over},
		Confidence: 0.9,
	})
	if m.EmotionalProfile.DecisionConfidence != 1 {
		t.Errorf("DecisionConfidence = %v, want 1", m.EmotionalProfile.DecisionConfidence)
	}
}

func TestMergePreferences(t *testing.T) {
	persisted := Preferences{
		Styles:       []string{"classic"},
		BudgetRange:  "$300-500",
		AvoidedItems: []string{"skinny fit"},
	}
	extracted := Preferences{
		Styles:      []string{"classic", "modern"},
		Colors:      []string{"navy"},
		BudgetRange: "$500-800",
		// Extraction never proposes avoided items; those live in memory only.
		AvoidedItems: []string{"bow ties"},
	}
	got := MergePreferences(persisted, extracted)

	if want := []string{"classic", "modern"}; !reflect.DeepEqual(got.Styles, want) {
		t.Errorf("Styles = %v, want %v", got.Styles, want)
	}
	if want := []string{"navy"}; !reflect.DeepEqual(got.Colors, want) {
		t.Errorf("Colors = %v, want %v", got.Colors, want)
	}
	if got.BudgetRange != "$500-800" {
		t.Errorf("BudgetRange = %q, most recent explicit budget should win", got.BudgetRange)
	}
	if want := []string{"skinny fit"}; !reflect.DeepEqual(got.AvoidedItems, want) {
		t.Errorf("AvoidedItems = %v, want %v", got.AvoidedItems, want)
	}
}

func TestMergePreferencesKeepsPersistedBudget(t *testing.T) {
	got := MergePreferences(Preferences{BudgetRange: "$300-500"}, Preferences{})
	if got.BudgetRange != "$300-500" {
		t.Errorf("BudgetRange = %q, want persisted value kept", got.BudgetRange)
	}
}

func TestUnion(t *testing.T) {
	tests := []struct {
		name string
		base []string
		add  []string
		want []string
	}{
		{"nil base", nil, []string{"a"}, []string{"a"}},
		{"empty add keeps base", []string{"a"}, nil, []string{"a"}},
		{"skips duplicates and blanks", []string{"a"}, []string{"", "a", "b"}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := union(tt.base, tt.add); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("union(%v, %v) = %v, want %v", tt.base, tt.add, got, tt.want)
			}
		})
	}
}
