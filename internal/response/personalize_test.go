package response

import (
	"strings"
	"testing"

	"github.com/sartoria-ai/chat-platform/internal/conversation"
	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

func TestFormalityPreference(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		want     string
	}{
		{"polite markers read formal", []string{"Could you please help me"}, "formal"},
		{"sir reads formal", []string{"Thank you sir"}, "formal"},
		{"slang reads casual", []string{"hey, what do you have"}, "casual"},
		{"yeah reads casual", []string{"yeah that works"}, "casual"},
		{"plain text reads professional", []string{"I am looking for a suit"}, "professional"},
		{"empty history reads professional", nil, "professional"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var history []conversation.ChatMessage
			for _, m := range tt.messages {
				history = append(history, conversation.ChatMessage{Role: "user", Content: m})
			}
			if got := formalityPreference(history); got != tt.want {
				t.Errorf("formalityPreference = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormalityIgnoresAssistantTurns(t *testing.T) {
	history := []conversation.ChatMessage{
		{Role: "assistant", Content: "hey there, welcome"},
		{Role: "user", Content: "I am looking for a jacket"},
	}
	if got := formalityPreference(history); got != "professional" {
		t.Errorf("formalityPreference = %q, want professional", got)
	}
}

func TestDetailPreference(t *testing.T) {
	tests := []struct {
		name       string
		engagement float64
		messages   int
		want       string
	}{
		{"low engagement is brief", 0.3, 10, "brief"},
		{"short session is brief", 0.9, 2, "brief"},
		{"engaged long session is comprehensive", 0.8, 6, "comprehensive"},
		{"middle ground is moderate", 0.6, 4, "moderate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detailPreference(nlp.Sentiment{EngagementLevel: tt.engagement}, tt.messages)
			if got != tt.want {
				t.Errorf("detailPreference = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConversionOpportunity(t *testing.T) {
	base := conversionOpportunity(nlp.Sentiment{}, conversation.Insights{})
	if base != 0.5 {
		t.Errorf("baseline = %v, want 0.5", base)
	}

	full := conversionOpportunity(
		nlp.Sentiment{DecisionReadiness: 0.8, Overall: "positive"},
		conversation.Insights{CurrentPhase: conversation.PhaseDecision},
	)
	if full != 1.0 {
		t.Errorf("stacked bonuses = %v, want capped 1.0", full)
	}
}

func TestRetentionRisk(t *testing.T) {
	if got := retentionRisk(nlp.Sentiment{Overall: "neutral"}); got != 0.1 {
		t.Errorf("baseline = %v, want 0.1", got)
	}
	got := retentionRisk(nlp.Sentiment{
		Overall:        "negative",
		EmotionalState: nlp.EmotionFrustrated,
		UrgencyLevel:   "critical",
	})
	if got != 1.0 {
		t.Errorf("stacked risk = %v, want capped 1.0", got)
	}
}

func TestApplyPersonality(t *testing.T) {
	msg, ok := applyPersonality("Here is my suggestion.", "task_oriented")
	if !ok {
		t.Fatal("task_oriented profile should be known")
	}
	if !strings.HasPrefix(msg, "Let's get right to it.") {
		t.Errorf("message = %q", msg)
	}

	msg, ok = applyPersonality("Here is my suggestion.", "relationship_focused")
	if !ok {
		t.Fatal("relationship_focused profile should be known")
	}
	if !strings.HasPrefix(msg, "I'd love to help you with this.") {
		t.Errorf("message = %q", msg)
	}

	if _, ok := applyPersonality("unchanged", "no_such_profile"); ok {
		t.Error("unknown profile should report not applied")
	}
}

func TestApplyToneRewritesMarkers(t *testing.T) {
	msg, applied := applyTone(
		"greeting. Here is the navy suit. closing.",
		nlp.Sentiment{EmotionalState: nlp.EmotionFrustrated},
	)
	if len(applied) != 2 {
		t.Fatalf("applied = %v, want greeting and closing beats", applied)
	}
	if applied[0] != "tone_closing" || applied[1] != "tone_greeting" {
		t.Errorf("applied = %v, want sorted [tone_closing tone_greeting]", applied)
	}
	if strings.Contains(msg, "greeting") || strings.Contains(msg, "closing") {
		t.Errorf("markers not rewritten: %q", msg)
	}
	if !strings.Contains(msg, "I understand your concern") {
		t.Errorf("frustrated bucket phrasing missing: %q", msg)
	}
}

func TestPersonalizationScore(t *testing.T) {
	none := personalizationScore(nil, nil)
	some := personalizationScore([]string{"occasion", "item"}, []string{"personality", "context"})
	if some <= none {
		t.Errorf("score should grow with substitutions: %v <= %v", some, none)
	}
	many := personalizationScore(
		[]string{"a", "b", "c", "d", "e", "f", "g", "h"},
		[]string{"w", "x", "y", "z", "q", "r"},
	)
	if many > 1.0 {
		t.Errorf("score = %v, want capped at 1.0", many)
	}
}
