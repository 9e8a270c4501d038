package response

import (
	"github.com/sartoria-ai/chat-platform/internal/conversation"
)

// Template is a response skeleton keyed by intent category, framework, and
// depth layer. Placeholders in BaseTemplate use {variable} syntax.
type Template struct {
	ID                 string
	Category           string
	Subcategory        string
	Framework          conversation.Framework
	Layer              int
	BaseTemplate       string
	Variables          []string
	ToneVariations     map[string]string
	ContextAdaptations map[string]string
	FollowUpTriggers   []string
}

// DepthConfig controls response length and which depth features apply.
type DepthConfig struct {
	Layer               int    `json:"layer"`
	MaxLength           int    `json:"max_length"`
	DetailLevel         string `json:"detail_level"` // "quick", "standard", "comprehensive"
	IncludeExplanations bool   `json:"include_explanations"`
	IncludeExamples     bool   `json:"include_examples"`
	IncludeAlternatives bool   `json:"include_alternatives"`
	IncludeNextSteps    bool   `json:"include_next_steps"`
}

// DepthForLayer returns the standard depth configuration for a layer.
// Layer 1 is quick, 2 standard, 3 comprehensive.
func DepthForLayer(layer int) DepthConfig {
	switch layer {
	case 1:
		return DepthConfig{
			Layer:            1,
			MaxLength:        150,
			DetailLevel:      "quick",
			IncludeNextSteps: true,
		}
	case 3:
		return DepthConfig{
			Layer:               3,
			MaxLength:           500,
			DetailLevel:         "comprehensive",
			IncludeExplanations: true,
			IncludeExamples:     true,
			IncludeAlternatives: true,
			IncludeNextSteps:    true,
		}
	default:
		return DepthConfig{
			Layer:               2,
			MaxLength:           300,
			DetailLevel:         "standard",
			IncludeExplanations: true,
			IncludeAlternatives: true,
			IncludeNextSteps:    true,
		}
	}
}

// CustomerProfile is the per-customer slice of the personalization context.
type CustomerProfile struct {
	CommunicationStyle  string  `json:"communication_style"`
	FormalityPreference string  `json:"formality_preference"` // "formal", "casual", "professional"
	DetailPreference    string  `json:"detail_preference"`    // "brief", "moderate", "comprehensive"
	EmotionalState      string  `json:"emotional_state"`
	DecisionReadiness   float64 `json:"decision_readiness"`
}

// ConversationProfile is the per-conversation slice of the personalization
// context.
type ConversationProfile struct {
	Stage             string                 `json:"stage"`
	Framework         conversation.Framework `json:"framework"`
	MessageCount      int                    `json:"message_count"`
	TopicsDiscussed   []string               `json:"topics_discussed"`
	PreviousResponses []string               `json:"previous_responses"`
}

// BusinessContext scores the commercial signals of the conversation.
type BusinessContext struct {
	UrgencyLevel          string   `json:"urgency_level"`
	ConversionOpportunity float64  `json:"conversion_opportunity"`
	CrossSellPotential    []string `json:"cross_sell_potential"`
	RetentionRisk         float64  `json:"retention_risk"`
}

// PersonalizationContext is everything the pipeline personalizes from.
type PersonalizationContext struct {
	Customer     CustomerProfile     `json:"customer"`
	Conversation ConversationProfile `json:"conversation"`
	Business     BusinessContext     `json:"business"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	TemplateID           string  `json:"template_used"`
	GenerationTimeMS     int64   `json:"generation_time_ms"`
	PersonalizationScore float64 `json:"personalization_score"`
	SafetyScore          float64 `json:"safety_score"`
}

// GeneratedResponse is the pipeline's output for one turn.
type GeneratedResponse struct {
	Message                string   `json:"message"`
	Confidence             float64  `json:"confidence"`
	Layer                  int      `json:"layer"`
	PersonalizationApplied []string `json:"personalization_applied"`
	ToneAdaptations        []string `json:"tone_adaptations"`
	ValidationPassed       bool     `json:"validation_passed"`
	SuggestedActions       []string `json:"suggested_actions"`
	FollowUpHooks          []string `json:"follow_up_hooks"`
	AlternativeResponses   []string `json:"alternative_responses"`
	Metadata               Metadata `json:"metadata"`
}
