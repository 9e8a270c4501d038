package response

import (
	"context"
	"io"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sartoria-ai/chat-platform/internal/conversation"
	"github.com/sartoria-ai/chat-platform/internal/nlp"
	"github.com/sartoria-ai/chat-platform/pkg/logging"
)

type staticInsights struct {
	insights conversation.Insights
	ok       bool
}

func (s staticInsights) Insights(string) (conversation.Insights, bool) {
	return s.insights, s.ok
}

func newTestGenerator(cache *redis.Client) *Generator {
	return NewGenerator(
		staticInsights{ok: true},
		cache,
		0,
		logging.NewWithWriter("error", io.Discard),
	)
}

func testEnhanced() *conversation.EnhancedContext {
	return &conversation.EnhancedContext{
		SessionID:    "s1",
		Framework:    conversation.FrameworkConsultative,
		CurrentStage: conversation.StageInitialDiscovery,
		History: []conversation.ChatMessage{
			{Role: "user", Content: "I need a suit for a wedding"},
		},
		Preferences: conversation.Preferences{
			Styles:    []string{"classic"},
			Occasions: []string{"wedding"},
		},
	}
}

func neutralAnalysis() *nlp.Analysis {
	return &nlp.Analysis{
		Sentiment: nlp.Sentiment{
			Overall:         "neutral",
			EmotionalState:  nlp.EmotionEngaged,
			Confidence:      0.8,
			UrgencyLevel:    "low",
			EngagementLevel: 0.6,
		},
	}
}

func TestGenerateResponseBasics(t *testing.T) {
	g := newTestGenerator(nil)
	intent := nlp.Intent{Category: nlp.IntentStyleAdvice, Confidence: 0.8}

	resp, err := g.GenerateResponse(context.Background(), intent, testEnhanced(), neutralAnalysis(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Message == "" {
		t.Fatal("empty message")
	}
	if resp.Metadata.TemplateID != "consultative_style_advice_l2" {
		t.Errorf("TemplateID = %q, want the dedicated consultative template", resp.Metadata.TemplateID)
	}
	if resp.Layer != 2 {
		t.Errorf("Layer = %d, want default 2", resp.Layer)
	}
	if !resp.ValidationPassed {
		t.Error("template output should pass validation")
	}
	if resp.Confidence <= 0 || resp.Confidence > 0.95 {
		t.Errorf("Confidence = %v, want (0, 0.95]", resp.Confidence)
	}
	if len(resp.SuggestedActions) == 0 || len(resp.SuggestedActions) > resp.Layer+1 {
		t.Errorf("SuggestedActions = %v, want 1..layer+1 entries", resp.SuggestedActions)
	}
	if len(resp.FollowUpHooks) == 0 || len(resp.FollowUpHooks) > 5 {
		t.Errorf("FollowUpHooks = %v, want 1..5 entries", resp.FollowUpHooks)
	}
	if len(resp.AlternativeResponses) > 3 {
		t.Errorf("AlternativeResponses = %d entries, cap is 3", len(resp.AlternativeResponses))
	}
}

func TestGenerateResponseRespectsMaxLength(t *testing.T) {
	g := newTestGenerator(nil)
	enhanced := testEnhanced()
	analysis := neutralAnalysis()

	for layer := 1; layer <= 3; layer++ {
		cfg := DepthForLayer(layer)
		for _, category := range []string{
			nlp.IntentStyleAdvice, nlp.IntentPurchaseIntent,
			nlp.IntentOccasionGuidance, nlp.IntentFitSizing,
			nlp.IntentComplaint, nlp.IntentGeneral,
		} {
			intent := nlp.Intent{Category: category, Confidence: 0.8}
			resp, err := g.GenerateResponse(context.Background(), intent, enhanced, analysis, &cfg)
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Message) > cfg.MaxLength {
				t.Errorf("%s layer %d: message length %d exceeds %d", category, layer, len(resp.Message), cfg.MaxLength)
			}
		}
	}
}

func TestGeneratorCacheTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	g := NewGenerator(
		staticInsights{ok: true},
		redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		90*time.Second,
		logging.NewWithWriter("error", io.Discard),
	)
	intent := nlp.Intent{Category: nlp.IntentStyleAdvice, Confidence: 0.8}

	if _, err := g.GenerateResponse(context.Background(), intent, testEnhanced(), neutralAnalysis(), nil); err != nil {
		t.Fatal(err)
	}
	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("keys = %v, want one cache entry", keys)
	}
	if ttl := mr.TTL(keys[0]); ttl != 90*time.Second {
		t.Errorf("TTL = %v, want 90s", ttl)
	}
}

func TestGenerateResponseTinyMaxLength(t *testing.T) {
	g := newTestGenerator(nil)
	intent := nlp.Intent{Category: nlp.IntentStyleAdvice, Confidence: 0.8}
	cfg := DepthConfig{Layer: 2, MaxLength: 2, DetailLevel: "standard", IncludeExplanations: true}

	resp, err := g.GenerateResponse(context.Background(), intent, testEnhanced(), neutralAnalysis(), &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Message) > cfg.MaxLength {
		t.Errorf("message length %d exceeds %d", len(resp.Message), cfg.MaxLength)
	}
}

func TestTruncateMessageShortLimits(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello world", 2, "he"},
		{"hello world", 3, "hel"},
		{"hello world", 4, "h..."},
		{"hi", 10, "hi"},
	}
	for _, tc := range cases {
		if got := truncateMessage(tc.in, tc.max); got != tc.want {
			t.Errorf("truncateMessage(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestGenerateResponseCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	g := newTestGenerator(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	intent := nlp.Intent{Category: nlp.IntentStyleAdvice, Confidence: 0.8}
	enhanced := testEnhanced()
	analysis := neutralAnalysis()
	cfg := DepthForLayer(2)

	first, err := g.GenerateResponse(context.Background(), intent, enhanced, analysis, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.GenerateResponse(context.Background(), intent, enhanced, analysis, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if second.Message != first.Message || second.Metadata.TemplateID != first.Metadata.TemplateID {
		t.Error("cached call should return the identical response")
	}
	if second.Metadata.GenerationTimeMS != first.Metadata.GenerationTimeMS {
		t.Error("cached response should carry the original metadata unchanged")
	}
}

func TestDetermineDepth(t *testing.T) {
	tests := []struct {
		name      string
		sentiment nlp.Sentiment
		detail    string
		wantLayer int
	}{
		{
			"frustrated gets quick layer",
			nlp.Sentiment{EmotionalState: nlp.EmotionFrustrated, UrgencyLevel: "medium"},
			"moderate", 1,
		},
		{
			"critical urgency gets quick layer",
			nlp.Sentiment{EmotionalState: nlp.EmotionEngaged, UrgencyLevel: "critical"},
			"moderate", 1,
		},
		{
			"engaged detail seeker gets comprehensive",
			nlp.Sentiment{EmotionalState: nlp.EmotionEngaged, UrgencyLevel: "low", EngagementLevel: 0.8},
			"comprehensive", 3,
		},
		{
			"default is standard",
			nlp.Sentiment{EmotionalState: nlp.EmotionEngaged, UrgencyLevel: "low", EngagementLevel: 0.5},
			"moderate", 2,
		},
		{
			"decision readiness bumps layer",
			nlp.Sentiment{EmotionalState: nlp.EmotionEngaged, UrgencyLevel: "low", EngagementLevel: 0.5, DecisionReadiness: 0.9},
			"moderate", 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pctx := PersonalizationContext{
				Customer: CustomerProfile{
					DetailPreference:  tt.detail,
					DecisionReadiness: tt.sentiment.DecisionReadiness,
				},
			}
			cfg := determineDepth(nlp.Intent{Category: nlp.IntentStyleAdvice}, pctx, tt.sentiment)
			if cfg.Layer != tt.wantLayer {
				t.Errorf("Layer = %d, want %d", cfg.Layer, tt.wantLayer)
			}
		})
	}
}

func TestDetermineDepthComplaintExcludesAlternatives(t *testing.T) {
	cfg := determineDepth(
		nlp.Intent{Category: nlp.IntentComplaint},
		PersonalizationContext{Customer: CustomerProfile{DetailPreference: "moderate"}},
		nlp.Sentiment{EmotionalState: nlp.EmotionEngaged, UrgencyLevel: "low"},
	)
	if cfg.IncludeAlternatives {
		t.Error("complaint responses must not offer alternatives")
	}
}

func TestToneKey(t *testing.T) {
	tests := []struct {
		state string
		want  string
	}{
		{nlp.EmotionFrustrated, ToneEmpatheticProfessional},
		{nlp.EmotionExcited, ToneEnthusiasticSupportive},
		{nlp.EmotionAnxious, ToneReassuringConfident},
		{nlp.EmotionEngaged, ToneProfessionalFriendly},
		{"", ToneProfessionalFriendly},
	}
	for _, tt := range tests {
		if got := toneKey(nlp.Sentiment{EmotionalState: tt.state}); got != tt.want {
			t.Errorf("toneKey(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSelectTemplateFallback(t *testing.T) {
	pctx := PersonalizationContext{
		Conversation: ConversationProfile{Framework: conversation.FrameworkDirective},
	}
	tmpl := selectTemplate(defaultTemplates(), nlp.IntentGeneral, conversation.FrameworkDirective, 2, pctx)
	if tmpl.ID != "default_general_directive_l2" {
		t.Errorf("ID = %q, want the generic fallback", tmpl.ID)
	}
	if tmpl.BaseTemplate == "" {
		t.Error("fallback template must render something")
	}
}

func TestRenderTemplateStripsUnresolvedPlaceholders(t *testing.T) {
	tmpl := Template{
		BaseTemplate: "Looking at {item} for {occasion} within {budget_range}.",
		Variables:    []string{"item", "occasion", "budget_range"},
	}
	enhanced := &conversation.EnhancedContext{SessionID: "s1"}
	message, used := renderTemplate(tmpl, nlp.Intent{}, enhanced, PersonalizationContext{})

	// occasion and item have defaults; budget falls back to a generic phrase,
	// so nothing should remain in braces either way.
	for _, r := range message {
		if r == '{' || r == '}' {
			t.Fatalf("unresolved placeholder left in %q", message)
		}
	}
	if len(used) == 0 {
		t.Error("expected at least the defaulted variables to be used")
	}
}

func TestFallbackResponse(t *testing.T) {
	fb := Fallback()
	if fb.Confidence >= 0.3 {
		t.Errorf("Confidence = %v, fallback must be low-confidence", fb.Confidence)
	}
	if fb.Message == "" || !fb.ValidationPassed {
		t.Errorf("fallback must be a safe deliverable message: %+v", fb)
	}
}

func TestGenerateVariations(t *testing.T) {
	g := newTestGenerator(nil)
	intent := nlp.Intent{Category: nlp.IntentStyleAdvice, Confidence: 0.8}

	variations, err := g.GenerateVariations(context.Background(), intent, testEnhanced(), neutralAnalysis(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(variations) != 3 {
		t.Fatalf("got %d variations, want 3", len(variations))
	}
	for i, v := range variations {
		wantLayer := i + 1
		if v.Layer != wantLayer {
			t.Errorf("variation %d Layer = %d, want %d", i, v.Layer, wantLayer)
		}
		if len(v.Message) > DepthForLayer(wantLayer).MaxLength {
			t.Errorf("variation %d length %d exceeds budget", i, len(v.Message))
		}
	}
}
