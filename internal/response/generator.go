package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sartoria-ai/chat-platform/internal/conversation"
	"github.com/sartoria-ai/chat-platform/internal/nlp"
	"github.com/sartoria-ai/chat-platform/pkg/logging"
)

const defaultCacheTTL = 5 * time.Minute

// InsightsProvider supplies the engine's per-session insight snapshot.
// *conversation.Engine satisfies it.
type InsightsProvider interface {
	Insights(sessionID string) (conversation.Insights, bool)
}

// Generator is the response generation pipeline. Redis caching is optional;
// without it every call generates fresh.
type Generator struct {
	templates []Template
	insights  InsightsProvider
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    *logging.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewGenerator creates the pipeline. insights must not be nil; cache may be.
// A non-positive cacheTTL falls back to the default of five minutes.
func NewGenerator(insights InsightsProvider, cache *redis.Client, cacheTTL time.Duration, logger *logging.Logger) *Generator {
	if insights == nil {
		panic("response: insights provider cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Generator{
		templates: defaultTemplates(),
		insights:  insights,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.Component("response"),
		tracer:    otel.Tracer("chat.internal.response"),
		now:       time.Now,
	}
}

// GenerateResponse runs the full pipeline for one turn. depth may be nil, in
// which case the optimal depth is derived from the sentiment and the
// customer's detail preference.
func (g *Generator) GenerateResponse(ctx context.Context, intent nlp.Intent, enhanced *conversation.EnhancedContext, analysis *nlp.Analysis, depth *DepthConfig) (*GeneratedResponse, error) {
	if enhanced == nil {
		return nil, errors.New("response: enhanced context is required")
	}
	if analysis == nil {
		return nil, errors.New("response: analysis is required")
	}

	ctx, span := g.tracer.Start(ctx, "response.generate")
	defer span.End()

	cacheKey := g.cacheKey(intent, enhanced, depth)
	if cached := g.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	start := g.now()

	insights, _ := g.insights.Insights(enhanced.SessionID)
	pctx := buildPersonalizationContext(enhanced, analysis, insights)

	cfg := DepthConfig{}
	if depth != nil {
		cfg = *depth
	} else {
		cfg = determineDepth(intent, pctx, analysis.Sentiment)
	}

	tmpl := selectTemplate(g.templates, intent.Category, enhanced.Framework, cfg.Layer, pctx)

	message, variablesUsed := renderTemplate(tmpl, intent, enhanced, pctx)

	var applied []string
	if adapted, ok := applyPersonality(message, pctx.Customer.CommunicationStyle); ok {
		message = adapted
		applied = append(applied, "personality_adaptation")
	}
	if adapted, ok := contextAdaptation(tmpl, pctx, message); ok {
		message = adapted
		applied = append(applied, "context_adaptation")
	}
	personalized := message
	pScore := personalizationScore(variablesUsed, applied)

	message, toneApplied := applyTone(message, analysis.Sentiment)
	message, _ = applyDepth(message, cfg, intent)

	result := validate(message)
	message = result.sanitized
	// Softened synonyms can lengthen the text past the layer budget.
	if len(message) > cfg.MaxLength {
		message = truncateMessage(message, cfg.MaxLength)
	}

	generated := &GeneratedResponse{
		Message:                message,
		Confidence:             responseConfidence(tmpl, pScore, result.safetyScore),
		Layer:                  cfg.Layer,
		PersonalizationApplied: applied,
		ToneAdaptations:        toneApplied,
		ValidationPassed:       result.passed,
		SuggestedActions:       suggestedActions(intent, cfg),
		FollowUpHooks:          followUpHooks(tmpl, intent),
		AlternativeResponses:   alternativeResponses(tmpl, personalized, pctx, message),
		Metadata: Metadata{
			TemplateID:           tmpl.ID,
			GenerationTimeMS:     g.now().Sub(start).Milliseconds(),
			PersonalizationScore: pScore,
			SafetyScore:          result.safetyScore,
		},
	}
	if !result.passed {
		g.logger.Warn("response failed safety validation",
			"session_id", enhanced.SessionID,
			"issues", result.issues,
			"safety_score", result.safetyScore)
	}

	g.cacheSet(ctx, cacheKey, generated)
	return generated, nil
}

// GenerateVariations produces up to three responses at increasing depth for
// the same turn.
func (g *Generator) GenerateVariations(ctx context.Context, intent nlp.Intent, enhanced *conversation.EnhancedContext, analysis *nlp.Analysis, count int) ([]*GeneratedResponse, error) {
	if count > 3 {
		count = 3
	}
	variations := make([]*GeneratedResponse, 0, count)
	for layer := 1; layer <= count; layer++ {
		cfg := DepthForLayer(layer)
		v, err := g.GenerateResponse(ctx, intent, enhanced, analysis, &cfg)
		if err != nil {
			return nil, err
		}
		variations = append(variations, v)
	}
	return variations, nil
}

// Fallback returns the low-confidence generic response used when a
// collaborator failure prevents normal generation.
func Fallback() *GeneratedResponse {
	return &GeneratedResponse{
		Message:          "I want to make sure I get this right for you. Could you tell me a bit more about what you're looking for?",
		Confidence:       0.2,
		Layer:            1,
		ValidationPassed: true,
		SuggestedActions: []string{"Continue conversation", "Contact specialist"},
		Metadata:         Metadata{TemplateID: "fallback", SafetyScore: 1.0},
	}
}

// alternativeResponses builds up to three deterministic variants: the
// template's tone variations, a short truncation, and an expansion. Variants
// identical to the primary message or too short to stand alone are dropped.
func alternativeResponses(t Template, personalized string, pctx PersonalizationContext, primary string) []string {
	var alternatives []string
	for _, tone := range []string{"professional", "enthusiastic", "reassuring", "confident", "supportive"} {
		if variation, ok := t.ToneVariations[tone]; ok {
			alternatives = append(alternatives, stripPlaceholders(variation))
		}
	}

	alternatives = append(alternatives,
		truncateMessage(personalized, 100),
		personalized+" I'm here to make sure you get exactly what you're looking for, and happy to go into more detail about any part of this.",
	)

	out := alternatives[:0]
	for _, alt := range alternatives {
		if len(alt) > 20 && alt != primary {
			out = append(out, alt)
		}
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// responseConfidence folds template richness, personalization, and safety
// into one score, capped at 0.95.
func responseConfidence(t Template, personalizationScore, safetyScore float64) float64 {
	confidence := 0.7
	confidence += float64(len(t.Variables)) * 0.02
	confidence += personalizationScore * 0.2
	confidence += safetyScore * 0.1
	return minf(confidence, 0.95)
}

func (g *Generator) cacheKey(intent nlp.Intent, enhanced *conversation.EnhancedContext, depth *DepthConfig) string {
	layer := 2
	if depth != nil {
		layer = depth.Layer
	}
	return fmt.Sprintf("response:%s_%s_%d_%s", intent.Category, enhanced.Framework, layer, enhanced.CurrentStage)
}

func (g *Generator) cacheGet(ctx context.Context, key string) *GeneratedResponse {
	if g.cache == nil {
		return nil
	}
	data, err := g.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			g.logger.Warn("response cache read failed", "error", err)
		}
		return nil
	}
	var cached GeneratedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil
	}
	return &cached
}

func (g *Generator) cacheSet(ctx context.Context, key string, generated *GeneratedResponse) {
	if g.cache == nil {
		return
	}
	data, err := json.Marshal(generated)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, data, g.cacheTTL).Err(); err != nil {
		g.logger.Warn("response cache write failed", "error", err)
	}
}
