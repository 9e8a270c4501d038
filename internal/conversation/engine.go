package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/sartoria-ai/chat-platform/internal/nlp"
	"github.com/sartoria-ai/chat-platform/pkg/logging"
)

// Engine is the context & flow engine: it builds the enhanced per-turn
// context, advances the flow state machine, detects topic transitions, and
// proposes follow-up questions. All session mutation goes through the
// registry's per-entry locks.
type Engine struct {
	registry *Registry
	store    *Store // optional write-through persistence
	analyzer nlp.Analyzer
	logger   *logging.Logger
}

// NewEngine creates the context & flow engine. store may be nil (no
// persistence); analyzer must not be nil.
func NewEngine(registry *Registry, store *Store, analyzer nlp.Analyzer, logger *logging.Logger) *Engine {
	if registry == nil {
		panic("conversation: registry cannot be nil")
	}
	if analyzer == nil {
		panic("conversation: analyzer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		registry: registry,
		store:    store,
		analyzer: analyzer,
		logger:   logger.Component("engine"),
	}
}

// Registry exposes the session registry for lifecycle management (eviction
// sweeps, explicit teardown).
func (e *Engine) Registry() *Registry {
	return e.registry
}

// BuildEnhancedContext merges persisted memory with preferences extracted
// from the live history. The result is cached per session and reused until
// the history grows, since any new message may add information.
func (e *Engine) BuildEnhancedContext(ctx context.Context, sessionID, customerID string, history []ChatMessage) (*EnhancedContext, error) {
	if sessionID == "" {
		return nil, errors.New("conversation: sessionID is required")
	}

	var enhanced *EnhancedContext
	err := e.registry.Do(sessionID, customerID, func(state *SessionState) error {
		if state.cachedContext != nil && state.cachedHistoryLen == len(history) {
			enhanced = state.cachedContext
			return nil
		}

		e.hydrate(ctx, state)

		extracted := e.extractPreferences(ctx, history)
		merged := MergePreferences(state.Memory.Preferences, extracted)

		stage := StageInitialDiscovery
		timeline := ""
		var progression float64
		var engagement float64
		if state.Flow != nil {
			stage = state.Flow.CurrentStage
			timeline = state.Flow.KnownTimeline
			progression = state.Flow.DecisionJourney.ProgressionScore
			engagement = EngagementLevel(state.Flow.EngagementMetrics)
		}

		session := SessionContext{
			MessageCount:     len(history),
			CurrentStage:     stage,
			TopicsDiscussed:  TopicsDiscussed(history),
			DecisionProgress: progression,
			EngagementLevel:  engagement,
			Timeline:         timeline,
		}
		if len(history) > 0 {
			session.StartTime = history[0].Timestamp
			session.LastInteraction = history[len(history)-1].Timestamp
		}

		framework := FrameworkConsultative
		if state.Flow != nil {
			framework = state.Flow.Framework
		}

		enhanced = &EnhancedContext{
			SessionID:    sessionID,
			CustomerID:   state.CustomerID,
			Framework:    framework,
			CurrentStage: stage,
			History:      history,
			Preferences:  merged,
			Session:      session,
		}
		state.cachedContext = enhanced
		state.cachedHistoryLen = len(history)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enhanced, nil
}

// hydrate loads persisted memory/flow into a freshly created session entry.
func (e *Engine) hydrate(ctx context.Context, state *SessionState) {
	if e.store == nil {
		return
	}
	if state.Memory != nil && state.Memory.UpdatedAt.Equal(state.Memory.CreatedAt) && state.Flow == nil {
		if memory, err := e.store.LoadMemory(ctx, state.SessionID); err == nil {
			state.Memory = memory
		} else if !errors.Is(err, ErrNotFound) {
			e.logger.Warn("failed to hydrate memory", "error", err, "session_id", state.SessionID)
		}
		if flow, err := e.store.LoadFlow(ctx, state.SessionID); err == nil {
			state.Flow = flow
		} else if !errors.Is(err, ErrNotFound) {
			e.logger.Warn("failed to hydrate flow", "error", err, "session_id", state.SessionID)
		}
	}
}

// extractPreferences runs the analysis collaborator over the customer's turns
// and unions the extracted entities. Collaborator failures degrade to the
// persisted preferences only.
func (e *Engine) extractPreferences(ctx context.Context, history []ChatMessage) Preferences {
	var extracted Preferences
	for _, msg := range history {
		if msg.Role != "user" {
			continue
		}
		analysis, err := e.analyzer.Analyze(ctx, nlp.AnalyzeRequest{Message: msg.Content})
		if err != nil {
			e.logger.Warn("preference extraction failed", "error", err)
			continue
		}
		extracted = MergePreferences(extracted, preferencesFromEntities(analysis.Entities))
	}
	return extracted
}

// DetectTransition identifies a topic change between the previous turns and
// the current message. The phrase variant seed is the turn index, keeping
// output deterministic for a given conversation position.
func (e *Engine) DetectTransition(previousTurns []ChatMessage, currentMessage string, intent nlp.Intent) *TopicTransition {
	return DetectTopicTransition(previousTurns, currentMessage, intent, int64(len(previousTurns)))
}

// ManageFlow advances the session's flow state machine for one turn and
// persists the result. On the session's first turn the flow is created and
// the framework chosen from the opening intent.
func (e *Engine) ManageFlow(ctx context.Context, sessionID string, intent nlp.Intent, enhanced *EnhancedContext, transition *TopicTransition) (ConversationFlow, error) {
	var snapshot ConversationFlow
	err := e.registry.Do(sessionID, enhanced.CustomerID, func(state *SessionState) error {
		if timeline := intent.Entities["timeline"]; timeline != "" {
			if state.Flow == nil {
				state.Flow = newFlow(intent)
			}
			state.Flow.KnownTimeline = timeline
			enhanced.Session.Timeline = timeline
		}

		state.Flow = AdvanceFlow(state.Flow, intent, enhanced, transition)
		snapshot = *state.Flow

		if e.store != nil {
			if err := e.store.SaveFlow(ctx, sessionID, state.Flow); err != nil {
				e.logger.Warn("failed to persist flow", "error", err, "session_id", sessionID)
			}
		}
		return nil
	})
	return snapshot, err
}

// FollowUps proposes the ranked follow-up questions for this turn.
func (e *Engine) FollowUps(sessionID string, enhanced *EnhancedContext, intent nlp.Intent) []FollowUpQuestion {
	var questions []FollowUpQuestion
	e.registry.Peek(sessionID, func(state *SessionState) {
		questions = GenerateFollowUpQuestions(enhanced, state.Memory, state.Flow, intent)
	})
	return questions
}

// ObserveMemory folds an observation into the session's memory and persists
// it. Observations below the per-area confidence thresholds are dropped.
func (e *Engine) ObserveMemory(ctx context.Context, sessionID, customerID string, obs MemoryObservation) error {
	return e.registry.Do(sessionID, customerID, func(state *SessionState) error {
		state.Memory.Apply(obs)
		// Memory changed; the next context build must re-merge.
		state.cachedContext = nil

		if e.store != nil {
			if err := e.store.SaveMemory(ctx, state.Memory); err != nil {
				e.logger.Warn("failed to persist memory", "error", err, "session_id", sessionID)
			}
		}
		return nil
	})
}

// Insights returns the condensed memory/flow snapshot the response pipeline
// personalizes from. ok is false for unknown sessions.
func (e *Engine) Insights(sessionID string) (Insights, bool) {
	var insights Insights
	ok := e.registry.Peek(sessionID, func(state *SessionState) {
		m := state.Memory
		if len(m.Preferences.Styles) > 0 {
			insights.PreferredStyle = m.Preferences.Styles[0]
		}
		insights.TypicalOccasions = m.History.FrequentOccasions
		if len(m.Behaviors.DecisionPatterns) > 0 {
			insights.DecisionStyle = m.Behaviors.DecisionPatterns[0]
		}
		insights.EmotionalState = m.EmotionalProfile.TypicalSentiment
		insights.CommunicationStyle = m.Behaviors.CommunicationStyle
		insights.MotivationTriggers = m.EmotionalProfile.MotivationTriggers

		if state.Flow != nil {
			insights.CurrentPhase = state.Flow.DecisionJourney.CurrentPhase
			insights.Progression = state.Flow.DecisionJourney.ProgressionScore
			insights.EngagementLevel = EngagementLevel(state.Flow.EngagementMetrics)
			insights.RecommendedApproach = RecommendedApproach(state.Flow)
			insights.MessageCount = state.Flow.EngagementMetrics.MessageCount
			insights.TopicSwitches = state.Flow.EngagementMetrics.TopicSwitches
			insights.DepthLevel = state.Flow.EngagementMetrics.DepthLevel
		}
	})
	return insights, ok
}

// EndSession tears down a session explicitly: registry eviction plus
// persisted state removal.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	e.registry.Remove(sessionID)
	if e.store != nil {
		if err := e.store.Delete(ctx, sessionID); err != nil {
			return err
		}
	}
	return nil
}

// SweepIdleSessions evicts registry entries idle past maxIdle.
func (e *Engine) SweepIdleSessions(maxIdle time.Duration) int {
	return e.registry.SweepIdle(maxIdle)
}
