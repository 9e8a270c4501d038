package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	mathrand "math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sartoria-ai/chat-platform/internal/conversation"
	"github.com/sartoria-ai/chat-platform/internal/nlp"
	"github.com/sartoria-ai/chat-platform/internal/observability/metrics"
	"github.com/sartoria-ai/chat-platform/internal/response"
	"github.com/sartoria-ai/chat-platform/pkg/logging"
	"golang.org/x/net/websocket"
)

const turnTimeout = 30 * time.Second

// TranscriptStore reads and writes chat history.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, msg conversation.TranscriptMessage) error
	List(ctx context.Context, sessionID string, limit int64) ([]conversation.TranscriptMessage, error)
	History(ctx context.Context, sessionID string, limit int64) ([]conversation.ChatMessage, error)
}

// ResponseGenerator produces the assistant reply for a turn.
type ResponseGenerator interface {
	GenerateResponse(ctx context.Context, intent nlp.Intent, enhanced *conversation.EnhancedContext, analysis *nlp.Analysis, depth *response.DepthConfig) (*response.GeneratedResponse, error)
}

// Options tunes the realtime layer. Zero values take defaults.
type Options struct {
	QueueDepth       int
	IdleTimeout      time.Duration
	TypingStaleAfter time.Duration
	AgentAssignDelay time.Duration
}

// Handler manages web chat connections and runs the per-turn pipeline.
type Handler struct {
	engine     *conversation.Engine
	generator  ResponseGenerator
	analyzer   nlp.Analyzer
	transcript TranscriptStore
	handoffs   *HandoffManager
	notifier   *Notifier
	metrics    *metrics.ChatMetrics
	logger     *logging.Logger

	queueDepth  int
	idleTimeout time.Duration
	typingStale time.Duration

	now         func() time.Time
	typingEstMS func() int

	mu       sync.RWMutex
	sessions map[string]*session
	detached map[string]*session
}

// NewHandler creates the realtime chat handler. The engine, generator and
// analyzer are hard dependencies.
func NewHandler(engine *conversation.Engine, generator ResponseGenerator, analyzer nlp.Analyzer, transcript TranscriptStore, m *metrics.ChatMetrics, opts Options, logger *logging.Logger) *Handler {
	if engine == nil {
		panic("webchat: engine is required")
	}
	if generator == nil {
		panic("webchat: generator is required")
	}
	if analyzer == nil {
		panic("webchat: analyzer is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 16
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	if opts.TypingStaleAfter <= 0 {
		opts.TypingStaleAfter = 5 * time.Second
	}

	h := &Handler{
		engine:      engine,
		generator:   generator,
		analyzer:    analyzer,
		transcript:  transcript,
		notifier:    NewNotifier(),
		metrics:     m,
		logger:      logger.Component("webchat"),
		queueDepth:  opts.QueueDepth,
		idleTimeout: opts.IdleTimeout,
		typingStale: opts.TypingStaleAfter,
		now:         func() time.Time { return time.Now().UTC() },
		typingEstMS: func() int { return 2000 + mathrand.Intn(3001) },
		sessions:    make(map[string]*session),
		detached:    make(map[string]*session),
	}
	h.handoffs = NewHandoffManager(opts.AgentAssignDelay, h.onAgentAssigned, logger)
	return h
}

// Handoffs exposes the handoff queue for operator tooling.
func (h *Handler) Handoffs() *HandoffManager {
	return h.handoffs
}

// Notifier exposes the notification queue so other components can schedule
// follow-ups for a session.
func (h *Handler) Notifier() *Notifier {
	return h.notifier
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	if h.metrics != nil {
		h.metrics.ConnectionOpened()
		defer h.metrics.ConnectionClosed()
	}

	_ = websocket.JSON.Send(conn, ServerMessage{
		Type:      "connection_established",
		Timestamp: h.now().Format(time.RFC3339),
	})

	var sess *session

	// Query params are the widget shortcut; an authenticate message works
	// the same and wins over them.
	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		sess = h.register(sessionID, r.URL.Query().Get("customer"), conn)
		h.sendAuthenticated(sess)
	}

	defer func() {
		if sess != nil {
			h.unregister(sess)
		}
	}()

	for {
		var msg ClientMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("connection closed", "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			h.sendOn(conn, ServerMessage{Type: "pong"})

		case "authenticate":
			if sess != nil {
				h.sendAuthenticated(sess)
				continue
			}
			sessionID := msg.SessionID
			if sessionID == "" {
				sessionID = generateSessionID()
			}
			sess = h.register(sessionID, msg.CustomerID, conn)
			h.sendAuthenticated(sess)
			h.sendHistory(r.Context(), sess)

		case "typing_start":
			if sess == nil {
				continue
			}
			sess.setUserTyping(true, h.now())

		case "typing_stop":
			if sess == nil {
				continue
			}
			sess.setUserTyping(false, h.now())

		case "chat_message":
			if sess == nil {
				h.sendOn(conn, ServerMessage{Type: "error", Error: "authenticate first"})
				continue
			}
			content := strings.TrimSpace(msg.Content)
			if content == "" {
				continue
			}
			current := sess
			if !current.enqueue(func() { h.processTurn(current, content) }) {
				h.send(current, ServerMessage{Type: "error", Error: "too many messages in flight, please wait"})
			}

		case "request_handoff":
			if sess == nil {
				h.sendOn(conn, ServerMessage{Type: "error", Error: "authenticate first"})
				continue
			}
			h.requestHandoff(sess, msg.HandoffType, msg.Reason, msg.Urgency)

		default:
			h.sendOn(conn, ServerMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

func (h *Handler) register(sessionID, customerID string, conn *websocket.Conn) *session {
	now := h.now()
	sess := newSession(sessionID, customerID, conn, h.queueDepth, now)

	h.mu.Lock()
	if prev, ok := h.sessions[sessionID]; ok {
		prev.close()
	}
	if prev, ok := h.detached[sessionID]; ok {
		prev.close()
		delete(h.detached, sessionID)
	}
	h.sessions[sessionID] = sess
	h.mu.Unlock()

	h.logger.Info("session connected", "session_id", sessionID, "customer_id", customerID)
	return sess
}

func (h *Handler) unregister(sess *session) {
	h.mu.Lock()
	if h.sessions[sess.id] == sess {
		delete(h.sessions, sess.id)
	}
	h.mu.Unlock()
	sess.close()
	h.handoffs.Disconnect(sess.id)
	h.logger.Info("session disconnected", "session_id", sess.id)
}

func (h *Handler) sendAuthenticated(sess *session) {
	h.send(sess, ServerMessage{
		Type:      "authenticated",
		SessionID: sess.id,
		Timestamp: h.now().Format(time.RFC3339),
	})
}

func (h *Handler) sendHistory(ctx context.Context, sess *session) {
	if h.transcript == nil {
		return
	}
	msgs, err := h.transcript.List(ctx, sess.id, 50)
	if err != nil || len(msgs) == 0 {
		return
	}
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, HistoryMessage{
			Role:      m.Role,
			Text:      m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	h.send(sess, ServerMessage{Type: "history", Messages: history})
}

// processTurn runs the full pipeline for one inbound message. It executes on
// the session worker goroutine, so turns for one session never overlap. The
// chat_response it sent is also returned for transports that reply inline.
func (h *Handler) processTurn(sess *session, content string) ServerMessage {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	start := h.now()
	sess.setUserTyping(false, start)

	if h.transcript != nil {
		if err := h.transcript.Append(ctx, sess.id, conversation.TranscriptMessage{
			Role:    "user",
			Content: content,
		}); err != nil {
			h.logger.Warn("transcript append failed", "session_id", sess.id, "error", err)
		}
	}

	sess.setAITyping(true)
	h.send(sess, ServerMessage{
		Type:                    "ai_typing_start",
		EstimatedResponseTimeMS: h.typingEstMS(),
	})

	status := "ok"
	analysis, err := h.analyzer.Analyze(ctx, nlp.AnalyzeRequest{Message: content})
	if err != nil {
		h.logger.Warn("analysis unavailable, using fallback", "session_id", sess.id, "error", err)
		analysis = nlp.FallbackAnalysis()
		status = "degraded"
	}

	trend, alerts := sess.sentiment.Update(analysis.Sentiment, h.now())
	for _, alert := range alerts {
		h.metrics.ObserveSentimentAlert(alert.Type, alert.Severity)
		h.logger.Info("sentiment alert", "session_id", sess.id, "type", alert.Type, "severity", alert.Severity)
		if alert.Severity == "high" {
			h.send(sess, ServerMessage{Type: "notification", Notification: &Notification{
				ID:        uuid.New().String(),
				SessionID: sess.id,
				Type:      "alert",
				Message:   alert.Message,
				Priority:  alert.Severity,
			}})
		}
	}

	var history []conversation.ChatMessage
	if h.transcript != nil {
		if history, err = h.transcript.History(ctx, sess.id, 50); err != nil {
			h.logger.Warn("history load failed", "session_id", sess.id, "error", err)
			history = []conversation.ChatMessage{{Role: "user", Content: content, Timestamp: start}}
		}
	} else {
		history = []conversation.ChatMessage{{Role: "user", Content: content, Timestamp: start}}
	}

	generated, followUps := h.generate(ctx, sess, content, history, analysis)

	if h.transcript != nil {
		if err := h.transcript.Append(ctx, sess.id, conversation.TranscriptMessage{
			Role:       "assistant",
			Content:    generated.Message,
			Intent:     analysis.Intent.Category,
			Confidence: generated.Confidence,
			Layer:      generated.Layer,
		}); err != nil {
			h.logger.Warn("transcript append failed", "session_id", sess.id, "error", err)
		}
	}

	sess.setAITyping(false)
	h.send(sess, ServerMessage{Type: "ai_typing_stop"})
	reply := ServerMessage{
		Type:              "chat_response",
		SessionID:         sess.id,
		Message:           generated.Message,
		Confidence:        generated.Confidence,
		SuggestedActions:  generated.SuggestedActions,
		FollowUpHooks:     generated.FollowUpHooks,
		FollowUpQuestions: followUps,
		Metadata: &ResponseMetadata{
			TemplateID:       generated.Metadata.TemplateID,
			Layer:            generated.Layer,
			GenerationTimeMS: generated.Metadata.GenerationTimeMS,
			SafetyScore:      generated.Metadata.SafetyScore,
		},
	}
	h.send(sess, reply)

	h.checkHandoffTriggers(sess, analysis, generated)

	sess.touch(h.now())
	if generated.Metadata.TemplateID == "fallback" {
		status = "degraded"
	}
	h.metrics.ObserveTurn(status, strconv.Itoa(generated.Layer), h.now().Sub(start).Seconds())
	h.logger.Debug("turn complete",
		"session_id", sess.id,
		"intent", analysis.Intent.Category,
		"layer", generated.Layer,
		"sentiment_direction", trend.Direction)
	return reply
}

// generate runs context building, flow management, memory observation and
// response generation, degrading to a safe fallback at each failure point.
// The top follow-up questions for the turn ride along with the response.
func (h *Handler) generate(ctx context.Context, sess *session, content string, history []conversation.ChatMessage, analysis *nlp.Analysis) (*response.GeneratedResponse, []conversation.FollowUpQuestion) {
	enhanced, err := h.engine.BuildEnhancedContext(ctx, sess.id, sess.customerID, history)
	if err != nil {
		h.logger.Error("context build failed", "session_id", sess.id, "error", err)
		return response.Fallback(), nil
	}

	previous := history
	if len(previous) > 0 {
		previous = previous[:len(previous)-1]
	}
	transition := h.engine.DetectTransition(previous, content, analysis.Intent)

	if _, err := h.engine.ManageFlow(ctx, sess.id, analysis.Intent, enhanced, transition); err != nil {
		h.logger.Warn("flow update failed", "session_id", sess.id, "error", err)
	}

	h.observeMemory(ctx, sess, analysis)

	generated, err := h.generator.GenerateResponse(ctx, analysis.Intent, enhanced, analysis, nil)
	if err != nil {
		h.logger.Error("response generation failed", "session_id", sess.id, "error", err)
		return response.Fallback(), nil
	}

	followUps := h.engine.FollowUps(sess.id, enhanced, analysis.Intent)
	if len(followUps) > 3 {
		followUps = followUps[:3]
	}
	return generated, followUps
}

// observeMemory feeds what this turn revealed into session memory.
// Preferences carry the intent confidence, the emotional read its own.
func (h *Handler) observeMemory(ctx context.Context, sess *session, analysis *nlp.Analysis) {
	e := analysis.Entities
	if len(e.Styles) > 0 || len(e.Colors) > 0 || len(e.Occasions) > 0 || e.BudgetRange != "" || len(e.FitNotes) > 0 {
		obs := conversation.MemoryObservation{
			Confidence: analysis.Intent.Confidence,
			Preferences: &conversation.PreferenceObservation{
				Styles:         e.Styles,
				Colors:         e.Colors,
				Occasions:      e.Occasions,
				BudgetRange:    e.BudgetRange,
				FitPreferences: e.FitNotes,
			},
		}
		if err := h.engine.ObserveMemory(ctx, sess.id, sess.customerID, obs); err != nil {
			h.logger.Warn("memory update failed", "session_id", sess.id, "error", err)
		}
	}

	if analysis.Sentiment.EmotionalState != "" {
		obs := conversation.MemoryObservation{
			Confidence: analysis.Sentiment.Confidence,
			Emotional: &conversation.EmotionalObservation{
				Sentiment: analysis.Sentiment.Overall,
			},
		}
		if err := h.engine.ObserveMemory(ctx, sess.id, sess.customerID, obs); err != nil {
			h.logger.Warn("memory update failed", "session_id", sess.id, "error", err)
		}
	}
}

// requestHandoff handles an explicit customer handoff request.
func (h *Handler) requestHandoff(sess *session, handoffType, reason, urgency string) {
	handoff, created := h.handoffs.Initiate(sess.id, handoffType, reason, urgency, nil)
	if created {
		h.metrics.ObserveHandoff("customer_request")
	}
	h.send(sess, ServerMessage{
		Type:              "handoff_initiated",
		SessionID:         sess.id,
		Handoff:           handoff.View(),
		EstimatedWaitTime: handoffWaitEstimate,
	})
}

// checkHandoffTriggers evaluates the automatic handoff conditions after a
// turn. Repeat triggers while a handoff is live never create a second one.
func (h *Handler) checkHandoffTriggers(sess *session, analysis *nlp.Analysis, generated *response.GeneratedResponse) {
	trigger := ""
	urgency := "medium"
	switch {
	case analysis.Sentiment.EmotionalState == nlp.EmotionFrustrated && analysis.Sentiment.Confidence > 0.8:
		trigger = "frustration"
		urgency = "high"
	case analysis.Sentiment.Overall == "negative" && analysis.Sentiment.UrgencyLevel == "critical":
		trigger = "negative_critical"
		urgency = "high"
	case analysis.Intent.RequiresEscalation:
		trigger = "escalation_intent"
	case generated.Confidence < 0.3:
		trigger = "low_confidence"
	}
	if trigger == "" {
		return
	}

	handoff, created := h.handoffs.Initiate(sess.id, "human_agent", handoffReason(analysis, generated), urgency, extractKeyIssues(analysis))
	if !created {
		return
	}
	h.metrics.ObserveHandoff(trigger)
	h.send(sess, ServerMessage{
		Type:              "handoff_suggested",
		SessionID:         sess.id,
		Handoff:           handoff.View(),
		EstimatedWaitTime: handoffWaitEstimate,
	})
}

func handoffReason(analysis *nlp.Analysis, generated *response.GeneratedResponse) string {
	if analysis.Sentiment.EmotionalState == nlp.EmotionFrustrated {
		return "Customer frustration detected"
	}
	if analysis.Intent.RequiresEscalation {
		return "Customer explicitly requested escalation"
	}
	if generated.Confidence < 0.3 {
		return "Low confidence in AI response"
	}
	return "Automatic handoff triggered"
}

func extractKeyIssues(analysis *nlp.Analysis) []string {
	var issues []string
	if analysis.Intent.Category == nlp.IntentComplaint {
		issues = append(issues, "Customer complaint")
	}
	if analysis.Sentiment.EmotionalState == nlp.EmotionFrustrated {
		issues = append(issues, "Customer frustration")
	}
	if analysis.Sentiment.UrgencyLevel == "critical" {
		issues = append(issues, "Urgent request")
	}
	return issues
}

// onAgentAssigned notifies the customer when a human agent picks up.
func (h *Handler) onAgentAssigned(sessionID string, handoff Handoff) {
	h.SendToSession(sessionID, ServerMessage{
		Type:      "agent_assigned",
		SessionID: sessionID,
		Handoff:   handoff.View(),
		Agent:     handoff.AssignedAgent,
	})
}

func (h *Handler) send(sess *session, msg ServerMessage) {
	if sess == nil || sess.conn == nil {
		return
	}
	if msg.Timestamp == "" {
		msg.Timestamp = h.now().Format(time.RFC3339)
	}
	_ = websocket.JSON.Send(sess.conn, msg)
}

func (h *Handler) sendOn(conn *websocket.Conn, msg ServerMessage) {
	if msg.Timestamp == "" {
		msg.Timestamp = h.now().Format(time.RFC3339)
	}
	_ = websocket.JSON.Send(conn, msg)
}

// SendToSession sends a message to an active session. Returns false when the
// session has no live connection.
func (h *Handler) SendToSession(sessionID string, msg ServerMessage) bool {
	h.mu.RLock()
	sess, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	h.send(sess, msg)
	return true
}

// GetSessionStatus reports the realtime view of a session.
func (h *Handler) GetSessionStatus(sessionID string) SessionStatus {
	h.mu.RLock()
	sess, ok := h.sessions[sessionID]
	h.mu.RUnlock()

	status := SessionStatus{HandoffStatus: "none"}
	if ok {
		status.Connected = true
		status.Typing = sess.typingSnapshot().userTyping
		current := sess.sentiment.Current()
		status.Sentiment = &current
	}
	if handoff, found := h.handoffs.Get(sessionID); found {
		status.HandoffStatus = handoff.Status
		status.AssignedAgent = handoff.AssignedAgent
	}
	return status
}

// ActiveSessions reports how many sessions have a live connection.
func (h *Handler) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// HandleMessage is the HTTP fallback for sending messages. Connected
// sessions get the turn queued on their worker; others run it inline and
// get the reply in the response body.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID  string `json:"session_id"`
		CustomerID string `json:"customer_id"`
		Text       string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	h.mu.RLock()
	sess, connected := h.sessions[req.SessionID]
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")

	if connected {
		text := req.Text
		if !sess.enqueue(func() { h.processTurn(sess, text) }) {
			http.Error(w, "session busy", http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":     "queued",
			"session_id": req.SessionID,
		})
		return
	}

	// No live socket: the turn still runs on a per-session worker so two
	// rapid posts for the same session keep arrival order.
	detached := h.detachedSession(req.SessionID, req.CustomerID)
	done := make(chan ServerMessage, 1)
	text := req.Text
	if !detached.enqueue(func() { done <- h.processTurn(detached, text) }) {
		http.Error(w, "session busy", http.StatusTooManyRequests)
		return
	}

	select {
	case reply := <-done:
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":              "completed",
			"session_id":          req.SessionID,
			"message":             reply.Message,
			"confidence":          reply.Confidence,
			"suggested_actions":   reply.SuggestedActions,
			"follow_up_questions": reply.FollowUpQuestions,
		})
	case <-time.After(turnTimeout):
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":     "queued",
			"session_id": req.SessionID,
		})
	}
}

// detachedSession returns the worker for a session that has no websocket
// connection, creating it on first use. A later websocket register for the
// same ID supersedes it.
func (h *Handler) detachedSession(sessionID, customerID string) *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sess, ok := h.detached[sessionID]; ok {
		return sess
	}
	sess := newSession(sessionID, customerID, nil, h.queueDepth, h.now())
	h.detached[sessionID] = sess
	return sess
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	history, err := h.historyFor(r.Context(), sessionID, 100)
	if err != nil {
		h.logger.Error("failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"messages": history})
}

// HandleEndSession tears a session down explicitly: the live connection is
// closed, queued notifications dropped, and persisted state removed.
func (h *Handler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	sess, connected := h.sessions[sessionID]
	if det, ok := h.detached[sessionID]; ok {
		det.close()
		delete(h.detached, sessionID)
	}
	h.mu.Unlock()
	if connected {
		if sess.conn != nil {
			_ = sess.conn.Close()
		}
		h.unregister(sess)
	}
	h.notifier.Clear(sessionID)

	if err := h.engine.EndSession(r.Context(), sessionID); err != nil {
		h.logger.Error("session teardown failed", "session_id", sessionID, "error", err)
		http.Error(w, "failed to end session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":     "ended",
		"session_id": sessionID,
	})
}

// HandleStatus returns the realtime session status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.GetSessionStatus(sessionID))
}

func (h *Handler) historyFor(ctx context.Context, sessionID string, limit int64) ([]HistoryMessage, error) {
	if h.transcript == nil {
		return []HistoryMessage{}, nil
	}
	msgs, err := h.transcript.List(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, HistoryMessage{
			Role:      m.Role,
			Text:      m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return history, nil
}
