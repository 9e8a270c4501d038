package webchat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sartoria-ai/chat-platform/pkg/logging"
)

// Handoff transfer states. Pending moves to accepted when an agent picks the
// session up, then to completed. A disconnect while pending fails it.
const (
	HandoffPending   = "pending"
	HandoffAccepted  = "accepted"
	HandoffCompleted = "completed"
	HandoffFailed    = "failed"
)

const handoffWaitEstimate = "2-5 minutes"

// Agent is a human agent a session can be transferred to.
type Agent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// Handoff is one transfer of a session from the assistant to a human.
type Handoff struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	Type          string    `json:"type"` // "human_agent", "specialist", "manager"
	Reason        string    `json:"reason"`
	Urgency       string    `json:"urgency"`
	Status        string    `json:"status"`
	KeyIssues     []string  `json:"key_issues,omitempty"`
	RequestedAt   time.Time `json:"requested_at"`
	AssignedAgent *Agent    `json:"assigned_agent,omitempty"`
}

// HandoffView is the client-facing projection of a handoff.
type HandoffView struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Reason  string `json:"reason"`
	Urgency string `json:"urgency"`
	Status  string `json:"status"`
}

// View returns the client-facing projection.
func (h *Handoff) View() *HandoffView {
	return &HandoffView{ID: h.ID, Type: h.Type, Reason: h.Reason, Urgency: h.Urgency, Status: h.Status}
}

func (h *Handoff) terminal() bool {
	return h.Status == HandoffCompleted || h.Status == HandoffFailed
}

// HandoffManager owns the handoff queue. At most one non-terminal handoff
// exists per session; repeat requests return the existing one.
type HandoffManager struct {
	assignDelay time.Duration
	onAssigned  func(sessionID string, h Handoff)
	logger      *logging.Logger
	now         func() time.Time

	mu        sync.Mutex
	bySession map[string]*Handoff
	timers    map[string]*time.Timer
}

// NewHandoffManager creates a manager. onAssigned fires after the assignment
// delay for each pending handoff, from a timer goroutine.
func NewHandoffManager(assignDelay time.Duration, onAssigned func(sessionID string, h Handoff), logger *logging.Logger) *HandoffManager {
	if logger == nil {
		logger = logging.Default()
	}
	if assignDelay <= 0 {
		assignDelay = 3 * time.Second
	}
	return &HandoffManager{
		assignDelay: assignDelay,
		onAssigned:  onAssigned,
		logger:      logger.Component("handoff"),
		now:         func() time.Time { return time.Now().UTC() },
		bySession:   make(map[string]*Handoff),
		timers:      make(map[string]*time.Timer),
	}
}

// Initiate requests a handoff for a session. If a non-terminal handoff
// already exists it is returned with created=false. Empty fields take the
// customer-request defaults.
func (m *HandoffManager) Initiate(sessionID, handoffType, reason, urgency string, keyIssues []string) (Handoff, bool) {
	if handoffType == "" {
		handoffType = "human_agent"
	}
	if reason == "" {
		reason = "Customer requested human assistance"
	}
	if urgency == "" {
		urgency = "medium"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.bySession[sessionID]; ok && !existing.terminal() {
		return *existing, false
	}

	h := &Handoff{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		Type:        handoffType,
		Reason:      reason,
		Urgency:     urgency,
		Status:      HandoffPending,
		KeyIssues:   keyIssues,
		RequestedAt: m.now(),
	}
	m.bySession[sessionID] = h

	m.logger.Info("handoff initiated", "session_id", sessionID, "type", handoffType, "urgency", urgency, "reason", reason)

	timer := time.AfterFunc(m.assignDelay, func() { m.assign(sessionID, h.ID) })
	m.timers[sessionID] = timer

	return *h, true
}

// assign attaches the available agent to a still-pending handoff.
func (m *HandoffManager) assign(sessionID, handoffID string) {
	m.mu.Lock()
	h, ok := m.bySession[sessionID]
	if !ok || h.ID != handoffID || h.Status != HandoffPending {
		m.mu.Unlock()
		return
	}
	h.Status = HandoffAccepted
	h.AssignedAgent = &Agent{
		ID:        "agent_001",
		Name:      "Sarah Johnson",
		Specialty: "Formal Menswear Specialist",
	}
	delete(m.timers, sessionID)
	snapshot := *h
	m.mu.Unlock()

	m.logger.Info("handoff agent assigned", "session_id", sessionID, "agent_id", snapshot.AssignedAgent.ID)
	if m.onAssigned != nil {
		m.onAssigned(sessionID, snapshot)
	}
}

// Complete marks an accepted handoff finished.
func (m *HandoffManager) Complete(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.bySession[sessionID]
	if !ok || h.Status != HandoffAccepted {
		return false
	}
	h.Status = HandoffCompleted
	return true
}

// Disconnect fails any pending handoff for the session and cancels its
// assignment timer. Accepted handoffs survive a reconnect.
func (m *HandoffManager) Disconnect(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if timer, ok := m.timers[sessionID]; ok {
		timer.Stop()
		delete(m.timers, sessionID)
	}
	if h, ok := m.bySession[sessionID]; ok && h.Status == HandoffPending {
		h.Status = HandoffFailed
		m.logger.Warn("handoff failed on disconnect", "session_id", sessionID, "handoff_id", h.ID)
	}
}

// Get returns the session's handoff, if any.
func (m *HandoffManager) Get(sessionID string) (Handoff, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.bySession[sessionID]
	if !ok {
		return Handoff{}, false
	}
	return *h, true
}

// QueueSize reports how many handoffs are tracked, for health checks.
func (m *HandoffManager) QueueSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySession)
}

// Shutdown stops all pending assignment timers.
func (m *HandoffManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sessionID, timer := range m.timers {
		timer.Stop()
		delete(m.timers, sessionID)
	}
}
