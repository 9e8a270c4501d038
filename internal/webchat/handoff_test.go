package webchat

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartoria-ai/chat-platform/pkg/logging"
)

func newTestHandoffManager(onAssigned func(string, Handoff)) *HandoffManager {
	return NewHandoffManager(10*time.Millisecond, onAssigned, logging.NewWithWriter("error", io.Discard))
}

func TestHandoffDefaults(t *testing.T) {
	m := newTestHandoffManager(nil)
	defer m.Shutdown()

	h, created := m.Initiate("s1", "", "", "", nil)
	require.True(t, created)
	assert.Equal(t, "human_agent", h.Type)
	assert.Equal(t, "Customer requested human assistance", h.Reason)
	assert.Equal(t, "medium", h.Urgency)
	assert.Equal(t, HandoffPending, h.Status)
	assert.NotEmpty(t, h.ID)
}

func TestHandoffIdempotentPerSession(t *testing.T) {
	m := newTestHandoffManager(nil)
	defer m.Shutdown()

	first, created := m.Initiate("s1", "human_agent", "first", "high", nil)
	require.True(t, created)

	second, created := m.Initiate("s1", "specialist", "second", "low", nil)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "first", second.Reason)

	// Another session is independent.
	_, created = m.Initiate("s2", "", "", "", nil)
	assert.True(t, created)
}

func TestHandoffAgentAssignment(t *testing.T) {
	assigned := make(chan Handoff, 1)
	m := newTestHandoffManager(func(sessionID string, h Handoff) {
		assigned <- h
	})
	defer m.Shutdown()

	_, created := m.Initiate("s1", "", "", "", nil)
	require.True(t, created)

	select {
	case h := <-assigned:
		assert.Equal(t, HandoffAccepted, h.Status)
		require.NotNil(t, h.AssignedAgent)
		assert.Equal(t, "agent_001", h.AssignedAgent.ID)
		assert.Equal(t, "Sarah Johnson", h.AssignedAgent.Name)
		assert.Equal(t, "Formal Menswear Specialist", h.AssignedAgent.Specialty)
	case <-time.After(2 * time.Second):
		t.Fatal("agent was never assigned")
	}

	current, ok := m.Get("s1")
	require.True(t, ok)
	assert.Equal(t, HandoffAccepted, current.Status)
}

func TestHandoffDisconnectFailsPending(t *testing.T) {
	assigned := make(chan Handoff, 1)
	m := newTestHandoffManager(func(_ string, h Handoff) { assigned <- h })
	defer m.Shutdown()

	_, created := m.Initiate("s1", "", "", "", nil)
	require.True(t, created)

	m.Disconnect("s1")

	h, ok := m.Get("s1")
	require.True(t, ok)
	assert.Equal(t, HandoffFailed, h.Status)

	// The cancelled timer never fires the callback.
	select {
	case <-assigned:
		t.Fatal("assignment fired after disconnect")
	case <-time.After(50 * time.Millisecond):
	}

	// A failed handoff is terminal; a new request starts fresh.
	fresh, created := m.Initiate("s1", "", "", "", nil)
	assert.True(t, created)
	assert.NotEqual(t, h.ID, fresh.ID)
}

func TestHandoffDisconnectKeepsAccepted(t *testing.T) {
	assigned := make(chan Handoff, 1)
	m := newTestHandoffManager(func(_ string, h Handoff) { assigned <- h })
	defer m.Shutdown()

	m.Initiate("s1", "", "", "", nil)
	select {
	case <-assigned:
	case <-time.After(2 * time.Second):
		t.Fatal("agent was never assigned")
	}

	m.Disconnect("s1")
	h, ok := m.Get("s1")
	require.True(t, ok)
	assert.Equal(t, HandoffAccepted, h.Status)
}

func TestHandoffComplete(t *testing.T) {
	assigned := make(chan Handoff, 1)
	m := newTestHandoffManager(func(_ string, h Handoff) { assigned <- h })
	defer m.Shutdown()

	m.Initiate("s1", "", "", "", nil)

	// Completion requires an accepted handoff.
	assert.False(t, m.Complete("s1"))

	select {
	case <-assigned:
	case <-time.After(2 * time.Second):
		t.Fatal("agent was never assigned")
	}
	assert.True(t, m.Complete("s1"))

	h, _ := m.Get("s1")
	assert.Equal(t, HandoffCompleted, h.Status)
	assert.False(t, m.Complete("s1"))
}
