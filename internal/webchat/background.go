package webchat

import (
	"context"
	"time"
)

// Sweeps configures the background maintenance intervals. Zero values take
// the defaults: connections every 5m, typing every 30s, notifications every
// 60s.
type Sweeps struct {
	Connections   time.Duration
	Typing        time.Duration
	Notifications time.Duration
}

// RunBackground starts the periodic maintenance loop and blocks until the
// context is cancelled: evicting idle connections, clearing stale typing
// flags, and delivering due notifications.
func (h *Handler) RunBackground(ctx context.Context, sweeps Sweeps) {
	if sweeps.Connections <= 0 {
		sweeps.Connections = 5 * time.Minute
	}
	if sweeps.Typing <= 0 {
		sweeps.Typing = 30 * time.Second
	}
	if sweeps.Notifications <= 0 {
		sweeps.Notifications = time.Minute
	}

	connections := time.NewTicker(sweeps.Connections)
	typing := time.NewTicker(sweeps.Typing)
	notifications := time.NewTicker(sweeps.Notifications)
	defer connections.Stop()
	defer typing.Stop()
	defer notifications.Stop()

	h.logger.Info("background maintenance started",
		"connection_sweep", sweeps.Connections.String(),
		"typing_sweep", sweeps.Typing.String(),
		"notification_sweep", sweeps.Notifications.String())

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("background maintenance stopped")
			return
		case <-connections.C:
			h.sweepIdleConnections()
		case <-typing.C:
			h.sweepStaleTyping()
		case <-notifications.C:
			h.deliverDueNotifications()
		}
	}
}

// sweepIdleConnections closes and evicts connections idle past the timeout.
func (h *Handler) sweepIdleConnections() {
	now := h.now()

	h.mu.RLock()
	var idle []*session
	for _, sess := range h.sessions {
		if now.Sub(sess.idleSince()) > h.idleTimeout {
			idle = append(idle, sess)
		}
	}
	h.mu.RUnlock()

	for _, sess := range idle {
		h.logger.Info("evicting idle connection", "session_id", sess.id)
		if sess.conn != nil {
			_ = sess.conn.Close()
		}
		h.unregister(sess)
	}

	// Detached workers from the HTTP fallback age out the same way.
	h.mu.Lock()
	for id, sess := range h.detached {
		if now.Sub(sess.idleSince()) > h.idleTimeout {
			sess.close()
			delete(h.detached, id)
		}
	}
	h.mu.Unlock()
}

// sweepStaleTyping clears user typing flags older than the stale cutoff.
func (h *Handler) sweepStaleTyping() {
	now := h.now()

	h.mu.RLock()
	sessions := make([]*session, 0, len(h.sessions))
	for _, sess := range h.sessions {
		sessions = append(sessions, sess)
	}
	h.mu.RUnlock()

	for _, sess := range sessions {
		if sess.clearStaleTyping(h.typingStale, now) {
			h.logger.Debug("cleared stale typing indicator", "session_id", sess.id)
		}
	}
}

// deliverDueNotifications drains due notifications to their sessions.
// Sessions without a live connection lose the delivery; scheduled follow-ups
// are reminders, not guaranteed messages.
func (h *Handler) deliverDueNotifications() {
	for _, notification := range h.notifier.Due(h.now()) {
		n := notification
		delivered := h.SendToSession(n.SessionID, ServerMessage{
			Type:         "notification",
			SessionID:    n.SessionID,
			Notification: &n,
		})
		if delivered {
			h.logger.Info("notification delivered", "session_id", n.SessionID, "type", n.Type)
		}
	}
}
