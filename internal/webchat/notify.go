package webchat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is a scheduled follow-up message for a session. It is held
// until its delivery time and dropped once delivered.
type Notification struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Type           string    `json:"type"` // "follow_up", "promotion", "reminder", "alert"
	Message        string    `json:"message"`
	Priority       string    `json:"priority"`
	ActionRequired bool      `json:"action_required"`
	ScheduledFor   time.Time `json:"scheduled_for"`
}

// Notifier queues notifications per session for later delivery.
type Notifier struct {
	mu    sync.Mutex
	queue map[string][]Notification
}

func NewNotifier() *Notifier {
	return &Notifier{queue: make(map[string][]Notification)}
}

// Schedule queues a notification. A missing ID is filled in.
func (n *Notifier) Schedule(notification Notification) Notification {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queue[notification.SessionID] = append(n.queue[notification.SessionID], notification)
	return notification
}

// Due removes and returns every notification whose delivery time has
// arrived. Sessions with nothing left are dropped from the queue.
func (n *Notifier) Due(now time.Time) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var due []Notification
	for sessionID, pending := range n.queue {
		var remaining []Notification
		for _, notification := range pending {
			if !notification.ScheduledFor.After(now) {
				due = append(due, notification)
			} else {
				remaining = append(remaining, notification)
			}
		}
		if len(remaining) == 0 {
			delete(n.queue, sessionID)
		} else {
			n.queue[sessionID] = remaining
		}
	}
	return due
}

// Pending reports how many notifications are queued for a session.
func (n *Notifier) Pending(sessionID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue[sessionID])
}

// Clear drops all queued notifications for a session.
func (n *Notifier) Clear(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.queue, sessionID)
}
