package webchat

import (
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

// session is one live websocket session. Each session owns a worker
// goroutine draining jobs one at a time, so two rapid messages on the same
// session never interleave their turn processing while other sessions
// proceed in parallel.
type session struct {
	id         string
	customerID string
	conn       *websocket.Conn
	done       chan struct{}
	jobs       chan func()

	mu           sync.Mutex
	typing       typingState
	lastActivity time.Time
	sentiment    *sentimentMonitor
}

func newSession(id, customerID string, conn *websocket.Conn, queueDepth int, now time.Time) *session {
	if queueDepth <= 0 {
		queueDepth = 16
	}
	s := &session{
		id:           id,
		customerID:   customerID,
		conn:         conn,
		done:         make(chan struct{}),
		jobs:         make(chan func(), queueDepth),
		lastActivity: now,
		sentiment:    newSentimentMonitor(now),
	}
	go s.run()
	return s
}

func (s *session) run() {
	for {
		select {
		case job := <-s.jobs:
			job()
		case <-s.done:
			// Jobs accepted before close still run.
			for {
				select {
				case job := <-s.jobs:
					job()
				default:
					return
				}
			}
		}
	}
}

// enqueue hands a job to the session worker. Returns false when the queue
// is full or the session is closed. The closed check holds the same mutex
// close does, so an accepted job is never silently dropped.
func (s *session) enqueue(job func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.jobs <- job:
		return true
	default:
		return false
	}
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActivity = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *session) setUserTyping(typing bool, now time.Time) {
	s.mu.Lock()
	s.typing.userTyping = typing
	if typing {
		s.typing.userSince = now
	}
	s.lastActivity = now
	s.mu.Unlock()
}

func (s *session) setAITyping(typing bool) {
	s.mu.Lock()
	s.typing.aiTyping = typing
	s.mu.Unlock()
}

func (s *session) typingSnapshot() typingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// clearStaleTyping flips off a user typing flag older than maxAge. Reports
// whether it changed anything.
func (s *session) clearStaleTyping(maxAge time.Duration, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.typing.userTyping && now.Sub(s.typing.userSince) > maxAge {
		s.typing.userTyping = false
		return true
	}
	return false
}
