package webchat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionWorkerSerializesJobs(t *testing.T) {
	sess := newSession("s1", "", nil, 256, time.Now())
	defer sess.close()

	// The counter is deliberately unsynchronized: if two jobs ever ran
	// concurrently the race detector and the final count would both
	// catch it.
	counter := 0
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		ok := sess.enqueue(func() {
			defer wg.Done()
			counter++
			order = append(order, i)
		})
		require.True(t, ok)
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	require.Len(t, order, 100)
	for i, got := range order {
		assert.Equal(t, i, got)
	}
}

func TestSessionWorkerQueueFull(t *testing.T) {
	sess := newSession("s1", "", nil, 1, time.Now())
	defer sess.close()

	release := make(chan struct{})
	running := make(chan struct{})
	require.True(t, sess.enqueue(func() {
		close(running)
		<-release
	}))
	<-running

	// One slot buffers, the next enqueue is refused rather than blocking.
	require.True(t, sess.enqueue(func() {}))
	assert.False(t, sess.enqueue(func() {}))
	close(release)
}

func TestSessionWorkerRunsAcceptedJobsAfterClose(t *testing.T) {
	sess := newSession("s1", "", nil, 4, time.Now())

	release := make(chan struct{})
	running := make(chan struct{})
	require.True(t, sess.enqueue(func() {
		close(running)
		<-release
	}))
	<-running

	// Accepted while the worker is busy, then the session closes before
	// the worker gets to it.
	ran := make(chan struct{})
	require.True(t, sess.enqueue(func() { close(ran) }))
	sess.close()
	close(release)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("queued job was dropped on close")
	}
	assert.False(t, sess.enqueue(func() {}))
}

func TestSessionWorkerClosedRefusesJobs(t *testing.T) {
	sess := newSession("s1", "", nil, 4, time.Now())
	sess.close()
	sess.close() // idempotent
	assert.False(t, sess.enqueue(func() {}))
}

func TestSessionTypingState(t *testing.T) {
	now := time.Now()
	sess := newSession("s1", "c1", nil, 4, now)
	defer sess.close()

	sess.setUserTyping(true, now)
	assert.True(t, sess.typingSnapshot().userTyping)

	// Fresh flags are kept, stale ones cleared.
	assert.False(t, sess.clearStaleTyping(5*time.Second, now.Add(2*time.Second)))
	assert.True(t, sess.typingSnapshot().userTyping)
	assert.True(t, sess.clearStaleTyping(5*time.Second, now.Add(6*time.Second)))
	assert.False(t, sess.typingSnapshot().userTyping)
}
