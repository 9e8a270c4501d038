package main

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

type noopAnalyzer struct{}

func (noopAnalyzer) Analyze(context.Context, nlp.AnalyzeRequest) (*nlp.Analysis, error) {
	return nlp.FallbackAnalysis(), nil
}

func TestSweepIdleSessionsEvicts(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := logging.NewWithWriter("error", io.Discard)
	engine := conversation.NewEngine(conversation.NewRegistry(), conversation.NewStore(client), noopAnalyzer{}, logger)

	if _, err := engine.BuildEnhancedContext(context.Background(), "s1", "", nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := engine.Insights("s1"); !ok {
		t.Fatal("session entry should exist before the sweep")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweepIdleSessions(ctx, engine, 10*time.Millisecond, time.Nanosecond, logger)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := engine.Insights("s1"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("idle session was never evicted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}
