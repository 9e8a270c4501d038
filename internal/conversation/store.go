package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionStateTTL = 24 * time.Hour

// ErrNotFound is returned when no persisted state exists for a session.
var ErrNotFound = errors.New("conversation: not found")

// Store persists contextual memory and flow state to Redis so a session
// survives process restarts. The in-memory registry is the source of truth
// while a session is live; the store is write-through.
type Store struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewStore creates a Redis-backed session state store.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &Store{
		redis:  redisClient,
		tracer: otel.Tracer("chat.internal.conversation.store"),
	}
}

// SaveMemory persists a session's contextual memory.
func (s *Store) SaveMemory(ctx context.Context, memory *ContextualMemory) error {
	ctx, span := s.tracer.Start(ctx, "conversation.store.save_memory")
	defer span.End()

	data, err := json.Marshal(memory)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: marshal memory: %w", err)
	}
	if err := s.redis.Set(ctx, memoryKey(memory.SessionID), data, sessionStateTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: persist memory: %w", err)
	}
	return nil
}

// LoadMemory fetches a session's contextual memory, or ErrNotFound.
func (s *Store) LoadMemory(ctx context.Context, sessionID string) (*ContextualMemory, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.store.load_memory")
	defer span.End()

	data, err := s.redis.Get(ctx, memoryKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: load memory: %w", err)
	}
	var memory ContextualMemory
	if err := json.Unmarshal(data, &memory); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: decode memory: %w", err)
	}
	return &memory, nil
}

// SaveFlow persists a session's flow state.
func (s *Store) SaveFlow(ctx context.Context, sessionID string, flow *ConversationFlow) error {
	ctx, span := s.tracer.Start(ctx, "conversation.store.save_flow")
	defer span.End()

	data, err := json.Marshal(flow)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: marshal flow: %w", err)
	}
	if err := s.redis.Set(ctx, flowKey(sessionID), data, sessionStateTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: persist flow: %w", err)
	}
	return nil
}

// LoadFlow fetches a session's flow state, or ErrNotFound.
func (s *Store) LoadFlow(ctx context.Context, sessionID string) (*ConversationFlow, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.store.load_flow")
	defer span.End()

	data, err := s.redis.Get(ctx, flowKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: load flow: %w", err)
	}
	var flow ConversationFlow
	if err := json.Unmarshal(data, &flow); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: decode flow: %w", err)
	}
	return &flow, nil
}

// Delete removes all persisted state for a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.store.delete")
	defer span.End()

	if err := s.redis.Del(ctx, memoryKey(sessionID), flowKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: delete session state: %w", err)
	}
	return nil
}

func memoryKey(sessionID string) string {
	return "memory:" + sessionID
}

func flowKey(sessionID string) string {
	return "flow:" + sessionID
}
