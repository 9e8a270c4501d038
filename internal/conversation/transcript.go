package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const transcriptKeyPrefix = "transcript:"

// TranscriptMessage is one persisted conversation message with the pipeline
// metadata attached to assistant turns.
type TranscriptMessage struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"` // "user" or "assistant"
	Content    string    `json:"content"`
	Intent     string    `json:"intent,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Layer      int       `json:"layer,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// TranscriptStore persists conversation transcripts to a capped Redis list.
type TranscriptStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	maxMessages int64
}

// NewTranscriptStore creates a transcript store. Returns nil when redisClient
// is nil so callers can treat the transcript as optional.
func NewTranscriptStore(redisClient *redis.Client) *TranscriptStore {
	if redisClient == nil {
		return nil
	}
	return &TranscriptStore{
		redis:       redisClient,
		tracer:      otel.Tracer("chat.internal.conversation.transcript"),
		maxMessages: 250,
	}
}

// Append stores one message at the end of a session's transcript.
func (s *TranscriptStore) Append(ctx context.Context, sessionID string, msg TranscriptMessage) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if sessionID == "" {
		return errors.New("conversation: transcript sessionID required")
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("conversation: marshal transcript message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "conversation.transcript.append")
	defer span.End()

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, sessionStateTTL)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: append transcript message: %w", err)
	}
	return nil
}

// List returns up to limit most recent messages in chronological order.
// limit <= 0 returns the full retained transcript.
func (s *TranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]TranscriptMessage, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if sessionID == "" {
		return nil, errors.New("conversation: transcript sessionID required")
	}

	ctx, span := s.tracer.Start(ctx, "conversation.transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), start, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: list transcript: %w", err)
	}

	messages := make([]TranscriptMessage, 0, len(raw))
	for _, item := range raw {
		var msg TranscriptMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue // skip unreadable entries rather than failing the read
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// History converts a transcript into the engine's chat message form.
func (s *TranscriptStore) History(ctx context.Context, sessionID string, limit int64) ([]ChatMessage, error) {
	msgs, err := s.List(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	history := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, ChatMessage{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
	}
	return history, nil
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}
