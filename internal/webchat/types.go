package webchat

import (
	"time"

	"github.com/sartoria-ai/chat-platform/internal/conversation"
)

// ClientMessage is what the chat widget sends over the socket.
type ClientMessage struct {
	Type       string `json:"type"` // "authenticate", "chat_message", "typing_start", "typing_stop", "request_handoff", "ping"
	SessionID  string `json:"session_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	Content    string `json:"content,omitempty"`

	// Handoff request fields.
	HandoffType string `json:"handoff_type,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
}

// ServerMessage is what we send to the widget. Fields are populated per type.
type ServerMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`

	// chat_response fields.
	Message           string                          `json:"message,omitempty"`
	Confidence        float64                         `json:"confidence,omitempty"`
	SuggestedActions  []string                        `json:"suggested_actions,omitempty"`
	FollowUpHooks     []string                        `json:"follow_up_hooks,omitempty"`
	FollowUpQuestions []conversation.FollowUpQuestion `json:"follow_up_questions,omitempty"`
	Metadata          *ResponseMetadata               `json:"metadata,omitempty"`

	// ai_typing_start fields.
	EstimatedResponseTimeMS int `json:"estimated_response_time_ms,omitempty"`

	// Handoff lifecycle fields.
	Handoff           *HandoffView `json:"handoff,omitempty"`
	Agent             *Agent       `json:"agent,omitempty"`
	EstimatedWaitTime string       `json:"estimated_wait_time,omitempty"`

	Notification *Notification    `json:"notification,omitempty"`
	Alert        *SentimentAlert  `json:"alert,omitempty"`
	Messages     []HistoryMessage `json:"messages,omitempty"`
}

// ResponseMetadata is the per-turn generation detail exposed to the client.
type ResponseMetadata struct {
	TemplateID       string  `json:"template_id"`
	Layer            int     `json:"layer"`
	GenerationTimeMS int64   `json:"generation_time_ms"`
	SafetyScore      float64 `json:"safety_score"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// SessionStatus is the realtime view of a session for operator tooling.
type SessionStatus struct {
	Connected     bool               `json:"connected"`
	Typing        bool               `json:"typing"`
	Sentiment     *SentimentSnapshot `json:"sentiment,omitempty"`
	HandoffStatus string             `json:"handoff_status"`
	AssignedAgent *Agent             `json:"agent_assigned,omitempty"`
}

// typingState tracks who is typing on a session and since when.
type typingState struct {
	userTyping bool
	userSince  time.Time
	aiTyping   bool
}
