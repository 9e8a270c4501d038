package webchat

import (
	"time"

	"github.com/sartoria-ai/chat-platform/internal/nlp"
)

const sentimentHistoryCap = 10

// SentimentSnapshot is one scored sentiment reading for a session.
type SentimentSnapshot struct {
	Overall        string    `json:"overall"`
	EmotionalState string    `json:"emotional_state"`
	Score          float64   `json:"score"`
	Confidence     float64   `json:"confidence"`
	UrgencyLevel   string    `json:"urgency_level"`
	Timestamp      time.Time `json:"timestamp"`
}

// SentimentTrend summarizes how a session's sentiment is moving.
type SentimentTrend struct {
	Direction string  `json:"direction"` // "improving", "stable", "declining"
	Velocity  float64 `json:"velocity"`
}

// SentimentAlert flags a sentiment condition that may need attention.
type SentimentAlert struct {
	Type     string `json:"type"` // "escalation_needed", "satisfaction_drop", "engagement_loss"
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// sentimentMonitor tracks per-session sentiment across turns. Not safe for
// concurrent use; callers serialize through the session worker.
type sentimentMonitor struct {
	current SentimentSnapshot
	history []SentimentSnapshot
	trend   SentimentTrend
}

// newSentimentMonitor starts a session at a neutral baseline.
func newSentimentMonitor(now time.Time) *sentimentMonitor {
	return &sentimentMonitor{
		current: SentimentSnapshot{
			Overall:        "neutral",
			EmotionalState: nlp.EmotionEngaged,
			Score:          0.5,
			UrgencyLevel:   "low",
			Timestamp:      now,
		},
		trend: SentimentTrend{Direction: "stable"},
	}
}

// Update scores the new reading, recomputes the trend against the previous
// one, and returns any alerts the combination raises.
func (m *sentimentMonitor) Update(s nlp.Sentiment, now time.Time) (SentimentTrend, []SentimentAlert) {
	snapshot := SentimentSnapshot{
		Overall:        s.Overall,
		EmotionalState: s.EmotionalState,
		Score:          sentimentScore(s),
		Confidence:     s.Confidence,
		UrgencyLevel:   s.UrgencyLevel,
		Timestamp:      now,
	}

	velocity := snapshot.Score - m.current.Score
	direction := "stable"
	if velocity > 0.1 {
		direction = "improving"
	} else if velocity < -0.1 {
		direction = "declining"
	}

	m.history = append(m.history, m.current)
	if len(m.history) > sentimentHistoryCap {
		m.history = m.history[len(m.history)-sentimentHistoryCap:]
	}
	m.current = snapshot
	m.trend = SentimentTrend{Direction: direction, Velocity: velocity}

	return m.trend, m.alerts(snapshot)
}

// Current returns the latest snapshot.
func (m *sentimentMonitor) Current() SentimentSnapshot {
	return m.current
}

// Trend returns the latest computed trend.
func (m *sentimentMonitor) Trend() SentimentTrend {
	return m.trend
}

// History returns the retained prior snapshots, oldest first.
func (m *sentimentMonitor) History() []SentimentSnapshot {
	out := make([]SentimentSnapshot, len(m.history))
	copy(out, m.history)
	return out
}

func (m *sentimentMonitor) alerts(current SentimentSnapshot) []SentimentAlert {
	var alerts []SentimentAlert

	if current.EmotionalState == nlp.EmotionFrustrated && current.Confidence > 0.8 {
		alerts = append(alerts, SentimentAlert{
			Type:     "escalation_needed",
			Severity: "high",
			Message:  "Customer showing high frustration - consider escalation",
		})
	}
	if m.trend.Direction == "declining" && abs(m.trend.Velocity) > 0.3 {
		alerts = append(alerts, SentimentAlert{
			Type:     "satisfaction_drop",
			Severity: "medium",
			Message:  "Customer satisfaction declining rapidly",
		})
	}
	if current.UrgencyLevel == "low" && m.trend.Direction == "declining" {
		alerts = append(alerts, SentimentAlert{
			Type:     "engagement_loss",
			Severity: "low",
			Message:  "Customer engagement may be waning",
		})
	}
	return alerts
}

// sentimentScore collapses a sentiment reading to a 0..1 scalar. The
// emotional state moves the score further than the overall polarity.
func sentimentScore(s nlp.Sentiment) float64 {
	score := 0.5
	switch s.Overall {
	case "positive":
		score += 0.3
	case "negative":
		score -= 0.3
	}
	switch s.EmotionalState {
	case nlp.EmotionExcited:
		score += 0.2
	case nlp.EmotionFrustrated:
		score -= 0.4
	case nlp.EmotionAnxious:
		score -= 0.2
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
