package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sartoria-ai/chat-platform/pkg/logging"
)

// Analyzer turns a raw customer message into intent, sentiment and entities.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error)
}

// AnalyzeRequest is the payload sent to the analysis service.
type AnalyzeRequest struct {
	Message             string            `json:"message"`
	ConversationHistory []string          `json:"conversation_history,omitempty"`
	CustomerContext     map[string]string `json:"customer_context,omitempty"`
}

// Client is an HTTP client for the remote analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates an analysis service client.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Component("nlp"),
	}
}

// Analyze posts the message to the analysis service. It does not retry;
// callers that want retry apply their own backoff policy.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("nlp: message is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("nlp: marshal analyze request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("nlp: build analyze request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("nlp: analyze request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nlp: analyze returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var analysis Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("nlp: decode analyze response: %w", err)
	}
	return &analysis, nil
}
