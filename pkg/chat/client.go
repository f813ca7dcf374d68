package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/raseedapp/go-raseed/internal/httpc"
)

// queryRequest is the backend query payload.
type queryRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

// QueryReply is the backend's answer to a query.
type QueryReply struct {
	Response   string `json:"response"`
	WalletLink string `json:"wallet_link,omitempty"`
}

// Client talks to the assistant backend.
type Client struct {
	baseURL string
	userID  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a backend client. baseURL is the backend root without a
// trailing slash; userID identifies the conversation owner.
func NewClient(baseURL, userID string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBackendURL
	}
	if timeout <= 0 {
		timeout = httpc.DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		http:    httpc.NewClient(timeout),
		logger:  logger.With("component", "chat-client"),
	}, nil
}

// Query sends one user query and returns the assistant reply. Backends that
// answer with plain text instead of JSON are tolerated; the body becomes the
// reply text.
func (c *Client) Query(ctx context.Context, query string) (*QueryReply, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	body, err := json.Marshal(queryRequest{Query: query, UserID: c.userID})
	if err != nil {
		return nil, fmt.Errorf("chat: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chat: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat: backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chat: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(data)),
		}
	}

	var reply QueryReply
	if err := json.Unmarshal(data, &reply); err != nil || reply.Response == "" {
		// Older backend builds answer with the reply as plain text.
		reply = QueryReply{Response: strings.TrimSpace(string(data))}
	}

	c.logger.Debug("backend query completed",
		"latency_ms", time.Since(start).Milliseconds(),
		"reply_chars", len(reply.Response),
	)
	return &reply, nil
}
