// Package notify forwards booking requests to the external notification
// endpoint that dispatches the emails. Nothing is persisted here.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"posada/internal/models"
)

// SubmitResult is the envelope the notification endpoint answers with.
type SubmitResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Notifier hands a booking request to the notification collaborator.
type Notifier interface {
	Submit(ctx context.Context, req models.BookingRequest) (*SubmitResult, error)
}

// HTTPNotifier posts booking requests to a configured endpoint.
type HTTPNotifier struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client

	maxRetries int
	retryDelay time.Duration
}

// Option configures an HTTPNotifier.
type Option func(*HTTPNotifier)

// WithRetry overrides the retry policy.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(n *HTTPNotifier) {
		n.maxRetries = maxRetries
		n.retryDelay = delay
	}
}

// NewHTTPNotifier constructs a notifier with endpoint, API key and timeout.
func NewHTTPNotifier(endpoint, apiKey string, timeout time.Duration, opts ...Option) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	n := &HTTPNotifier{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 3,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Submit posts the booking request, retrying transient failures. A response
// with success=false is returned as-is, not retried: the collaborator has
// already made its decision.
func (n *HTTPNotifier) Submit(ctx context.Context, req models.BookingRequest) (*SubmitResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode booking request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(n.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := n.post(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("submit booking after %d attempts: %w", n.maxRetries+1, lastErr)
}

func (n *HTTPNotifier) post(ctx context.Context, body []byte) (*SubmitResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		httpReq.Header.Set("x-api-key", n.apiKey)
	}

	resp, err := n.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}
