package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/soporteti/flowprobe/internal/reliability"
)

const (
	greetingPath = "/api/greeting"
	chatPath     = "/api/chat"

	retryBackoffBase = 200 * time.Millisecond
	retryBackoffCap  = 2 * time.Second
)

// Client talks to the flow bot service under test.
type Client struct {
	baseURL       string
	origin        string
	retryAttempts int
	client        *http.Client
}

// Options controls client construction.
type Options struct {
	BaseURL       string
	Origin        string
	Timeout       time.Duration
	RetryAttempts int
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	origin := strings.TrimSpace(opts.Origin)
	if origin == "" {
		origin = baseURL
	}
	return &Client{
		baseURL:       baseURL,
		origin:        origin,
		retryAttempts: opts.RetryAttempts,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Greeting opens a new conversation with the bot.
func (c *Client) Greeting(ctx context.Context) (GreetingResponse, error) {
	var out GreetingResponse
	if err := c.do(ctx, http.MethodGet, greetingPath, nil, &out); err != nil {
		return GreetingResponse{}, err
	}
	if err := out.validate(); err != nil {
		return GreetingResponse{}, err
	}
	return out, nil
}

// Chat sends one user turn within an open conversation.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return ChatResponse{}, err
	}
	var out ChatResponse
	if err := c.do(ctx, http.MethodPost, chatPath, req, &out); err != nil {
		return ChatResponse{}, err
	}
	if out.Reply == "" {
		return ChatResponse{}, fmt.Errorf("chat response is missing reply")
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = c.doOnce(ctx, method, path, payload, out)
		if lastErr == nil {
			return nil
		}
		var re *retryableError
		if !errors.As(lastErr, &re) || attempt >= c.retryAttempts {
			break
		}
		backoff := reliability.ExponentialBackoff(attempt, retryBackoffBase, retryBackoffCap)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	var re *retryableError
	if errors.As(lastErr, &re) {
		return re.err
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	// Fixed header set: the bot gates on Origin and expects JSON bodies.
	req.Header.Set("Origin", c.origin)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		err := fmt.Errorf("flow bot HTTP %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
		if reliability.IsRetryableHTTPStatus(res.StatusCode) {
			return &retryableError{err: err}
		}
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }
