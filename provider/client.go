package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"companion/config"
)

// Client sends prompts to one configured endpoint and retries failed
// attempts. It holds no per-call state and is safe for concurrent use.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	style      Style
	adapter    Adapter
	httpClient *http.Client
	retryDelay time.Duration
}

// ClientOption customizes a Client at construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client built from Config. The caller then
// owns timeout and TLS settings.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryDelay changes the fixed pause between attempts (default 1s).
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// NewClient creates a Client. The adapter is resolved here, once, from
// cfg.Style or the model registry.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	style := cfg.ResolveStyle()

	c := &Client{
		apiKey:     cfg.APIKey,
		apiURL:     cfg.APIURL,
		model:      cfg.Model,
		style:      style,
		adapter:    AdapterFor(style),
		retryDelay: defaultRetryDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = newHTTPClient(cfg.timeout(), cfg.InsecureSkipVerify)
	}

	if config.Debug {
		config.DebugLog.Printf("[Provider] Client created: model=%s style=%s url=%s", c.model, c.style, c.apiURL)
	}

	return c
}

func newHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		config.Warnf("TLS certificate verification is disabled for the LLM endpoint (insecure_skip_verify = true)")
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Style returns the wire style resolved at construction.
func (c *Client) Style() Style {
	return c.style
}

type generateOptions struct {
	temperature float64
	maxRetries  int
}

// GenerateOption tunes a single Generate call.
type GenerateOption func(*generateOptions)

// WithTemperature sets the sampling temperature (default 0.7). Not range-checked.
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) {
		o.temperature = t
	}
}

// WithMaxRetries sets the total number of attempts (default 3). Values below
// 1 mean a single attempt.
func WithMaxRetries(n int) GenerateOption {
	return func(o *generateOptions) {
		o.maxRetries = n
	}
}

func resolveOptions(opts []GenerateOption) generateOptions {
	o := generateOptions{
		temperature: defaultTemperature,
		maxRetries:  defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxRetries < 1 {
		o.maxRetries = 1
	}
	return o
}

// attemptState is the per-call retry state machine:
//
//	attempting → success
//	attempting → attempting  (failure, attempts remain)
//	attempting → failed      (failure, none remain, or ctx done)
type attemptState int

const (
	stateAttempting attemptState = iota
	stateSuccess
	stateFailed
)

func (s attemptState) String() string {
	switch s {
	case stateAttempting:
		return "attempting"
	case stateSuccess:
		return "success"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// nextState decides the transition after attempt number `attempt` finished
// with err.
func nextState(ctx context.Context, err error, attempt, maxRetries int) attemptState {
	switch {
	case err == nil:
		return stateSuccess
	case ctx.Err() != nil:
		return stateFailed
	case attempt >= maxRetries:
		return stateFailed
	default:
		return stateAttempting
	}
}

// Generate sends message and returns the trimmed reply text.
//
// Non-2xx statuses, transport errors and malformed bodies are all retried,
// with a fixed delay between attempts. When every attempt fails the error is
// a *RequestFailedError. Cancelling ctx aborts the in-flight attempt and the
// wait between attempts.
func (c *Client) Generate(ctx context.Context, message string, opts ...GenerateOption) (string, error) {
	o := resolveOptions(opts)

	body, err := c.adapter.BuildRequest(message, o.temperature, c.model)
	if err != nil {
		return "", err
	}

	for attempt := 1; ; attempt++ {
		text, err := c.attempt(ctx, body)

		switch nextState(ctx, err, attempt, o.maxRetries) {
		case stateSuccess:
			return text, nil
		case stateFailed:
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			if config.Debug {
				config.DebugLog.Printf("[Provider] LLM request failed (attempt %d/%d), giving up: %v", attempt, o.maxRetries, err)
			}
			return "", &RequestFailedError{Attempts: attempt, Err: err}
		}

		if config.Debug {
			config.DebugLog.Printf("[Provider] LLM error (attempt %d/%d): %v", attempt, o.maxRetries, err)
		}

		if err := sleepContext(ctx, c.retryDelay); err != nil {
			return "", &RequestFailedError{Attempts: attempt, Err: err}
		}
	}
}

// GenerateJSON calls Generate and decodes the reply as JSON. A decode failure
// is an *InvalidJSONError and is not retried, since the network call itself
// succeeded.
func (c *Client) GenerateJSON(ctx context.Context, message string, opts ...GenerateOption) (any, error) {
	text, err := c.Generate(ctx, message, opts...)
	if err != nil {
		return nil, err
	}
	return ParseJSONResponse(text)
}

// ParseJSONResponse decodes a model reply. A surrounding ```json fence is
// removed first.
func ParseJSONResponse(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &v); err != nil {
		return nil, &InvalidJSONError{Response: text, Err: err}
	}
	return v, nil
}

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return trimmed
	}

	inner := trimmed[3 : len(trimmed)-3]
	// Drop the info string ("json") on the opening fence line
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		inner = inner[nl+1:]
	} else {
		inner = strings.TrimPrefix(inner, "json")
	}
	return strings.TrimSpace(inner)
}

// attempt performs one POST. The response body is closed on every path.
func (c *Client) attempt(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create LLM request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed reading LLM response: %w", err)
	}

	if config.Debug {
		config.DebugLog.Printf("[Provider] POST %s status=%d raw_response=%s", c.apiURL, resp.StatusCode, truncate(string(raw), 400))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 400)}
	}

	text, err := c.adapter.ParseResponse(raw)
	if err != nil {
		return "", err
	}

	if config.Debug {
		config.DebugLog.Printf("[Provider] parsed_response=%s", truncate(text, 400))
	}

	return text, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
