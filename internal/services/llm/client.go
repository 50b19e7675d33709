package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subseg/internal/services"
)

const (
	defaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	defaultTimeout  = 60 * time.Second
	defaultAttempts = 3
	healthSystem    = "Reply with a JSON object only."
	healthUser      = `Return {"ok":true}`
)

// Config holds the endpoint, credentials and limits for one client.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	RetryAttempts  int
}

// Client talks to an OpenAI-compatible chat completion endpoint and always
// requests JSON object output.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	referer  string
	title    string
	http     *http.Client
	retry    backoff
	usage    usageCounter
}

// Option adjusts a Client after construction.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetryMaxAttempts caps the number of requests made per completion.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) { c.retry.attempts = attempts }
}

// WithRetryBackoff sets the first backoff step and the ceiling.
func WithRetryBackoff(base, ceiling time.Duration) Option {
	return func(c *Client) {
		c.retry.base = base
		c.retry.ceiling = ceiling
	}
}

// WithSleeper swaps the wait between attempts. Tests use it to avoid real sleeps.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Client) { c.retry.sleep = sleep }
}

// NewClient builds a client from cfg. Empty fields fall back to defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	endpoint := strings.TrimSpace(cfg.BaseURL)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		model:    strings.TrimSpace(cfg.Model),
		referer:  strings.TrimSpace(cfg.Referer),
		title:    strings.TrimSpace(cfg.Title),
		http:     &http.Client{Timeout: timeout},
		retry:    newBackoff(attempts),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model reports the model identifier sent with each request.
func (c *Client) Model() string {
	return c.model
}

// CompleteJSON sends the prompts and returns the model's JSON payload
// untouched. Errors match services.ErrSemanticService; when every attempt
// failed on a retryable condition they also match services.ErrTransient.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return "", services.Wrap(services.ErrValidation, "llm", "complete", "system prompt required", nil)
	case userPrompt == "":
		return "", services.Wrap(services.ErrValidation, "llm", "complete", "user prompt required", nil)
	case c.apiKey == "":
		return "", services.Wrap(services.ErrConfiguration, "llm", "complete", "api key required", nil)
	}
	content, err := c.complete(ctx, "llm complete", systemPrompt, userPrompt)
	if err != nil {
		return "", services.Wrap(services.ErrSemanticService, "llm", "complete", "chat completion failed", err)
	}
	return content, nil
}

// HealthCheck makes one small round trip to confirm the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.apiKey == "" {
		return services.Wrap(services.ErrConfiguration, "llm", "health", "api key required", nil)
	}
	content, err := c.complete(ctx, "llm health", healthSystem, healthUser)
	if err != nil {
		return services.Wrap(services.ErrSemanticService, "llm", "health", "ping failed", err)
	}
	var reply struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &reply); err != nil {
		return services.Wrap(services.ErrSemanticService, "llm", "health", "parse payload", err)
	}
	if !reply.OK {
		return services.Wrap(services.ErrSemanticService, "llm", "health", "unexpected response", nil)
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type messageBody struct {
	Content   string `json:"content"`
	Refusal   string `json:"refusal"`
	ToolCalls []struct {
		Function struct {
			Arguments string `json:"arguments"`
		} `json:"function"`
	} `json:"tool_calls"`
}

// text returns the first usable payload: content, then tool call arguments.
func (m messageBody) text() string {
	if s := strings.TrimSpace(m.Content); s != "" {
		return s
	}
	for _, call := range m.ToolCalls {
		if s := strings.TrimSpace(call.Function.Arguments); s != "" {
			return s
		}
	}
	return ""
}

type choice struct {
	Message      messageBody `json:"message"`
	Delta        messageBody `json:"delta"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"`
}

type completion struct {
	Choices []choice `json:"choices"`
	Usage   *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// payload scans every choice. Some providers answer in the streaming
// (delta) or legacy (text) shape even for non-streamed requests.
func (r completion) payload() (text, finish, refusal string) {
	for _, ch := range r.Choices {
		if finish == "" {
			finish = strings.TrimSpace(ch.FinishReason)
		}
		if refusal == "" {
			refusal = strings.TrimSpace(ch.Message.Refusal + ch.Delta.Refusal)
		}
		for _, candidate := range []string{ch.Message.text(), ch.Delta.text(), strings.TrimSpace(ch.Text)} {
			if candidate != "" {
				return candidate, finish, refusal
			}
		}
	}
	return "", finish, refusal
}

type statusError struct {
	code       int
	body       string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.code, e.body)
}

type emptyContentError struct {
	op      string
	finish  string
	refusal string
	snippet string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.op, e.finish, e.refusal, e.snippet)
}

// complete runs the request under the retry policy and returns the payload.
func (c *Client) complete(ctx context.Context, op, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("%s: encode request: %w", op, err)
	}
	var text string
	err = c.retry.run(ctx, op, func(attempt int) error {
		if attempt > 1 {
			c.usage.retry()
		}
		resp, raw, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		payload, finish, refusal := resp.payload()
		if payload != "" {
			text = payload
			return nil
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%s: empty choices", op)
		}
		return &emptyContentError{op: op, finish: finish, refusal: refusal, snippet: snippet(string(raw))}
	})
	return text, err
}

// post performs a single HTTP exchange.
func (c *Client) post(ctx context.Context, body []byte) (completion, []byte, error) {
	var out completion
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return out, nil, fmt.Errorf("llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	c.usage.request()
	resp, err := c.http.Do(req)
	if err != nil {
		return out, nil, fmt.Errorf("llm request (timeout %s): %w", c.http.Timeout, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, nil, fmt.Errorf("llm request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		wait, _ := retryAfter(resp.Header.Get("Retry-After"))
		return out, raw, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw)), retryAfter: wait}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, raw, fmt.Errorf("llm request: decode response: %w", err)
	}
	if out.Error != nil {
		return out, raw, fmt.Errorf("llm request: api error: %s", strings.TrimSpace(out.Error.Message))
	}
	if out.Usage != nil {
		c.usage.tokens(out.Usage.PromptTokens, out.Usage.CompletionTokens)
	}
	return out, raw, nil
}
