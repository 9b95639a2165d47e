package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/sukalov/lyricforge/internal/logger"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "anthropic/claude-3-haiku"

	systemPrompt = "You are a helpful songwriting assistant. Return only the requested content without explanations or formatting."
)

var (
	ErrMissingAPIKey = errors.New("ai: missing API key")
	ErrEmptyResponse = errors.New("ai: empty response")
)

// Client talks to an OpenAI-compatible chat completion endpoint
type Client struct {
	client oai.Client
	cfg    config
}

type config struct {
	baseURL        string
	model          string
	appTitle       string
	referer        string
	maxTokens      int64
	temperature    float64
	retries        uint64
	initialBackoff time.Duration
	timeout        time.Duration
}

// Option is a functional option for Client
type Option func(*config)

// WithBaseURL overrides the OpenRouter base URL
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithModel selects the model id sent with every request
func WithModel(model string) Option {
	return func(c *config) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAppTitle sets the X-Title and HTTP-Referer attribution headers
func WithAppTitle(title, referer string) Option {
	return func(c *config) {
		c.appTitle = title
		c.referer = referer
	}
}

func WithMaxTokens(n int64) Option {
	return func(c *config) {
		c.maxTokens = n
	}
}

func WithTemperature(t float64) Option {
	return func(c *config) {
		c.temperature = t
	}
}

// WithRetries sets how many times a failed call is retried
func WithRetries(n uint64) Option {
	return func(c *config) {
		c.retries = n
	}
}

// WithInitialBackoff sets the first retry delay; later delays grow by 1.6x
func WithInitialBackoff(d time.Duration) Option {
	return func(c *config) {
		c.initialBackoff = d
	}
}

// WithTimeout sets a per-request HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a client. An empty apiKey yields ErrMissingAPIKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := config{
		baseURL:        DefaultBaseURL,
		model:          DefaultModel,
		maxTokens:      500,
		temperature:    0.8,
		retries:        4,
		initialBackoff: 400 * time.Millisecond,
	}
	for _, o := range opts {
		o(&cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.baseURL),
		option.WithMaxRetries(0),
	}
	if cfg.appTitle != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Title", cfg.appTitle))
	}
	if cfg.referer != "" {
		reqOpts = append(reqOpts, option.WithHeader("HTTP-Referer", cfg.referer))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Client{client: oai.NewClient(reqOpts...), cfg: cfg}, nil
}

// Model returns the configured model id
func (c *Client) Model() string {
	return c.cfg.model
}

// Complete sends prompt, prefixed by the lyric context when present, and
// returns the trimmed reply. Transport errors, 429 and 5xx responses are
// retried with exponential backoff; other 4xx responses fail at once.
func (c *Client) Complete(ctx context.Context, prompt, lyricContext string) (string, error) {
	user := prompt
	if strings.TrimSpace(lyricContext) != "" {
		user = "Context: " + lyricContext + "\n\n" + prompt
	}

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.cfg.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(user),
		},
		MaxTokens:   oai.Int(c.cfg.maxTokens),
		Temperature: oai.Float(c.cfg.temperature),
	}

	var content string
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if ctx.Err() != nil || !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return backoff.Permanent(ErrEmptyResponse)
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug(fmt.Sprintf("ai: attempt %d failed, retrying in %s\nError: %v", attempt, wait, err))
	}

	if err := backoff.RetryNotify(operation, c.newBackOff(ctx), notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, ErrEmptyResponse) {
			return "", err
		}
		return "", fmt.Errorf("ai: chat completion: %w", err)
	}

	logger.Debug(fmt.Sprintf("ai: completion from %s after %d attempt(s), %d chars", c.cfg.model, attempt, len(content)))
	return content, nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.initialBackoff
	b.Multiplier = 1.6
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, c.cfg.retries), ctx)
}

func retryable(err error) bool {
	var apiErr *oai.Error
	if !errors.As(err, &apiErr) {
		return true
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
}
