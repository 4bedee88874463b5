package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"

	"github.com/farolabs/faro/internal/domain"
)

const (
	DefaultMaxTokens      = 512
	DefaultTemperature    = 0.2
	DefaultConcurrency    = 1
	DefaultAcquireTimeout = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 120 * time.Second
)

// completionAPI is the slice of the OpenAI client used for chat completions.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds the completion endpoint settings. Zero values fall back to
// the package defaults.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float32
	Concurrency    int64
	AcquireTimeout time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Client calls an OpenAI-compatible chat-completion endpoint. A weighted
// semaphore bounds in-flight requests; waiting longer than the acquire
// timeout surfaces as ErrCompletionBusy instead of queueing forever.
type Client struct {
	api            completionAPI
	model          string
	maxTokens      int
	temperature    float32
	sem            *semaphore.Weighted
	acquireTimeout time.Duration
}

func New(cfg Config) *Client {
	applyDefaults(&cfg)

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: cfg.ReadTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		},
	}

	return newClientWithAPI(openai.NewClientWithConfig(clientCfg), cfg)
}

func newClientWithAPI(api completionAPI, cfg Config) *Client {
	applyDefaults(&cfg)
	return &Client{
		api:            api,
		model:          cfg.Model,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		sem:            semaphore.NewWeighted(cfg.Concurrency),
		acquireTimeout: cfg.AcquireTimeout,
	}
}

func applyDefaults(cfg *Config) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultAcquireTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
}

// Complete sends a system and user message pair and returns the generated
// text. Errors are classified: ErrCompletionBusy when the concurrency gate
// cannot be acquired in time, ErrCompletionTimeout on transport timeouts,
// ErrMalformedCompletion when the response carries no text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, c.acquireTimeout)
	defer cancel()
	if err := c.sem.Acquire(acquireCtx, 1); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCompletionBusy, err)
	}
	defer c.sem.Release(1)

	log.Printf("llm: completion request model=%s max_tokens=%d", c.model, c.maxTokens)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrCompletionTimeout, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", domain.ErrMalformedCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
