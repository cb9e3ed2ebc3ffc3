package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"

	"github.com/concierge/backend/internal/domain"
)

// ClientConfig holds limits for calls to the language model
type ClientConfig struct {
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	Timeout           time.Duration
}

// Client implements domain.Assistant on top of a langchaingo model
type Client struct {
	model       llms.Model
	rateLimiter *rate.Limiter
	maxRetries  int
	timeout     time.Duration
	backoff     func(attempt int) time.Duration
	logger      zerolog.Logger
}

// NewClient creates a new assistant client
func NewClient(model llms.Model, cfg ClientConfig, logger zerolog.Logger) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		model:       model,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries:  retries,
		timeout:     timeout,
		backoff:     exponentialBackoff,
		logger:      logger.With().Str("component", "llm").Logger(),
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt:
// 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// Respond asks the model for a structured answer to the request
func (c *Client) Respond(ctx context.Context, request domain.AssistantRequest) (*domain.ChatResponse, error) {
	systemPrompt, err := BuildSystemPrompt(request.Profile, request.Matches)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAssistantFailure, err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildUserPrompt(request.CurrentDate, request.Query)),
	}

	content, err := c.generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	response, err := MapToChatResponse(content)
	if err != nil {
		c.logger.Warn().Err(err).Msg("model returned malformed reply")
		return nil, err
	}

	c.logger.Debug().
		Int("matches", len(request.Matches)).
		Int("tags", len(response.DisplayTags)).
		Msg("assistant replied")

	return response, nil
}

// generate calls the model, retrying transient failures
func (c *Client) generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		content, err := c.generateOnce(ctx, messages)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrAssistantFailure, ctx.Err())
		}

		lastErr = err
		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("model request failed")

		if attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", domain.ErrAssistantFailure, ctx.Err())
		case <-time.After(c.backoff(attempt)):
		}
	}

	c.logger.Error().Err(lastErr).Int("attempts", c.maxRetries).Msg("all model retries failed")
	return "", fmt.Errorf("%w: %v", domain.ErrAssistantFailure, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, messages []llms.MessageContent) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(
		callCtx,
		messages,
		llms.WithJSONMode(),
		llms.WithTemperature(0),
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}
