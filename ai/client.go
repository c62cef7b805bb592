// Package ai provides the client-side adapter between Guardian and a
// remote model inference backend. It normalizes prompts and conversation
// history into the backend's expected shape, enforces a client-side
// request-rate ceiling, and post-processes free-text model output into a
// structured reasoning/response pair.
//
// The adapter performs no retries and no fallback: a failed dispatch is
// logged and propagated to the caller unchanged in meaning. Retry policy
// belongs to the Service implementation, not this layer.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guardianhq/guardian/config"
	"github.com/guardianhq/guardian/errors"
	"github.com/guardianhq/guardian/gemini"
	"github.com/guardianhq/guardian/metrics"
)

// reasoningSuffix asks the backend to emit the two labeled sections
// that ExtractReasoning splits on.
const reasoningSuffix = `

Please structure your response as:
1. REASONING: Explain your thought process and decision-making
2. RESPONSE: Provide your final answer or recommendation
`

// Client mediates calls from the application to the inference backend.
// A single instance serves concurrent callers; the rate limiter is the
// only shared mutable state and the only point where a call may block.
type Client struct {
	cfg     *config.Config
	service Service
	limiter *RateLimiter
	tokens  *TokenCounter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClient creates a client and initializes its inference capability.
// Initialization failure is fatal: it is logged and returned, and no
// degraded client is ever handed back.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Client, error) {
	svc, err := gemini.New(ctx, cfg, logger, m)
	if err != nil {
		logger.Error("failed to initialize inference service",
			zap.String("model", cfg.AI.Model),
			zap.Error(err),
		)
		return nil, errors.NewInitError("failed to initialize inference service", err)
	}

	logger.Info("initialized inference service", zap.String("model", cfg.AI.Model))
	return NewClientWithService(cfg, logger, m, svc), nil
}

// NewClientWithService creates a client around a pre-built service.
// Used by tests and by callers that manage the capability themselves.
func NewClientWithService(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, svc Service) *Client {
	c := &Client{
		cfg:     cfg,
		service: svc,
		limiter: NewRateLimiter(cfg.AI.RateLimit),
		logger:  logger,
		metrics: m,
	}

	if cfg.AI.MaxContextTokens > 0 {
		tc, err := NewTokenCounter(cfg.AI.Model)
		if err != nil {
			logger.Debug("token estimation disabled", zap.Error(err))
		} else {
			c.tokens = tc
		}
	}

	return c
}

// Generate sends a prompt to the backend and returns its text unchanged.
// The optional history is rendered into a preamble ahead of the prompt;
// the rate limiter is applied once, immediately before dispatch.
func (c *Client) Generate(ctx context.Context, prompt, systemPrompt string, history []any) (string, error) {
	requestID := uuid.New().String()

	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	c.observeWait(time.Since(waitStart))

	combined := c.buildPrompt(requestID, prompt, history)

	start := time.Now()
	text, err := c.service.Generate(ctx, combined, c.systemPrompt(systemPrompt))
	c.observeRequest("generate", start, err)
	if err != nil {
		return "", c.dispatchError(requestID, err)
	}
	return text, nil
}

// GenerateSync is the blocking form of Generate. Prompt construction is
// shared with Generate: for the same inputs both paths hand the backend
// an identical combined prompt, only the calling convention differs.
func (c *Client) GenerateSync(prompt, systemPrompt string, history []any) (string, error) {
	requestID := uuid.New().String()

	waitStart := time.Now()
	c.limiter.WaitSync()
	c.observeWait(time.Since(waitStart))

	combined := c.buildPrompt(requestID, prompt, history)

	start := time.Now()
	text, err := c.service.GenerateSync(combined, c.systemPrompt(systemPrompt))
	c.observeRequest("generate_sync", start, err)
	if err != nil {
		return "", c.dispatchError(requestID, err)
	}
	return text, nil
}

// GenerateWithReasoning asks the backend for an explicit explanation
// alongside its answer and splits the output into a structured Reply.
// A malformed reply is not an error: the full text is returned as the
// response with a sentinel in the reasoning field.
func (c *Client) GenerateWithReasoning(ctx context.Context, prompt, systemPrompt string, history []any) (Reply, error) {
	enhanced := prompt + reasoningSuffix

	text, err := c.Generate(ctx, enhanced, systemPrompt, history)
	if err != nil {
		return Reply{}, err
	}

	return ExtractReasoning(text), nil
}

// buildPrompt is the single prompt-construction path for all entry
// points. It also logs an advisory token estimate when available.
func (c *Client) buildPrompt(requestID, prompt string, history []any) string {
	combined := BuildPrompt(prompt, history)

	if c.tokens != nil {
		estimated := c.tokens.Count(combined)
		c.logger.Debug("combined prompt built",
			zap.String("request_id", requestID),
			zap.Int("estimated_tokens", estimated),
		)
		if limit := c.cfg.AI.MaxContextTokens; limit > 0 && estimated > limit {
			c.logger.Warn("prompt exceeds configured context window",
				zap.String("request_id", requestID),
				zap.Int("estimated_tokens", estimated),
				zap.Int("max_context_tokens", limit),
			)
		}
	}

	return combined
}

// systemPrompt applies the configured default when the caller supplies none.
func (c *Client) systemPrompt(override string) string {
	if override != "" {
		return override
	}
	return c.cfg.AI.SystemPrompt
}

// dispatchError logs a backend failure and wraps it for the caller.
// The wrap is for logging and typing only: the cause stays reachable
// through Unwrap and the text result is never silently emptied.
func (c *Client) dispatchError(requestID string, err error) error {
	gerr := errors.NewProviderError(requestID, fmt.Sprintf("inference backend error (model %s)", c.cfg.AI.Model), err)
	errors.LogError(c.logger, gerr, requestID)
	if c.metrics != nil {
		c.metrics.ErrorsTotal.WithLabelValues(string(errors.ProviderError)).Inc()
	}
	return gerr
}

func (c *Client) observeWait(d time.Duration) {
	if c.metrics != nil {
		c.metrics.RateLimitWait.Observe(d.Seconds())
	}
}

func (c *Client) observeRequest(path string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RequestsTotal.WithLabelValues(path, status).Inc()
	c.metrics.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
}
