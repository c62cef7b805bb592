// Package gemini implements the inference capability behind the Guardian
// adapter: a thin service over the official genai client that adds the
// cross-cutting concerns the adapter deliberately does not own — retry
// with backoff, a circuit breaker, a provider-side RPS guard, and
// deduplication of identical in-flight requests.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
	genai "google.golang.org/genai"

	"github.com/guardianhq/guardian/config"
	"github.com/guardianhq/guardian/metrics"
)

// ErrEmptyResponse is returned when the backend answers without any
// usable candidate text.
var ErrEmptyResponse = errors.New("gemini: empty response from model")

// generator is the raw model call. It exists so tests can stub the
// genai transport without a network.
type generator func(ctx context.Context, prompt, systemPrompt string) (string, error)

// Service dispatches prompts to the Gemini API. It implements the
// adapter's Service interface.
type Service struct {
	model    string
	timeout  time.Duration
	generate generator
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	group    singleflight.Group
	retry    *config.RetryConfig
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New creates a Service for the configured model. It fails when the
// genai client cannot be constructed, which is fatal for the caller.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Service, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	s := newService(cfg, logger, m)
	s.generate = func(ctx context.Context, prompt, systemPrompt string) (string, error) {
		gcfg := &genai.GenerateContentConfig{}
		if systemPrompt != "" {
			gcfg.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: systemPrompt}},
			}
		}

		resp, err := cli.Models.GenerateContent(ctx, s.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			gcfg,
		)
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", ErrEmptyResponse
		}
		return resp.Candidates[0].Content.Parts[0].Text, nil
	}

	return s, nil
}

// newService wires everything except the transport.
func newService(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *Service {
	s := &Service{
		model:   cfg.AI.Model,
		timeout: cfg.Gemini.Timeout,
		retry:   cfg.Gemini.Retry,
		logger:  logger,
		metrics: m,
	}

	if cfg.Gemini.RPS > 0 {
		burst := cfg.Gemini.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Gemini.RPS), burst)
	}

	bc := cfg.Gemini.CircuitBreaker
	if bc == nil {
		bc = config.DefaultConfig().Gemini.CircuitBreaker
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if to == gobreaker.StateOpen && m != nil {
				m.BreakerTrips.Inc()
			}
		},
	})

	return s
}

// Model returns the configured model identifier.
func (s *Service) Model() string {
	return s.model
}

// Generate dispatches a prompt and returns the model's text. Identical
// concurrent requests are collapsed into a single backend call; each
// distinct call goes through the RPS guard, the circuit breaker, and
// the retry loop in that order.
func (s *Service) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	key := fmt.Sprintf("%s\x00%s\x00%s", s.model, systemPrompt, prompt)

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		return s.dispatch(ctx, prompt, systemPrompt)
	})
	if shared {
		s.logger.Debug("deduplicated identical in-flight request")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// GenerateSync is the blocking entry point. It shares the full dispatch
// path with Generate under a background context.
func (s *Service) GenerateSync(prompt, systemPrompt string) (string, error) {
	return s.Generate(context.Background(), prompt, systemPrompt)
}

// dispatch performs one rate-guarded, breaker-protected, retried call.
func (s *Service) dispatch(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	attempts := 1
	delay := time.Duration(0)
	if s.retry != nil {
		attempts += s.retry.MaxRetries
		delay = s.retry.InitialDelay
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay = s.nextDelay(delay)
		}

		v, err := s.breaker.Execute(func() (interface{}, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return s.generate(ctx, prompt, systemPrompt)
		})
		if err == nil {
			return v.(string), nil
		}
		lastErr = err

		// An open breaker will not close between attempts of the same
		// call; retrying against it only burns time.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}

		s.logger.Debug("generate attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return "", lastErr
}

func (s *Service) nextDelay(delay time.Duration) time.Duration {
	if s.retry == nil || s.retry.Multiplier <= 0 {
		return delay
	}
	next := time.Duration(float64(delay) * s.retry.Multiplier)
	if s.retry.MaxDelay > 0 && next > s.retry.MaxDelay {
		next = s.retry.MaxDelay
	}
	return next
}

// credentialEnvVars are the environment variables the genai client
// accepts as API credentials, in the order it consults them.
var credentialEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// Accounts enumerates the credential sources currently available. It is
// consulted only by the CLI boot check, not by the dispatch path.
func (s *Service) Accounts() []string {
	var accounts []string
	for _, name := range credentialEnvVars {
		if os.Getenv(name) != "" {
			accounts = append(accounts, name)
		}
	}
	return accounts
}
