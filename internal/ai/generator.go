package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/david/voluntrack/internal/metrics"
)

// Generator is the text-generation provider: prompt in, untrusted text out.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrCircuitOpen is returned while the provider breaker is open.
var ErrCircuitOpen = errors.New("text generation temporarily unavailable")

type GuardConfig struct {
	Name             string
	RatePerSecond    float64
	Burst            int
	FailureThreshold uint32
	Cooldown         time.Duration
}

// Guarded wraps a Generator with a rate limiter and a circuit breaker so a
// failing provider fails fast instead of holding every search for the full timeout.
type Guarded struct {
	next    Generator
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
}

func NewGuarded(next Generator, cfg GuardConfig, logger *zap.Logger) *Guarded {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "text-generation"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerStateChanges.WithLabelValues(from.String(), to.String()).Inc()
			logger.Warn("generator circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// Cancellation by the caller does not count as a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &Guarded{
		next:    next,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (g *Guarded) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	text, err := g.breaker.Execute(func() (string, error) {
		return g.next.GenerateText(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return text, err
}

// State reports the breaker state, e.g. "closed" or "open".
func (g *Guarded) State() string {
	return g.breaker.State().String()
}
