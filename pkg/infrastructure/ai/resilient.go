package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Narrator turns a prompt into a recommendation text
type Narrator interface {
	GenerateExplanation(ctx context.Context, prompt string) (string, error)
}

// ErrCircuitOpen is returned while the narrator is considered down
var ErrCircuitOpen = errors.New("narrator circuit breaker is open")

const (
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = time.Second
	DefaultFailureThreshold = 3
	DefaultBreakerTimeout   = time.Minute
)

// ResilientNarrator retries a narrator with linear back-off and stops calling
// it after repeated failures until the breaker timeout passes
type ResilientNarrator struct {
	next       Narrator
	log        *slog.Logger
	maxRetries int
	retryDelay time.Duration
	breaker    *gobreaker.CircuitBreaker
}

type ResilientOption func(*resilientSettings)

type resilientSettings struct {
	maxRetries       int
	retryDelay       time.Duration
	failureThreshold uint32
	breakerTimeout   time.Duration
}

// WithRetries sets the attempt count and the base delay; attempt n waits n*delay
func WithRetries(maxRetries int, delay time.Duration) ResilientOption {
	return func(s *resilientSettings) {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
		if delay >= 0 {
			s.retryDelay = delay
		}
	}
}

// WithBreaker sets how many consecutive failed calls open the breaker and how
// long it stays open
func WithBreaker(failureThreshold uint32, timeout time.Duration) ResilientOption {
	return func(s *resilientSettings) {
		if failureThreshold > 0 {
			s.failureThreshold = failureThreshold
		}
		if timeout > 0 {
			s.breakerTimeout = timeout
		}
	}
}

// NewResilientNarrator wraps a narrator
func NewResilientNarrator(name string, next Narrator, logger *slog.Logger, opts ...ResilientOption) *ResilientNarrator {
	s := resilientSettings{
		maxRetries:       DefaultMaxRetries,
		retryDelay:       DefaultRetryDelay,
		failureThreshold: DefaultFailureThreshold,
		breakerTimeout:   DefaultBreakerTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}

	log := logger.With(slog.String("component", "narrator"), slog.String("provider", name))
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &ResilientNarrator{
		next:       next,
		log:        log,
		maxRetries: s.maxRetries,
		retryDelay: s.retryDelay,
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// GenerateExplanation calls the wrapped narrator through retries and the breaker
func (r *ResilientNarrator) GenerateExplanation(ctx context.Context, prompt string) (string, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.withRetries(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		r.log.Warn("narrator unavailable", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// State reports the breaker state
func (r *ResilientNarrator) State() gobreaker.State {
	return r.breaker.State()
}

func (r *ResilientNarrator) withRetries(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		text, err := r.next.GenerateExplanation(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		r.log.Warn("narrator attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", r.maxRetries),
			slog.String("error", err.Error()))

		if attempt == r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.retryDelay * time.Duration(attempt)):
		}
	}

	r.log.Error("narrator failed", slog.Int("attempts", r.maxRetries), slog.String("error", lastErr.Error()))
	return "", fmt.Errorf("narrator failed after %d attempts: %w", r.maxRetries, lastErr)
}
