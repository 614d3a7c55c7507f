package catalog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// breakerState is the circuit breaker state.
type breakerState int

const (
	// breakerClosed allows requests to pass through.
	breakerClosed breakerState = iota

	// breakerOpen rejects requests immediately.
	breakerOpen

	// breakerHalfOpen allows a few test requests to check recovery.
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig holds circuit breaker tuning for the catalog client.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening.
	MaxFailures int

	// ResetTimeout is how long to wait before probing with half-open calls.
	ResetTimeout time.Duration

	// HalfOpenMaxCalls is the number of probe calls allowed while half-open.
	HalfOpenMaxCalls int
}

// DefaultBreakerConfig returns the default circuit breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:      5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// breaker shields the catalog service from hammering while it is down.
// Rejected calls surface as lookup failures, which the resolver degrades
// per item.
type breaker struct {
	mu              sync.Mutex
	state           breakerState
	failureCount    int
	successCount    int
	halfOpenCalls   int
	lastFailureTime time.Time
	config          BreakerConfig
	logger          zerolog.Logger
}

func newBreaker(config BreakerConfig, logger zerolog.Logger) *breaker {
	return &breaker{
		state:  breakerClosed,
		config: config,
		logger: logger,
	}
}

// allow reports whether a request may proceed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true

	case breakerOpen:
		if time.Since(b.lastFailureTime) >= b.config.ResetTimeout {
			b.transition(breakerHalfOpen)
			b.halfOpenCalls = 1
			return true
		}
		return false

	case breakerHalfOpen:
		if b.halfOpenCalls < b.config.HalfOpenMaxCalls {
			b.halfOpenCalls++
			return true
		}
		return false
	}
	return false
}

// recordSuccess notes a successful call, closing the breaker after enough
// half-open probes succeed.
func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		b.failureCount = 0

	case breakerHalfOpen:
		b.successCount++
		if b.successCount >= b.config.HalfOpenMaxCalls {
			b.transition(breakerClosed)
		}
	}
}

// recordFailure notes a failed call, opening the breaker when the threshold
// is hit or immediately while half-open.
func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureTime = time.Now()

	switch b.state {
	case breakerClosed:
		b.failureCount++
		if b.failureCount >= b.config.MaxFailures {
			b.transition(breakerOpen)
		}

	case breakerHalfOpen:
		b.transition(breakerOpen)
	}
}

func (b *breaker) transition(to breakerState) {
	if b.state == to {
		return
	}
	b.logger.Info().
		Str("from", b.state.String()).
		Str("to", to.String()).
		Msg("Circuit breaker state change")
	b.state = to
	b.failureCount = 0
	b.successCount = 0
	b.halfOpenCalls = 0
}
