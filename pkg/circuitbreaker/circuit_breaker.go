package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State represents the state of a circuit breaker
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker fails calls fast after maxFailures consecutive failures.
// Once timeout has elapsed a single probe call is let through; its outcome
// closes or re-opens the circuit.
type CircuitBreaker struct {
	name        string
	maxFailures uint32
	timeout     time.Duration
	now         func() time.Time
	logger      logrus.FieldLogger

	mu          sync.Mutex
	state       State
	failures    uint32
	openedAt    time.Time
	probeActive bool
}

func New(name string, maxFailures uint32, timeout time.Duration, logger logrus.FieldLogger) *CircuitBreaker {
	if maxFailures == 0 {
		maxFailures = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CircuitBreaker{
		name:        name,
		maxFailures: maxFailures,
		timeout:     timeout,
		now:         time.Now,
		logger:      logger,
	}
}

// Execute runs fn unless the circuit is open
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.acquire(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.timeout {
			return &CircuitBreakerError{Name: cb.name, State: cb.state}
		}
		cb.state = StateHalfOpen
		cb.probeActive = true
		cb.logger.WithFields(logrus.Fields{
			"circuit_breaker": cb.name,
			"state":           StateHalfOpen.String(),
		}).Info("Circuit breaker transitioned to half-open")
	case StateHalfOpen:
		if cb.probeActive {
			return &CircuitBreakerError{Name: cb.name, State: cb.state}
		}
		cb.probeActive = true
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probeActive = false

	if err == nil {
		if cb.state != StateClosed {
			cb.logger.WithField("circuit_breaker", cb.name).Info("Circuit breaker closed after successful probe")
		}
		cb.state = StateClosed
		cb.failures = 0
		return
	}

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		cb.openedAt = cb.now()
		cb.logger.WithFields(logrus.Fields{
			"circuit_breaker": cb.name,
			"failures":        cb.failures,
			"state":           StateOpen.String(),
		}).Warn("Circuit breaker opened due to failures")
	}
}

// State returns the current state without side effects
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// CircuitBreakerError is returned while the circuit rejects calls
type CircuitBreakerError struct {
	Name  string
	State State
}

func (e *CircuitBreakerError) Error() string {
	return fmt.Sprintf("circuit breaker '%s' is %s", e.Name, e.State)
}

func IsCircuitBreakerError(err error) bool {
	var cbErr *CircuitBreakerError
	return errors.As(err, &cbErr)
}
