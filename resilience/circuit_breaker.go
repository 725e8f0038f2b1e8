package resilience

import (
	"errors"
	"sync"
	"time"
)

// State is where a CircuitBreaker stands.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{StateClosed: "closed", StateOpen: "open", StateHalfOpen: "half-open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// ErrCircuitOpen rejects a call without running it.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig sets when a breaker trips and how it recovers.
// Zero numbers take the DefaultCircuitBreakerConfig values.
type CircuitBreakerConfig struct {
	Name        string
	MaxFailures int           // consecutive failures that open the circuit
	Cooldown    time.Duration // time spent open before probing
	Probes      int           // half-open successes needed to close

	// IsFailure picks the errors that count against the dependency.
	// Nil counts every error.
	IsFailure func(error) bool
	// OnStateChange runs under the breaker lock and must not call back into it.
	OnStateChange func(name string, from, to State)
}

// DefaultCircuitBreakerConfig trips after 5 failures and probes after 30s.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{Name: name, MaxFailures: 5, Cooldown: 30 * time.Second, Probes: 1}
}

// CircuitBreaker stops calling a dependency that keeps failing. Once
// Cooldown has passed it admits Probes trial calls: all of them must
// succeed to close the circuit, and one failure opens it again.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu      sync.Mutex
	state   State
	streak  int
	since   time.Time
	trials  int // half-open calls admitted
	settled int // half-open calls that succeeded
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCircuitBreakerConfig(cfg.Name)
	cfg.MaxFailures = positive(cfg.MaxFailures, def.MaxFailures)
	cfg.Probes = positive(cfg.Probes, def.Probes)
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// Execute runs fn if the breaker admits it and books the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	ok := cb.allow()
	cb.mu.Unlock()
	if !ok {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.cfg.IsFailure(err) {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
	return err
}

// State reports the current state, moving to half-open if the cooldown is over.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

// Failures is the current run of consecutive failures.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.streak
}

// Reset forces the breaker closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.streak = 0
	cb.transition(StateClosed)
}

func (cb *CircuitBreaker) allow() bool {
	cb.refresh()
	switch cb.state {
	case StateOpen:
		return false
	case StateHalfOpen:
		if cb.trials >= cb.cfg.Probes {
			return false
		}
		cb.trials++
	}
	return true
}

func (cb *CircuitBreaker) onSuccess() {
	if cb.state != StateHalfOpen {
		cb.streak = 0
		return
	}
	cb.settled++
	if cb.settled >= cb.cfg.Probes {
		cb.streak = 0
		cb.transition(StateClosed)
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.streak++
	if cb.state == StateHalfOpen || (cb.state == StateClosed && cb.streak >= cb.cfg.MaxFailures) {
		cb.since = cb.now()
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) refresh() {
	if cb.state == StateOpen && cb.now().Sub(cb.since) >= cb.cfg.Cooldown {
		cb.transition(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.trials, cb.settled = 0, 0
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
