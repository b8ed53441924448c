// Package scheduler decides when reconciliation passes run and guarantees
// that at most one pass runs at a time.
//
// Triggers fan in from several sources: startup, a periodic ticker,
// post-edit requests from the coalescer, and manual requests. A trigger
// arriving while a pass is in flight is coalesced into exactly one
// follow-up pass rather than a concurrent one.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/driftpad/driftpad/internal/reconciler"
)

// State is the scheduler's connectivity/activity state, and doubles as
// the user-facing tri-state sync indicator.
type State string

const (
	// StateIdle means the last pass completed and nothing is running.
	StateIdle State = "idle"
	// StateSyncing means a pass is in flight.
	StateSyncing State = "syncing"
	// StateOffline means the remote was unreachable on the last attempt;
	// the next trigger re-checks connectivity.
	StateOffline State = "offline"
)

// Runner executes one reconciliation pass. *reconciler.Reconciler
// satisfies it; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context) (reconciler.Summary, error)
}

// Pinger is the connectivity probe consulted before each pass.
// remote.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds scheduler configuration.
type Config struct {
	// Interval is the periodic pass cadence.
	Interval time.Duration

	// PingTimeout bounds the connectivity probe before each pass.
	PingTimeout time.Duration

	// OnState, if set, is invoked on every state transition. Called from
	// the scheduler goroutine; keep it fast.
	OnState func(State)

	// OnPass, if set, is invoked after every completed pass with its
	// summary. Not called for skipped (offline) passes.
	OnPass func(reconciler.Summary)

	// Logger for scheduler activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Interval:    30 * time.Second,
		PingTimeout: 3 * time.Second,
		Logger:      log.New(os.Stderr, "[sched] ", log.LstdFlags),
	}
}

// Scheduler serializes reconciliation passes.
type Scheduler struct {
	runner Runner
	pinger Pinger
	config *Config

	// requests is a single-slot mailbox. A send that finds the slot full
	// is dropped, which is exactly the "run once more after the current
	// pass" coalescing the pass loop needs.
	requests chan struct{}

	mu    sync.Mutex
	state State

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler. If config is nil, DefaultConfig is used.
func New(runner Runner, pinger Pinger, config *Config) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if pinger == nil {
		return nil, fmt.Errorf("pinger cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[sched] ", log.LstdFlags)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:   runner,
		pinger:   pinger,
		config:   config,
		requests: make(chan struct{}, 1),
		state:    StateIdle,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start launches the scheduling loop and triggers the startup pass.
// It returns immediately; use Stop for shutdown.
func (s *Scheduler) Start() {
	s.config.Logger.Println("Starting scheduler")

	s.Request() // startup pass

	s.wg.Add(1)
	go s.loop()
}

// Stop shuts the scheduler down and waits for any in-flight pass to
// finish. Passes are never cancelled mid-flight.
func (s *Scheduler) Stop() {
	s.config.Logger.Println("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
	s.config.Logger.Println("Scheduler stopped")
}

// Request asks for an out-of-band pass: post-edit settle, reconnect hint,
// or manual trigger. Safe to call from any goroutine. If a pass is
// already running, at most one follow-up pass is queued.
func (s *Scheduler) Request() {
	select {
	case s.requests <- struct{}{}:
	default:
	}
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	changed := s.state != st
	s.state = st
	s.mu.Unlock()

	if changed && s.config.OnState != nil {
		s.config.OnState(st)
	}
}

// loop is the single serialized execution lane. Because passes run inline
// here, two passes can never overlap, and any Request arriving meanwhile
// parks in the single-slot mailbox.
func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runPass()
		case <-s.requests:
			s.runPass()
		}
	}
}

// runPass checks connectivity, then executes one reconciliation pass.
func (s *Scheduler) runPass() {
	pingCtx, cancel := context.WithTimeout(s.ctx, s.config.PingTimeout)
	err := s.pinger.Ping(pingCtx)
	cancel()
	if err != nil {
		s.config.Logger.Printf("Remote unreachable, skipping pass: %v", err)
		s.setState(StateOffline)
		return
	}

	s.setState(StateSyncing)

	// The pass context is detached from cancel: Stop waits for an
	// in-flight pass instead of cancelling it.
	sum, err := s.runner.Run(context.WithoutCancel(s.ctx))
	if err != nil {
		// Pull-phase failures land here; the pass is retried on the
		// next trigger.
		s.config.Logger.Printf("Pass failed: %v", err)
		s.setState(StateOffline)
		return
	}

	if s.config.OnPass != nil {
		s.config.OnPass(sum)
	}
	s.setState(StateIdle)
}
