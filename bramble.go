package bramble

import (
	"context"
	"log/slog"

	"github.com/aretw0/bramble/internal/logging"
	"github.com/aretw0/bramble/internal/runtime"
	"github.com/aretw0/bramble/pkg/domain"
)

// Version is the library version, set at build time via ldflags.
var Version = "dev"

// DefaultMaxOutstanding is the admission bound used when none is
// configured.
const DefaultMaxOutstanding = runtime.DefaultMaxOutstanding

// Engine is the high-level entry point for the Bramble library.
// It wraps the internal runtime and provides a simplified API for hosts.
type Engine struct {
	auto      *runtime.Automaton
	coord     *runtime.Coordinator
	augmented bool
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*settings)

type settings struct {
	registers      domain.Registers
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	augmented      bool
	maxOutstanding int64
}

// WithRegisters sets the initial register bag. Default is an empty
// domain.MapRegisters.
func WithRegisters(regs domain.Registers) Option {
	return func(s *settings) {
		s.registers = regs
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}

// WithLogger sets the structured logger. Default is a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithAugmented selects the exploration mode: false (default) is
// deterministic first-match, true enables speculative concurrent
// exploration.
func WithAugmented(augmented bool) Option {
	return func(s *settings) {
		s.augmented = augmented
	}
}

// WithMaxOutstanding bounds how many speculative workers run at once
// across an exploration round and its nested sub-rounds.
func WithMaxOutstanding(n int64) Option {
	return func(s *settings) {
		s.maxOutstanding = n
	}
}

// New creates an Engine bound to the given tables. The tables are treated
// as immutable for the engine's lifetime; actions may be nil when no state
// carries enter/exit callbacks.
func New(rules domain.RuleTable, actions domain.ActionTable, opts ...Option) (*Engine, error) {
	s := settings{
		registers: domain.NewMapRegisters(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	auto, err := runtime.NewAutomaton(rules, actions, s.registers,
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.hooks),
	)
	if err != nil {
		return nil, err
	}

	return &Engine{
		auto:      auto,
		coord:     runtime.NewCoordinator(s.maxOutstanding, s.logger),
		augmented: s.augmented,
		logger:    s.logger,
	}, nil
}

// Augmented reports the configured exploration mode.
func (e *Engine) Augmented() bool {
	return e.augmented
}

// State returns the current state.
func (e *Engine) State() domain.StateID {
	return e.auto.State()
}

// Registers returns the current register bag.
func (e *Engine) Registers() domain.Registers {
	return e.auto.Registers()
}

// Enter transitions to s, running exit and enter callbacks. Entering the
// current state again is legal and re-runs both callbacks.
func (e *Engine) Enter(ctx context.Context, s domain.StateID) error {
	return e.auto.Enter(ctx, s)
}

// Advance performs one deterministic evaluation pass: the first rule whose
// guard passes is taken. Available in both modes.
func (e *Engine) Advance(ctx context.Context) error {
	return e.auto.Advance(ctx)
}

// Explore runs one augmented exploration round from the current state,
// regardless of the configured mode.
func (e *Engine) Explore(ctx context.Context) (domain.Result, error) {
	return e.coord.Explore(ctx, e.auto)
}

// Step performs one evaluation pass in the configured mode: a concurrent
// exploration round when augmented, a deterministic advance otherwise.
func (e *Engine) Step(ctx context.Context) (domain.Result, error) {
	if e.augmented {
		return e.coord.Explore(ctx, e.auto)
	}
	if err := e.auto.Advance(ctx); err != nil {
		return domain.Result{
			Outcome:   domain.OutcomeExhausted,
			State:     e.auto.State(),
			Registers: e.auto.Registers(),
		}, err
	}
	return domain.Result{
		Outcome:   domain.OutcomeCommitted,
		State:     e.auto.State(),
		Registers: e.auto.Registers(),
	}, nil
}

// Hold pushes a snapshot of the current (state, registers) as a fallback
// point.
func (e *Engine) Hold() {
	e.auto.Hold()
}

// Retrieve rolls back to the most recent snapshot, restoring its
// registers and re-entering its state.
func (e *Engine) Retrieve(ctx context.Context) error {
	return e.auto.Retrieve(ctx)
}

// Commit discards the most recent snapshot, keeping the current path.
func (e *Engine) Commit() error {
	return e.auto.Commit()
}

// SnapshotDepth returns how many fallback points are currently held.
func (e *Engine) SnapshotDepth() int {
	return e.auto.StackDepth()
}

// Unreachable returns the states no rule path can reach from the initial
// state. Unreachable states are legal but usually an authoring mistake.
func (e *Engine) Unreachable() []domain.StateID {
	return e.auto.Unreachable()
}
