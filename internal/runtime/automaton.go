package runtime

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/aretw0/bramble/internal/logging"
	"github.com/aretw0/bramble/pkg/domain"
)

// Automaton is the deterministic core: current state, current registers,
// shared immutable table references, and a private snapshot stack.
//
// Speculative clones get their own Automaton via fork; only the tables are
// shared, so no locking is needed on state or registers.
type Automaton struct {
	rules   domain.RuleTable
	actions domain.ActionTable

	state   domain.StateID
	regs    domain.Registers
	stack   []domain.Snapshot
	started bool

	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures an Automaton.
type Option func(*Automaton)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Automaton) {
		a.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Automaton) {
		a.hooks = hooks
	}
}

// NewAutomaton binds the tables and the initial register bag. The tables
// must not be mutated afterwards. The automaton starts uninitialized: the
// first Advance implicitly enters domain.InitialState.
func NewAutomaton(rules domain.RuleTable, actions domain.ActionTable, regs domain.Registers, opts ...Option) (*Automaton, error) {
	if err := ValidateTables(rules); err != nil {
		return nil, err
	}
	a := &Automaton{
		rules:   rules,
		actions: actions,
		regs:    regs,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// State returns the current state. Meaningless until the automaton has
// been entered (see Started).
func (a *Automaton) State() domain.StateID {
	return a.state
}

// Registers returns the current register bag.
func (a *Automaton) Registers() domain.Registers {
	return a.regs
}

// SetRegisters replaces the register bag.
func (a *Automaton) SetRegisters(regs domain.Registers) {
	a.regs = regs
}

// Started reports whether the automaton has entered a state yet.
func (a *Automaton) Started() bool {
	return a.started
}

// StackDepth returns the number of snapshots currently held.
func (a *Automaton) StackDepth() int {
	return len(a.stack)
}

// Unreachable returns the states no rule path can reach from the initial
// state.
func (a *Automaton) Unreachable() []domain.StateID {
	return UnreachableStates(a.rules, domain.InitialState)
}

// Enter transitions to s, running the current state's exit callback (if
// the automaton is initialized) and the new state's enter callback.
//
// Re-entering the current state is legal and re-runs both callbacks; hosts
// use this deliberately as a reset.
func (a *Automaton) Enter(ctx context.Context, s domain.StateID) error {
	if _, ok := a.rules[s]; !ok {
		return fmt.Errorf("enter state %d: %w", s, domain.ErrUnknownState)
	}
	if a.started {
		if pair, ok := a.actions[a.state]; ok && pair.OnExit != nil {
			if err := pair.OnExit(ctx, a); err != nil {
				return &domain.CallbackError{State: a.state, Phase: "exit", Err: err}
			}
		}
		a.emitState(ctx, domain.EventStateLeave, a.state)
	}
	a.state = s
	a.started = true
	if pair, ok := a.actions[s]; ok && pair.OnEnter != nil {
		if err := pair.OnEnter(ctx, a); err != nil {
			return &domain.CallbackError{State: s, Phase: "enter", Err: err}
		}
	}
	a.emitState(ctx, domain.EventStateEnter, s)
	a.logger.DebugContext(ctx, "entered state", "state", int(s))
	return nil
}

// Advance scans the current state's rules in order and takes the first one
// whose guard passes. If no guard passes it returns
// domain.ErrNoEligibleTransition and leaves the state unchanged.
//
// On an uninitialized automaton, Advance first enters domain.InitialState.
func (a *Automaton) Advance(ctx context.Context) error {
	if !a.started {
		if err := a.Enter(ctx, domain.InitialState); err != nil {
			return err
		}
	}
	rules := a.rules[a.state]
	for i := range rules {
		ok, err := a.evalGuard(ctx, rules[i].Guard)
		if err != nil {
			return &domain.CallbackError{State: a.state, Phase: "guard", Err: err}
		}
		if !ok {
			continue
		}
		return a.take(ctx, &rules[i])
	}
	return fmt.Errorf("advance from state %d: %w", a.state, domain.ErrNoEligibleTransition)
}

// take performs a selected rule: transition (unless the target is the
// current state) followed by the rule's action.
func (a *Automaton) take(ctx context.Context, r *domain.Rule) error {
	if r.Target != a.state {
		if err := a.Enter(ctx, r.Target); err != nil {
			return err
		}
	}
	if r.Action != nil {
		if err := r.Action(ctx, a); err != nil {
			return &domain.CallbackError{State: a.state, Phase: "action", Err: err}
		}
	}
	return nil
}

// Hold pushes a snapshot of (current state, deep copy of registers) onto
// the snapshot stack, establishing a fallback point.
func (a *Automaton) Hold() {
	a.stack = append(a.stack, domain.Snapshot{
		State:     a.state,
		Registers: cloneRegisters(a.regs),
	})
}

// Retrieve pops the most recent snapshot, restores its registers, and
// re-enters its state (exit/enter callbacks run as usual, since the
// automaton is really leaving wherever the abandoned attempt left it).
func (a *Automaton) Retrieve(ctx context.Context) error {
	n := len(a.stack)
	if n == 0 {
		return domain.ErrEmptySnapshotStack
	}
	snap := a.stack[n-1]
	a.stack = a.stack[:n-1]
	a.regs = snap.Registers
	return a.Enter(ctx, snap.State)
}

// Commit discards the most recent snapshot without restoring it: the
// current path no longer needs that fallback point.
func (a *Automaton) Commit() error {
	n := len(a.stack)
	if n == 0 {
		return domain.ErrEmptySnapshotStack
	}
	a.stack = a.stack[:n-1]
	return nil
}

// fork deep-copies (state, registers) into an independent child whose
// snapshot stack is seeded with one snapshot of the fork point, so the
// child can retreat to where it branched off. Tables, logger, and hooks
// are shared.
func (a *Automaton) fork() *Automaton {
	child := &Automaton{
		rules:   a.rules,
		actions: a.actions,
		state:   a.state,
		regs:    cloneRegisters(a.regs),
		started: a.started,
		logger:  a.logger,
		hooks:   a.hooks,
	}
	child.stack = []domain.Snapshot{{
		State:     child.state,
		Registers: cloneRegisters(child.regs),
	}}
	return child
}

// adopt copies a winning branch's final (state, registers) into this
// automaton without running callbacks; the winner already ran them inside
// its own clone.
func (a *Automaton) adopt(snap domain.Snapshot) {
	a.state = snap.State
	a.regs = snap.Registers
	a.started = true
}

// snapshot captures the current (state, registers) without touching the
// stack.
func (a *Automaton) snapshot() domain.Snapshot {
	return domain.Snapshot{State: a.state, Registers: cloneRegisters(a.regs)}
}

func (a *Automaton) evalGuard(ctx context.Context, g domain.Guard) (bool, error) {
	if g == nil {
		return true, nil
	}
	return g(ctx, a)
}

func (a *Automaton) emitState(ctx context.Context, kind domain.EventType, s domain.StateID) {
	var hook func(context.Context, *domain.StateEvent)
	switch kind {
	case domain.EventStateEnter:
		hook = a.hooks.OnStateEnter
	case domain.EventStateLeave:
		hook = a.hooks.OnStateLeave
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.StateEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: kind},
		State:     s,
	})
}

func cloneRegisters(regs domain.Registers) domain.Registers {
	if regs == nil {
		return nil
	}
	return regs.Clone()
}
