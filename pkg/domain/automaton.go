package domain

import "context"

// StateID identifies a state in the rule table. The engine treats it as an
// opaque index: it carries no semantics beyond equality and map lookup.
type StateID int

// InitialState is entered implicitly by the first Advance on an automaton
// that has not been entered explicitly.
const InitialState StateID = 0

// View is the read-only surface handed to guard predicates.
//
// Guards in augmented mode may be evaluated for several sibling rules
// before any branch is chosen, so a guard must not rely on evaluation
// order or mutate anything through the view.
type View interface {
	// State returns the current state of the automaton.
	State() StateID

	// Registers returns the automaton's current register bag. Guards must
	// treat it as read-only.
	Registers() Registers
}

// Handle is the mutable surface handed to actions and enter/exit
// callbacks. Actions may mutate the registers in place or swap the whole
// bag via SetRegisters.
type Handle interface {
	View

	// SetRegisters replaces the automaton's register bag.
	SetRegisters(Registers)
}

// Guard decides whether a rule is eligible from the current state.
// A nil Guard on a Rule is treated as always true.
//
// An error aborts the advance in deterministic mode; in augmented mode it
// only marks that branch ineligible.
type Guard func(ctx context.Context, v View) (bool, error)

// Action is a side-effecting callback attached to a rule or to a state's
// enter/exit pair. Externally visible effects (I/O, global mutation) are
// not undone by the engine when a speculative branch loses; defer them
// until a commit has actually won.
type Action func(ctx context.Context, h Handle) error

// Rule is one candidate transition out of a state. Rules for a state form
// an ordered sequence: the order is the tie-break in deterministic mode
// and the admission order for concurrent fan-out.
type Rule struct {
	// Target is the state this rule transitions to. It must be a key of
	// the rule table (a terminal state is declared with an empty rule
	// list).
	Target StateID

	// Guard gates the rule. Nil means always eligible.
	Guard Guard

	// Action runs after the transition to Target completes.
	Action Action

	// Final marks the rule as a commit point in augmented mode: a branch
	// that takes it declares its path final and races for the round's
	// commit slot. Ignored in deterministic mode.
	Final bool
}

// RuleTable maps each state to its ordered candidate rules. It is bound at
// construction and must not be mutated afterwards; the engine shares it
// across all speculative clones without locking.
type RuleTable map[StateID][]Rule

// ActionPair holds the optional enter/exit callbacks of a state.
type ActionPair struct {
	OnEnter Action
	OnExit  Action
}

// ActionTable maps states to their enter/exit callbacks. Like the
// RuleTable it is immutable after construction.
type ActionTable map[StateID]ActionPair

// Snapshot is an immutable (state, registers) capture used for rollback.
type Snapshot struct {
	State     StateID
	Registers Registers
}
