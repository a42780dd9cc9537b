package domain

// Outcome classifies how an automaton step or a speculative branch
// settled. Running is the only non-terminal value; a worker moves from
// Running to exactly one of the terminal outcomes.
type Outcome int

const (
	// OutcomeRunning means the branch is still exploring.
	OutcomeRunning Outcome = iota

	// OutcomeCommitted means the branch (or round) won the commit race and
	// its final state/registers were adopted.
	OutcomeCommitted

	// OutcomeExhausted means no rule was eligible and no local snapshot
	// remained to retreat to.
	OutcomeExhausted

	// OutcomeCancelled means the branch stopped because a sibling
	// committed first, or the driver's context was cancelled.
	OutcomeCancelled

	// OutcomeRetreated means the round exhausted but the automaton rolled
	// back to its most recent snapshot; the driver may keep going.
	OutcomeRetreated
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeCommitted:
		return "committed"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeRetreated:
		return "retreated"
	default:
		return "unknown"
	}
}

// Terminal reports whether the outcome is final for a branch.
func (o Outcome) Terminal() bool {
	return o != OutcomeRunning
}

// Result is what an exploration round returns to the driver: the settled
// outcome plus the automaton's state and registers after the round.
type Result struct {
	Outcome   Outcome
	State     StateID
	Registers Registers
}
