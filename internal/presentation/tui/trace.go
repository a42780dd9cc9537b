package tui

import (
	"fmt"

	"github.com/muesli/termenv"

	"github.com/aretw0/bramble/pkg/domain"
)

// Tracer prints colored engine activity to the terminal, degrading to
// plain text when the profile does not support color.
type Tracer struct {
	profile termenv.Profile
}

// NewTracer detects the terminal color profile.
func NewTracer() *Tracer {
	return &Tracer{profile: termenv.ColorProfile()}
}

// Step prints the settled result of one evaluation pass.
func (t *Tracer) Step(n int, res domain.Result) {
	label := termenv.String(res.Outcome.String()).Foreground(t.outcomeColor(res.Outcome)).String()
	fmt.Printf("step %d: %s -> state %d\n", n, label, int(res.State))
}

// Enter prints a state entry.
func (t *Tracer) Enter(s domain.StateID) {
	arrow := termenv.String("enter").Foreground(t.profile.Color("#818cf8")).String()
	fmt.Printf("  %s state %d\n", arrow, int(s))
}

// Fail prints a terminal failure.
func (t *Tracer) Fail(err error) {
	label := termenv.String("error").Foreground(t.profile.Color("#fb7185")).String()
	fmt.Printf("%s: %v\n", label, err)
}

func (t *Tracer) outcomeColor(o domain.Outcome) termenv.Color {
	switch o {
	case domain.OutcomeCommitted:
		return t.profile.Color("#34d399")
	case domain.OutcomeRetreated:
		return t.profile.Color("#fbbf24")
	case domain.OutcomeExhausted, domain.OutcomeCancelled:
		return t.profile.Color("#fb7185")
	default:
		return t.profile.Color("#a78bfa")
	}
}
