package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/bramble/internal/runtime"
	"github.com/aretw0/bramble/pkg/domain"
)

// recorder collects callback firings in order.
type recorder struct {
	calls []string
}

func (r *recorder) action(name string) domain.Action {
	return func(ctx context.Context, h domain.Handle) error {
		r.calls = append(r.calls, name)
		return nil
	}
}

func keyGuard(key string) domain.Guard {
	return func(ctx context.Context, v domain.View) (bool, error) {
		val, _ := v.Registers().(domain.MapRegisters)[key].(bool)
		return val, nil
	}
}

func TestEnterSameStateRunsBothCallbacks(t *testing.T) {
	rec := &recorder{}
	rules := domain.RuleTable{0: nil}
	actions := domain.ActionTable{
		0: {OnEnter: rec.action("enter0"), OnExit: rec.action("exit0")},
	}

	a, err := runtime.NewAutomaton(rules, actions, domain.NewMapRegisters())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, 0))
	require.NoError(t, a.Enter(ctx, 0))

	// First Enter is on an uninitialized automaton: no exit. The second
	// re-enters the same state and runs exit then enter again (reset).
	require.Equal(t, []string{"enter0", "exit0", "enter0"}, rec.calls)
}

func TestEnterUnknownState(t *testing.T) {
	a, err := runtime.NewAutomaton(domain.RuleTable{0: nil}, nil, nil)
	require.NoError(t, err)

	err = a.Enter(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrUnknownState)
}

func TestAdvanceTakesFirstEligibleRule(t *testing.T) {
	always := domain.Guard(func(ctx context.Context, v domain.View) (bool, error) {
		return true, nil
	})

	build := func(first, second domain.StateID) *runtime.Automaton {
		rules := domain.RuleTable{
			0: {
				{Target: first, Guard: always},
				{Target: second, Guard: always},
			},
			1: nil,
			2: nil,
		}
		a, err := runtime.NewAutomaton(rules, nil, domain.NewMapRegisters())
		require.NoError(t, err)
		return a
	}

	ctx := context.Background()

	a := build(1, 2)
	require.NoError(t, a.Advance(ctx))
	require.Equal(t, domain.StateID(1), a.State())

	// Swapping two rules with both guards true changes which one is taken.
	b := build(2, 1)
	require.NoError(t, b.Advance(ctx))
	require.Equal(t, domain.StateID(2), b.State())
}

func TestAdvanceNoEligibleTransition(t *testing.T) {
	rules := domain.RuleTable{
		0: {{Target: 1, Guard: keyGuard("g")}},
		1: nil,
	}
	a, err := runtime.NewAutomaton(rules, nil, domain.NewMapRegisters())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, 0))

	err = a.Advance(ctx)
	require.ErrorIs(t, err, domain.ErrNoEligibleTransition)
	require.Equal(t, domain.StateID(0), a.State())
}

func TestAdvanceImplicitInitialState(t *testing.T) {
	rec := &recorder{}
	rules := domain.RuleTable{
		0: {{Target: 1}},
		1: nil,
	}
	actions := domain.ActionTable{
		0: {OnEnter: rec.action("enter0")},
		1: {OnEnter: rec.action("enter1")},
	}
	a, err := runtime.NewAutomaton(rules, actions, domain.NewMapRegisters())
	require.NoError(t, err)

	require.NoError(t, a.Advance(context.Background()))
	require.Equal(t, []string{"enter0", "enter1"}, rec.calls)
	require.Equal(t, domain.StateID(1), a.State())
}

// Reference scenario: intro/greetings/bye. With g true the automaton
// cycles 0->1->2->1; flipping g false drives 1->2->3.
func TestAdvanceGreetingsScenario(t *testing.T) {
	rec := &recorder{}
	rules := domain.RuleTable{
		0: {{Target: 1, Guard: keyGuard("g")}},
		1: {{Target: 2}},
		2: {
			{Target: 1, Guard: keyGuard("g")},
			{Target: 3},
		},
		3: nil,
	}
	actions := domain.ActionTable{
		1: {OnEnter: rec.action("intro")},
		2: {OnEnter: rec.action("greetings")},
		3: {OnEnter: rec.action("bye")},
	}

	regs := domain.MapRegisters{"g": true}
	a, err := runtime.NewAutomaton(rules, actions, regs)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Advance(ctx)) // 0 -> 1
	require.NoError(t, a.Advance(ctx)) // 1 -> 2
	require.NoError(t, a.Advance(ctx)) // 2 -> 1 (g true)
	require.Equal(t, domain.StateID(1), a.State())

	regs["g"] = false
	require.NoError(t, a.Advance(ctx)) // 1 -> 2
	require.NoError(t, a.Advance(ctx)) // 2 -> 3 (g false)
	require.Equal(t, domain.StateID(3), a.State())

	require.Equal(t, []string{"intro", "greetings", "intro", "greetings", "bye"}, rec.calls)
}

func TestHoldRetrieveRestoresSnapshot(t *testing.T) {
	rules := domain.RuleTable{
		0: {{Target: 1}},
		1: nil,
	}
	regs := domain.MapRegisters{"n": 1, "nested": map[string]any{"k": "v"}}
	a, err := runtime.NewAutomaton(rules, nil, regs)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, 0))

	a.Hold()

	// Mutate state and registers after the hold.
	require.NoError(t, a.Advance(ctx))
	live := a.Registers().(domain.MapRegisters)
	live["n"] = 99
	live["nested"].(map[string]any)["k"] = "mutated"
	require.Equal(t, domain.StateID(1), a.State())

	require.NoError(t, a.Retrieve(ctx))
	require.Equal(t, domain.StateID(0), a.State())

	restored := a.Registers().(domain.MapRegisters)
	require.Equal(t, 1, restored["n"])
	require.Equal(t, "v", restored["nested"].(map[string]any)["k"])
}

func TestRetrieveRunsCallbacks(t *testing.T) {
	rec := &recorder{}
	rules := domain.RuleTable{
		0: {{Target: 1}},
		1: nil,
	}
	actions := domain.ActionTable{
		0: {OnEnter: rec.action("enter0")},
		1: {OnExit: rec.action("exit1")},
	}
	a, err := runtime.NewAutomaton(rules, actions, domain.NewMapRegisters())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, 0))
	a.Hold()
	require.NoError(t, a.Advance(ctx))

	rec.calls = nil
	require.NoError(t, a.Retrieve(ctx))

	// The automaton really leaves state 1, so its exit runs, then the
	// restored state's enter.
	require.Equal(t, []string{"exit1", "enter0"}, rec.calls)
}

func TestRetrieveEmptyStack(t *testing.T) {
	a, err := runtime.NewAutomaton(domain.RuleTable{0: nil}, nil, nil)
	require.NoError(t, err)

	require.ErrorIs(t, a.Retrieve(context.Background()), domain.ErrEmptySnapshotStack)
	require.ErrorIs(t, a.Commit(), domain.ErrEmptySnapshotStack)
}

func TestCommitDiscardsFallback(t *testing.T) {
	rules := domain.RuleTable{
		0: {{Target: 1}},
		1: nil,
	}
	a, err := runtime.NewAutomaton(rules, nil, domain.NewMapRegisters())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, 0))
	a.Hold()
	require.Equal(t, 1, a.StackDepth())

	require.NoError(t, a.Advance(ctx))
	require.NoError(t, a.Commit())
	require.Equal(t, 0, a.StackDepth())

	// The fallback is gone; the current path stands.
	require.Equal(t, domain.StateID(1), a.State())
	require.ErrorIs(t, a.Retrieve(ctx), domain.ErrEmptySnapshotStack)
}

func TestAdvanceGuardErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	rules := domain.RuleTable{
		0: {{
			Target: 1,
			Guard: func(ctx context.Context, v domain.View) (bool, error) {
				return false, boom
			},
		}},
		1: nil,
	}
	a, err := runtime.NewAutomaton(rules, nil, domain.NewMapRegisters())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, 0))

	err = a.Advance(ctx)
	require.ErrorIs(t, err, boom)

	var cbErr *domain.CallbackError
	require.ErrorAs(t, err, &cbErr)
	require.Equal(t, "guard", cbErr.Phase)
	require.Equal(t, domain.StateID(0), cbErr.State)
}

func TestValidateTables(t *testing.T) {
	err := runtime.ValidateTables(domain.RuleTable{})
	require.Error(t, err)

	err = runtime.ValidateTables(domain.RuleTable{
		0: {{Target: 7}},
	})
	require.ErrorIs(t, err, domain.ErrUnknownState)

	err = runtime.ValidateTables(domain.RuleTable{
		0: {{Target: 1}},
		1: nil,
	})
	require.NoError(t, err)
}

func TestUnreachableStates(t *testing.T) {
	rules := domain.RuleTable{
		0: {{Target: 1}},
		1: nil,
		2: {{Target: 1}},
		3: nil,
	}
	require.Equal(t, []domain.StateID{2, 3}, runtime.UnreachableStates(rules, 0))
	require.Empty(t, runtime.UnreachableStates(domain.RuleTable{0: nil}, 0))
}
