package bramble_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/bramble"
	"github.com/aretw0/bramble/pkg/domain"
)

func flagGuard(key string) domain.Guard {
	return func(ctx context.Context, v domain.View) (bool, error) {
		val, _ := v.Registers().(domain.MapRegisters)[key].(bool)
		return val, nil
	}
}

func TestDeterministicStep(t *testing.T) {
	rules := domain.RuleTable{
		0: {{Target: 1, Guard: flagGuard("go")}},
		1: nil,
	}
	eng, err := bramble.New(rules, nil,
		bramble.WithRegisters(domain.MapRegisters{"go": true}),
	)
	require.NoError(t, err)
	require.False(t, eng.Augmented())

	res, err := eng.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCommitted, res.Outcome)
	require.Equal(t, domain.StateID(1), res.State)
	require.Equal(t, domain.StateID(1), eng.State())
}

func TestDeterministicStepNoEligible(t *testing.T) {
	rules := domain.RuleTable{
		0: {{Target: 1, Guard: flagGuard("go")}},
		1: nil,
	}
	eng, err := bramble.New(rules, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eng.Enter(ctx, 0))

	res, err := eng.Step(ctx)
	require.ErrorIs(t, err, domain.ErrNoEligibleTransition)
	require.Equal(t, domain.OutcomeExhausted, res.Outcome)
	require.Equal(t, domain.StateID(0), eng.State())
}

func TestAugmentedStep(t *testing.T) {
	rules := domain.RuleTable{
		0: {
			{Target: 1}, // dead end
			{Target: 2}, // commits below
		},
		1: {{Target: 3, Guard: flagGuard("never-set")}},
		2: {{Target: 4, Final: true}},
		3: nil,
		4: nil,
	}
	eng, err := bramble.New(rules, nil,
		bramble.WithAugmented(true),
		bramble.WithMaxOutstanding(2),
	)
	require.NoError(t, err)
	require.True(t, eng.Augmented())

	res, err := eng.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCommitted, res.Outcome)
	require.Equal(t, domain.StateID(4), res.State)
}

func TestFacadeSnapshots(t *testing.T) {
	rules := domain.RuleTable{
		0: {{Target: 1}},
		1: nil,
	}
	eng, err := bramble.New(rules, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eng.Enter(ctx, 0))

	eng.Hold()
	require.Equal(t, 1, eng.SnapshotDepth())

	require.NoError(t, eng.Advance(ctx))
	require.Equal(t, domain.StateID(1), eng.State())

	require.NoError(t, eng.Retrieve(ctx))
	require.Equal(t, domain.StateID(0), eng.State())
	require.Equal(t, 0, eng.SnapshotDepth())
}

func TestNewRejectsBrokenTable(t *testing.T) {
	_, err := bramble.New(domain.RuleTable{
		0: {{Target: 99}},
	}, nil)
	require.ErrorIs(t, err, domain.ErrUnknownState)
}

func TestUnreachableReporting(t *testing.T) {
	rules := domain.RuleTable{
		0: {{Target: 1}},
		1: nil,
		7: nil,
	}
	eng, err := bramble.New(rules, nil)
	require.NoError(t, err)
	require.Equal(t, []domain.StateID{7}, eng.Unreachable())
}
