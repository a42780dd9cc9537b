package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/bramble/pkg/domain"
)

func TestOutcomeString(t *testing.T) {
	cases := map[domain.Outcome]string{
		domain.OutcomeRunning:   "running",
		domain.OutcomeCommitted: "committed",
		domain.OutcomeExhausted: "exhausted",
		domain.OutcomeCancelled: "cancelled",
		domain.OutcomeRetreated: "retreated",
		domain.Outcome(99):      "unknown",
	}
	for outcome, want := range cases {
		require.Equal(t, want, outcome.String())
	}
}

func TestOutcomeTerminal(t *testing.T) {
	require.False(t, domain.OutcomeRunning.Terminal())
	require.True(t, domain.OutcomeCommitted.Terminal())
	require.True(t, domain.OutcomeExhausted.Terminal())
	require.True(t, domain.OutcomeCancelled.Terminal())
}
