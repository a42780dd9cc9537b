package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/bramble/internal/presentation/graph"
	"github.com/aretw0/bramble/pkg/adapters/tabledef"
)

func TestGenerateMermaid(t *testing.T) {
	def := &tabledef.TableDef{
		States: []tabledef.StateDef{
			{ID: 2},
			{ID: 0, Rules: []tabledef.RuleDef{
				{Target: 1, Guard: "g"},
			}},
			{ID: 1, Rules: []tabledef.RuleDef{
				{Target: 2, Final: true},
			}},
		},
	}

	out := graph.GenerateMermaid(def, nil)

	require.True(t, strings.HasPrefix(out, "graph TD\n"))
	// Initial state renders as a circle, terminal as a subroutine; guards
	// label edges and final rules use a thick arrow.
	require.Contains(t, out, `s0(("0"))`)
	require.Contains(t, out, `s2[["2"]]`)
	require.Contains(t, out, `s0 -- "g" --> s1`)
	require.Contains(t, out, `s1 ==> s2`)

	// States render sorted by ID regardless of declaration order.
	require.Less(t, strings.Index(out, `s0((`), strings.Index(out, `s1[`))
}

func TestGenerateMermaidOverlay(t *testing.T) {
	def := &tabledef.TableDef{
		States: []tabledef.StateDef{
			{ID: 0, Rules: []tabledef.RuleDef{{Target: 1}}},
			{ID: 1},
		},
	}

	out := graph.GenerateMermaid(def, &graph.Overlay{
		VisitedStates: []int{0, 0, 1},
		CurrentState:  1,
		HasCurrent:    true,
	})

	require.Equal(t, 1, strings.Count(out, "class s0 visited;"))
	require.Contains(t, out, "class s1 current;")
}
