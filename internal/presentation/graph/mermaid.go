package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/bramble/pkg/adapters/tabledef"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	VisitedStates []int
	CurrentState  int
	HasCurrent    bool
}

// GenerateMermaid produces a Mermaid flowchart from a table definition.
// Semantic styling:
//   - State 0 (implicit initial): ((Circle))
//   - Terminal states (no rules): [[Subroutine]]
//   - Default: [Rectangle]
//
// Guard names label the edges; final rules use a thick arrow. Overlay
// styles (Visited/Current) are applied if provided.
func GenerateMermaid(def *tabledef.TableDef, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	states := append([]tabledef.StateDef(nil), def.States...)
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })

	for _, s := range states {
		opener, closer := "[", "]"
		switch {
		case s.ID == 0:
			opener, closer = "((", "))"
		case len(s.Rules) == 0:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    s%d%s\"%d\"%s\n", s.ID, opener, s.ID, closer))

		for _, r := range s.Rules {
			arrow := "-->"
			if r.Final {
				arrow = "==>"
			}
			if r.Guard != "" {
				safeGuard := strings.ReplaceAll(r.Guard, "\"", "'")
				if r.Final {
					arrow = fmt.Sprintf("== \"%s\" ==>", safeGuard)
				} else {
					arrow = fmt.Sprintf("-- \"%s\" -->", safeGuard)
				}
			}
			sb.WriteString(fmt.Sprintf("    s%d %s s%d\n", s.ID, arrow, r.Target))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for high contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[int]bool)
		for _, id := range overlay.VisitedStates {
			if !visitedSet[id] {
				visitedSet[id] = true
				sb.WriteString(fmt.Sprintf("    class s%d visited;\n", id))
			}
		}
		if overlay.HasCurrent {
			sb.WriteString(fmt.Sprintf("    class s%d current;\n", overlay.CurrentState))
		}
	}

	return sb.String()
}
