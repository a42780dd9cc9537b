package runtime

import (
	"fmt"
	"sort"

	"github.com/aretw0/bramble/pkg/domain"
)

// ValidateTables checks rule table integrity: every rule target must be a
// key of the table. Terminal states are declared with an empty (or nil)
// rule list.
func ValidateTables(rules domain.RuleTable) error {
	if len(rules) == 0 {
		return fmt.Errorf("rule table is empty")
	}
	for state, seq := range rules {
		for i, r := range seq {
			if _, ok := rules[r.Target]; !ok {
				return fmt.Errorf("state %d rule %d: target %d: %w", state, i, r.Target, domain.ErrUnknownState)
			}
		}
	}
	return nil
}

// UnreachableStates crawls the table from start and returns the states no
// rule path can reach, sorted. Unreachable states are legal (Enter can
// jump anywhere) but usually indicate an authoring mistake.
func UnreachableStates(rules domain.RuleTable, start domain.StateID) []domain.StateID {
	visited := make(map[domain.StateID]bool, len(rules))
	queue := []domain.StateID{start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if visited[s] {
			continue
		}
		visited[s] = true
		for _, r := range rules[s] {
			if !visited[r.Target] {
				queue = append(queue, r.Target)
			}
		}
	}

	var unreachable []domain.StateID
	for s := range rules {
		if !visited[s] {
			unreachable = append(unreachable, s)
		}
	}
	sort.Slice(unreachable, func(i, j int) bool { return unreachable[i] < unreachable[j] })
	return unreachable
}
