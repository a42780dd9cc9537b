/*
Package bramble is a labeled-state automaton engine whose transitions are
chosen by caller-supplied guard predicates and whose state changes trigger
caller-supplied enter/exit actions.

Two operating modes exist. In deterministic mode the first rule (in table
order) whose guard passes wins and there is exactly one active state at all
times. In augmented mode several rules may be eligible at once: the engine
forks an independent clone of (state, registers) per eligible rule, races
the clones concurrently, lets the first branch that commits win the round,
and cancels the rest cooperatively. A snapshot stack on every automaton
supports single-path backtracking (Hold / Retrieve / Commit) independent of
the concurrent machinery.

The engine owns no I/O and attaches no meaning to states or guards; table
authoring and the input loop that drives evaluation are the host's job.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/bramble"
		"github.com/aretw0/bramble/pkg/domain"
	)

	func main() {
		rules := domain.RuleTable{
			0: {{Target: 1, Guard: ready}},
			1: {{Target: 2, Final: true}},
			2: nil, // terminal
		}

		eng, err := bramble.New(rules, nil,
			bramble.WithAugmented(true),
			bramble.WithMaxOutstanding(4),
		)
		if err != nil {
			log.Fatal(err)
		}

		res, err := eng.Step(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("outcome=%s state=%d", res.Outcome, res.State)
	}

Guards receive a read-only view and must not mutate it; in augmented mode
sibling guards may all be evaluated before any branch is chosen. Actions
may mutate the registers, but must defer externally visible effects until
a commit has won: nothing a losing branch already did is undone by the
engine.
*/
package bramble
