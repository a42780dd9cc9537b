package runtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/aretw0/bramble/internal/logging"
	"github.com/aretw0/bramble/pkg/domain"
)

// DefaultMaxOutstanding is the admission bound used when the caller does
// not configure one.
const DefaultMaxOutstanding = 8

// Coordinator drives augmented (speculative) exploration: one worker per
// eligible rule at each branch point, first committer wins, siblings are
// cancelled cooperatively.
//
// A single weighted semaphore bounds how many workers run at once across a
// round and all its nested sub-rounds. A worker that blocks waiting for
// its own children releases its admission slot first, so the bound counts
// only actively running branches and cannot deadlock.
type Coordinator struct {
	sem    *semaphore.Weighted
	bound  int64
	logger *slog.Logger
}

// NewCoordinator creates a coordinator with the given admission bound.
// A bound <= 0 selects DefaultMaxOutstanding.
func NewCoordinator(maxOutstanding int64, logger *slog.Logger) *Coordinator {
	if maxOutstanding <= 0 {
		maxOutstanding = DefaultMaxOutstanding
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		sem:    semaphore.NewWeighted(maxOutstanding),
		bound:  maxOutstanding,
		logger: logger,
	}
}

// MaxOutstanding returns the configured admission bound.
func (c *Coordinator) MaxOutstanding() int64 {
	return c.bound
}

// round is the shared state of one exploration round: a write-once commit
// slot guarded by a mutex, plus the cooperative cancellation signal every
// worker checks at step boundaries.
type round struct {
	id     string
	cancel context.CancelFunc
	done   atomic.Bool
	mu     sync.Mutex
	winner *domain.Snapshot
}

// cancelled reports whether workers should stop: a sibling committed, or
// the driver's context ended.
func (r *round) cancelled(ctx context.Context) bool {
	return r.done.Load() || ctx.Err() != nil
}

// Explore runs one exploration round from the automaton's current state.
//
// On a winning commit the winner's final (state, registers) are copied
// into a and the result is Committed. If every branch exhausts, the
// automaton retreats to its most recent snapshot when one exists
// (Retreated); otherwise the round fails with domain.ErrNoViableBranch.
// An empty eligible set at the top level fails with
// domain.ErrNoEligibleTransition, leaving the automaton untouched.
func (c *Coordinator) Explore(ctx context.Context, a *Automaton) (domain.Result, error) {
	if !a.started {
		if err := a.Enter(ctx, domain.InitialState); err != nil {
			return resultOf(a, domain.OutcomeExhausted), err
		}
	}
	eligible := c.eligibleRules(ctx, a)
	if len(eligible) == 0 {
		return resultOf(a, domain.OutcomeExhausted),
			fmt.Errorf("explore from state %d: %w", a.state, domain.ErrNoEligibleTransition)
	}

	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rnd := &round{id: uuid.NewString(), cancel: cancel}

	c.logger.DebugContext(ctx, "exploration round started",
		"round_id", rnd.id, "state", int(a.state), "fan_out", len(eligible))

	out := c.fanOut(rctx, a, eligible, rnd, nil, 0)
	switch out {
	case domain.OutcomeCommitted:
		a.adopt(*rnd.winner)
		c.logger.DebugContext(ctx, "exploration round committed",
			"round_id", rnd.id, "state", int(a.state))
		return resultOf(a, domain.OutcomeCommitted), nil
	case domain.OutcomeExhausted:
		if a.StackDepth() > 0 {
			if err := a.Retrieve(ctx); err != nil {
				return resultOf(a, domain.OutcomeExhausted), err
			}
			return resultOf(a, domain.OutcomeRetreated), nil
		}
		return resultOf(a, domain.OutcomeExhausted),
			fmt.Errorf("explore from state %d: %w", a.state, domain.ErrNoViableBranch)
	default:
		return resultOf(a, domain.OutcomeCancelled), ctx.Err()
	}
}

// explore advances a speculative clone until it commits, exhausts, or is
// cancelled. release frees this worker's admission slot; it is called
// before blocking on a nested fan-out so waiting parents never count
// against the bound.
func (c *Coordinator) explore(ctx context.Context, a *Automaton, rnd *round, release func(), depth int) domain.Outcome {
	for {
		if rnd.cancelled(ctx) {
			return domain.OutcomeCancelled
		}
		if len(a.rules[a.state]) == 0 {
			// Terminal state: nothing leads out of it, so the branch
			// declares its path final.
			return c.tryCommit(ctx, rnd, a)
		}
		eligible := c.eligibleRules(ctx, a)
		if len(eligible) == 0 {
			return domain.OutcomeExhausted
		}
		if rnd.cancelled(ctx) {
			return domain.OutcomeCancelled
		}
		if len(eligible) == 1 {
			// No branch point: advance in place.
			r := eligible[0]
			if err := a.take(ctx, r); err != nil {
				a.logger.WarnContext(ctx, "branch aborted by callback",
					"round_id", rnd.id, "state", int(a.state), "err", err)
				return domain.OutcomeExhausted
			}
			if rnd.cancelled(ctx) {
				return domain.OutcomeCancelled
			}
			if r.Final {
				return c.tryCommit(ctx, rnd, a)
			}
			continue
		}
		return c.fanOut(ctx, a, eligible, rnd, release, depth)
	}
}

// fanOut launches one worker per eligible rule, admitting them in rule
// order under the semaphore, and aggregates their outcomes.
func (c *Coordinator) fanOut(ctx context.Context, parent *Automaton, eligible []*domain.Rule, rnd *round, release func(), depth int) domain.Outcome {
	if release != nil {
		release()
	}

	results := make(chan domain.Outcome, len(eligible))
	launched := 0
	for _, r := range eligible {
		// Acquiring before spawning preserves rule order as admission
		// order. Acquire only fails when the round context ends.
		if err := c.sem.Acquire(ctx, 1); err != nil {
			break
		}
		launched++
		go c.runWorker(ctx, parent, r, rnd, depth, results)
	}

	committed := false
	for i := 0; i < launched; i++ {
		if <-results == domain.OutcomeCommitted {
			committed = true
		}
	}
	switch {
	case committed:
		return domain.OutcomeCommitted
	case rnd.cancelled(ctx):
		return domain.OutcomeCancelled
	default:
		return domain.OutcomeExhausted
	}
}

// runWorker owns one admission slot for the lifetime of one branch.
func (c *Coordinator) runWorker(ctx context.Context, parent *Automaton, r *domain.Rule, rnd *round, depth int, results chan<- domain.Outcome) {
	release := sync.OnceFunc(func() { c.sem.Release(1) })
	defer release()

	from := parent.state
	c.emitBranch(ctx, parent, domain.EventBranchSpawn, rnd, from, r.Target, domain.OutcomeRunning, depth)
	out := c.runBranch(ctx, parent, r, rnd, release, depth)
	c.emitBranch(ctx, parent, domain.EventBranchSettle, rnd, from, r.Target, out, depth)
	results <- out
}

func (c *Coordinator) runBranch(ctx context.Context, parent *Automaton, r *domain.Rule, rnd *round, release func(), depth int) domain.Outcome {
	if rnd.cancelled(ctx) {
		return domain.OutcomeCancelled
	}
	child := parent.fork()
	if err := child.take(ctx, r); err != nil {
		child.logger.WarnContext(ctx, "branch aborted by callback",
			"round_id", rnd.id, "state", int(child.state), "err", err)
		return domain.OutcomeExhausted
	}
	if rnd.cancelled(ctx) {
		return domain.OutcomeCancelled
	}
	if r.Final {
		return c.tryCommit(ctx, rnd, child)
	}
	return c.explore(ctx, child, rnd, release, depth+1)
}

// tryCommit races for the round's write-once commit slot. The first branch
// to reach it wins and triggers cancellation of its siblings; a late
// branch discards its result and reports Cancelled on itself.
func (c *Coordinator) tryCommit(ctx context.Context, rnd *round, a *Automaton) domain.Outcome {
	rnd.mu.Lock()
	if rnd.winner != nil {
		rnd.mu.Unlock()
		return domain.OutcomeCancelled
	}
	snap := a.snapshot()
	rnd.winner = &snap
	rnd.mu.Unlock()

	rnd.done.Store(true)
	rnd.cancel()

	if hook := a.hooks.OnCommit; hook != nil {
		hook(ctx, &domain.CommitEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommit},
			RoundID:   rnd.id,
			State:     snap.State,
		})
	}
	return domain.OutcomeCommitted
}

// eligibleRules evaluates every guard of the current state in rule order
// against a read-only view. A guard error only makes that rule ineligible.
func (c *Coordinator) eligibleRules(ctx context.Context, a *Automaton) []*domain.Rule {
	seq := a.rules[a.state]
	var out []*domain.Rule
	for i := range seq {
		ok, err := a.evalGuard(ctx, seq[i].Guard)
		if err != nil {
			a.logger.WarnContext(ctx, "guard error; rule ineligible",
				"state", int(a.state), "rule", i, "err", err)
			continue
		}
		if ok {
			out = append(out, &seq[i])
		}
	}
	return out
}

func (c *Coordinator) emitBranch(ctx context.Context, a *Automaton, kind domain.EventType, rnd *round, from, target domain.StateID, out domain.Outcome, depth int) {
	var hook func(context.Context, *domain.BranchEvent)
	switch kind {
	case domain.EventBranchSpawn:
		hook = a.hooks.OnBranchSpawn
	case domain.EventBranchSettle:
		hook = a.hooks.OnBranchSettle
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.BranchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: kind},
		RoundID:   rnd.id,
		From:      from,
		Target:    target,
		Outcome:   out,
		Depth:     depth,
	})
}

func resultOf(a *Automaton, out domain.Outcome) domain.Result {
	return domain.Result{Outcome: out, State: a.state, Registers: a.regs}
}
