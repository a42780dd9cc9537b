package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter   EventType = "state_enter"
	EventStateLeave   EventType = "state_leave"
	EventBranchSpawn  EventType = "branch_spawn"
	EventBranchSettle EventType = "branch_settle"
	EventCommit       EventType = "commit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StateEvent represents entry into or exit from a state.
type StateEvent struct {
	EventBase
	State StateID `json:"state"`
}

// BranchEvent represents the lifecycle of one speculative worker.
type BranchEvent struct {
	EventBase
	RoundID string  `json:"round_id"`
	From    StateID `json:"from"`
	Target  StateID `json:"target"`
	Outcome Outcome `json:"outcome,omitempty"`
	Depth   int     `json:"depth"`
}

// CommitEvent represents a winning commit of an exploration round.
type CommitEvent struct {
	EventBase
	RoundID string  `json:"round_id"`
	State   StateID `json:"state"`
}

// LifecycleHooks defines callbacks for engine observability.
//
// In augmented mode hooks fire from multiple worker goroutines
// concurrently; implementations must be safe for concurrent use.
type LifecycleHooks struct {
	OnStateEnter   func(context.Context, *StateEvent)
	OnStateLeave   func(context.Context, *StateEvent)
	OnBranchSpawn  func(context.Context, *BranchEvent)
	OnBranchSettle func(context.Context, *BranchEvent)
	OnCommit       func(context.Context, *CommitEvent)
}
