// Package domain contains the core data model of the Bramble engine.
//
// It defines the vocabulary shared by the engine and its callers: state
// identifiers, transition rules with guard predicates, enter/exit action
// pairs, the opaque Registers scratchpad, snapshots, and the outcomes a
// speculative branch can settle into.
//
// The package has no dependency on the engine internals; adapters and
// hosts should depend on it rather than on internal packages.
package domain
