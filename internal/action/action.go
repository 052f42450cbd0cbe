// Package action implements the tagged-union Action kinds described in
// §4.1: every concrete kind carries its own inputs, and exposes the same
// plan/execute/revert/synopsis contract rather than being built on
// inheritance (§9, "Polymorphism without deep inheritance").
package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nix-community/nix-installer/internal/system"
)

// State is an Action's per-execute lifecycle position (§3).
type State string

const (
	StateUncompleted State = "Uncompleted"
	StateProgress    State = "Progress"
	StateCompleted   State = "Completed"
)

// Disposition classifies, at plan time, how an Action's target resource
// relates to what is already on disk (§4.1.1). It is recorded on the
// Action so that revert can honor it: Adopt-classified resources are
// never destroyed.
type Disposition string

const (
	DispositionCreate   Disposition = "Create"
	DispositionAdopt    Disposition = "Adopt"
	DispositionConflict Disposition = "Conflict"
)

// Context bundles the process-wide state every Action operation needs
// (§9: "gathered into a process-wide context object passed explicitly
// into every Action rather than kept in implicit module state"). It
// carries the System abstraction, the cancellation-aware context.Context
// the caller is already threading through, and whether --force was set.
type Context struct {
	Ctx   context.Context
	Sys   system.System
	Force bool

	// OnTransition, if set, is invoked after every child Action's
	// Execute/Revert call returns (success or failure) so the caller can
	// persist the receipt durably before the next transition begins
	// (§4.4: "re-serialize the receipt atomically" after each
	// transition). Composite calls it synchronously; under parallel
	// execution, callers must make it safe for concurrent invocation.
	OnTransition func()
}

func (c *Context) notify() {
	if c.OnTransition != nil {
		c.OnTransition()
	}
}

// Action is the contract every concrete kind satisfies (§4.1).
// Plan is pure with respect to the filesystem/process state it
// observes: it may read, must not write. Execute must be idempotent:
// calling it again on a Completed action is a no-op. Revert undoes
// exactly what Execute did, honoring whatever Disposition Plan recorded.
type Action interface {
	Plan(c *Context) error
	Execute(c *Context) error
	Revert(c *Context) error

	State() State
	TracingSynopsis() string
	TracingSpanData() map[string]string
	Typetag() string
}

// MarshalAction wraps an Action with its discriminator tag so the
// receipt's JSON round-trips without reflection-based type registries
// (§9: "Serialization uses an external discriminator string per kind").
func MarshalAction(a Action) ([]byte, error) {
	inner, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action %s: %w", a.Typetag(), err)
	}

	return json.Marshal(struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}{Type: a.Typetag(), Data: inner})
}

// UnmarshalAction reconstructs a concrete Action from its discriminated
// envelope, looking the constructor up in the package-level registry
// (see registry.go).
func UnmarshalAction(raw []byte) (Action, error) {
	var envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action envelope: %w", err)
	}

	newAction, ok := registry[envelope.Type]
	if !ok {
		return nil, fmt.Errorf("unknown action type tag %q", envelope.Type)
	}

	a := newAction()
	if err := json.Unmarshal(envelope.Data, a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action data for %q: %w", envelope.Type, err)
	}

	return a, nil
}
