package action

import (
	"fmt"
	"os"

	"github.com/nix-community/nix-installer/internal/errs"
)

// MoveUnpackedNix atomically renames the extracted store tree into its
// final location (§4.1). Rename is used rather than copy so the
// installer never leaves /nix/store half-populated.
type MoveUnpackedNix struct {
	From string `json:"from"`
	To   string `json:"to"`

	moved bool
	state State
}

func NewMoveUnpackedNix(from, to string) *MoveUnpackedNix {
	return &MoveUnpackedNix{From: from, To: to, state: StateUncompleted}
}

func (a *MoveUnpackedNix) Typetag() string { return "move_unpacked_nix" }

func (a *MoveUnpackedNix) TracingSynopsis() string {
	return fmt.Sprintf("Move %s to %s", a.From, a.To)
}

func (a *MoveUnpackedNix) TracingSpanData() map[string]string {
	return map[string]string{"from": a.From, "to": a.To}
}

func (a *MoveUnpackedNix) State() State { return a.state }

func (a *MoveUnpackedNix) Plan(c *Context) error {
	if _, err := c.Sys.FS().Stat(a.To); err == nil && !c.Force {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.To, Reason: "destination already exists"}
	}
	return nil
}

func (a *MoveUnpackedNix) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if _, err := os.Stat(a.To); err == nil {
		if err := os.RemoveAll(a.To); err != nil {
			return &errs.ActionError{Kind: errs.Io, Path: a.To, OsError: err}
		}
	}

	if err := os.Rename(a.From, a.To); err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: a.To, OsError: err}
	}

	a.moved = true
	a.state = StateCompleted
	return nil
}

func (a *MoveUnpackedNix) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if a.moved {
		if err := os.RemoveAll(a.To); err != nil && !os.IsNotExist(err) {
			return &errs.ActionError{Kind: errs.Io, Path: a.To, OsError: err}
		}
	}

	a.state = StateUncompleted
	return nil
}
