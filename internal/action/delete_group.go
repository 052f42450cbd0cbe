package action

import (
	"fmt"

	"github.com/nix-community/nix-installer/internal/probe"
)

// DeleteGroup is the cure-side counterpart to CreateGroup, mirroring
// DeleteUser's observe-then-revert-with-same-GID shape (§4.1).
type DeleteGroup struct {
	Name string `json:"name"`

	observedGID int
	existed     bool
	state       State
}

func NewDeleteGroup(name string) *DeleteGroup {
	return &DeleteGroup{Name: name, state: StateUncompleted}
}

func (a *DeleteGroup) Typetag() string { return "delete_group" }

func (a *DeleteGroup) TracingSynopsis() string { return fmt.Sprintf("Delete group %s", a.Name) }

func (a *DeleteGroup) TracingSpanData() map[string]string {
	return map[string]string{"name": a.Name}
}

func (a *DeleteGroup) State() State { return a.state }

func (a *DeleteGroup) Plan(c *Context) error {
	found, gid, err := probe.DetectExistingGroup(a.Name)
	if err != nil {
		return nil
	}

	a.existed = found
	a.observedGID = gid
	return nil
}

func (a *DeleteGroup) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if !a.existed {
		a.state = StateCompleted
		return nil
	}

	if err := runCommand(c, "groupdel", a.Name); err != nil {
		return err
	}

	a.state = StateCompleted
	return nil
}

func (a *DeleteGroup) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if !a.existed {
		a.state = StateUncompleted
		return nil
	}

	if err := runCommand(c, "groupadd", "-g", fmt.Sprintf("%d", a.observedGID), "--system", a.Name); err != nil {
		return err
	}

	a.state = StateUncompleted
	return nil
}
