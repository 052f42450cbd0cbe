package action

import (
	"fmt"

	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/probe"
)

// CreateGroup creates the build group, adopting it if a group with the
// requested name already exists with a compatible GID (§4.1, §6).
type CreateGroup struct {
	Name string `json:"name"`
	GID  int    `json:"gid"`

	disposition Disposition
	state       State
}

func NewCreateGroup(name string, gid int) *CreateGroup {
	return &CreateGroup{Name: name, GID: gid, state: StateUncompleted}
}

func (a *CreateGroup) Typetag() string { return "create_group" }

func (a *CreateGroup) TracingSynopsis() string {
	return fmt.Sprintf("Create group %s (GID %d)", a.Name, a.GID)
}

func (a *CreateGroup) TracingSpanData() map[string]string {
	return map[string]string{"name": a.Name, "gid": fmt.Sprintf("%d", a.GID)}
}

func (a *CreateGroup) State() State { return a.state }

func (a *CreateGroup) Plan(c *Context) error {
	found, gid, err := probe.DetectExistingGroup(a.Name)
	if err != nil {
		return &errs.PlanError{Kind: errs.MissingPrerequisite, Resource: a.Name, Reason: err.Error()}
	}

	if !found {
		a.disposition = DispositionCreate
		return nil
	}

	if gid != a.GID && !c.Force {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.Name, Reason: fmt.Sprintf("group exists with GID %d, expected %d", gid, a.GID)}
	}

	a.disposition = DispositionAdopt
	return nil
}

func (a *CreateGroup) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if a.disposition == DispositionAdopt {
		a.state = StateCompleted
		return nil
	}

	if err := runCommand(c, "groupadd", "-g", fmt.Sprintf("%d", a.GID), "--system", a.Name); err != nil {
		return err
	}

	a.state = StateCompleted
	return nil
}

func (a *CreateGroup) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if a.disposition == DispositionAdopt {
		a.state = StateUncompleted
		return nil
	}

	if err := runCommand(c, "groupdel", a.Name); err != nil {
		return err
	}

	a.state = StateUncompleted
	return nil
}
