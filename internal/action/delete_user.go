package action

import (
	"fmt"

	"github.com/nix-community/nix-installer/internal/probe"
)

// DeleteUser removes a build user during uninstall/cure (§4.1). It is
// the cure-side counterpart to CreateUser: Execute deletes, Revert
// recreates using the UID it observed at plan time so an aborted
// uninstall can put the account back.
type DeleteUser struct {
	Name string `json:"name"`

	observedUID int
	existed     bool
	state       State
}

func NewDeleteUser(name string) *DeleteUser {
	return &DeleteUser{Name: name, state: StateUncompleted}
}

func (a *DeleteUser) Typetag() string { return "delete_user" }

func (a *DeleteUser) TracingSynopsis() string { return fmt.Sprintf("Delete user %s", a.Name) }

func (a *DeleteUser) TracingSpanData() map[string]string {
	return map[string]string{"name": a.Name}
}

func (a *DeleteUser) State() State { return a.state }

func (a *DeleteUser) Plan(c *Context) error {
	found, uid, err := probe.DetectExistingUser(a.Name)
	if err != nil {
		return nil
	}

	a.existed = found
	a.observedUID = uid
	return nil
}

func (a *DeleteUser) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if !a.existed {
		a.state = StateCompleted
		return nil
	}

	if err := runCommand(c, "userdel", a.Name); err != nil {
		return err
	}

	a.state = StateCompleted
	return nil
}

func (a *DeleteUser) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if !a.existed {
		a.state = StateUncompleted
		return nil
	}

	if err := runCommand(c, "useradd", "-u", fmt.Sprintf("%d", a.observedUID), "-M", "--system", a.Name); err != nil {
		return err
	}

	a.state = StateUncompleted
	return nil
}
