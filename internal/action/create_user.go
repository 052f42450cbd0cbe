package action

import (
	"fmt"

	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/probe"
)

// CreateUser creates one of the build users (nixbld1..N / _nixbld1..N),
// adopting an existing account with a compatible UID rather than
// recreating it (§4.1, §6).
type CreateUser struct {
	Name      string `json:"name"`
	UID       int    `json:"uid"`
	GroupName string `json:"group_name"`
	Comment   string `json:"comment"`
	Shell     string `json:"shell"`
	HomeDir   string `json:"home_dir"`

	disposition Disposition
	state       State
}

func NewCreateUser(name string, uid int, groupName, comment, shell, homeDir string) *CreateUser {
	return &CreateUser{
		Name:      name,
		UID:       uid,
		GroupName: groupName,
		Comment:   comment,
		Shell:     shell,
		HomeDir:   homeDir,
		state:     StateUncompleted,
	}
}

func (a *CreateUser) Typetag() string { return "create_user" }

func (a *CreateUser) TracingSynopsis() string {
	return fmt.Sprintf("Create user %s (UID %d)", a.Name, a.UID)
}

func (a *CreateUser) TracingSpanData() map[string]string {
	return map[string]string{"name": a.Name, "uid": fmt.Sprintf("%d", a.UID)}
}

func (a *CreateUser) State() State { return a.state }

func (a *CreateUser) Plan(c *Context) error {
	found, uid, err := probe.DetectExistingUser(a.Name)
	if err != nil {
		return &errs.PlanError{Kind: errs.MissingPrerequisite, Resource: a.Name, Reason: err.Error()}
	}

	if !found {
		a.disposition = DispositionCreate
		return nil
	}

	if uid != a.UID && !c.Force {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.Name, Reason: fmt.Sprintf("user exists with UID %d, expected %d", uid, a.UID)}
	}

	a.disposition = DispositionAdopt
	return nil
}

func (a *CreateUser) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if a.disposition == DispositionAdopt {
		a.state = StateCompleted
		return nil
	}

	args := []string{
		"-u", fmt.Sprintf("%d", a.UID),
		"-g", a.GroupName,
		"-c", a.Comment,
		"-d", a.HomeDir,
		"-s", a.Shell,
		"-M",
		"--system",
		a.Name,
	}

	if err := runCommand(c, "useradd", args...); err != nil {
		return err
	}

	a.state = StateCompleted
	return nil
}

func (a *CreateUser) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if a.disposition == DispositionAdopt {
		a.state = StateUncompleted
		return nil
	}

	if err := runCommand(c, "userdel", a.Name); err != nil {
		return err
	}

	a.state = StateUncompleted
	return nil
}
