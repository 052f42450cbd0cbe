package action

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/nix-community/nix-installer/internal/errs"
)

// CreateDirectory creates path if missing, recording whether it created
// the directory or adopted an existing one so Revert only removes what
// it made (§4.1).
type CreateDirectory struct {
	Path  string      `json:"path"`
	User  string      `json:"user"`
	Group string      `json:"group"`
	Mode  os.FileMode `json:"mode"`
	Force bool        `json:"force"`

	disposition Disposition
	state       State
}

func NewCreateDirectory(path, user, group string, mode os.FileMode, force bool) *CreateDirectory {
	return &CreateDirectory{Path: path, User: user, Group: group, Mode: mode, Force: force, state: StateUncompleted}
}

func (a *CreateDirectory) Typetag() string { return "create_directory" }

func (a *CreateDirectory) TracingSynopsis() string {
	return fmt.Sprintf("Create directory %s", a.Path)
}

func (a *CreateDirectory) TracingSpanData() map[string]string {
	return map[string]string{"path": a.Path, "user": a.User, "group": a.Group}
}

func (a *CreateDirectory) State() State { return a.state }

// Plan probes whether Path already exists and, if so, whether its mode
// matches the desired shape, classifying the result per §4.1.1.
func (a *CreateDirectory) Plan(c *Context) error {
	info, err := c.Sys.FS().Stat(a.Path)
	if err != nil {
		a.disposition = DispositionCreate
		return nil
	}

	if !info.IsDir() {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.Path, Reason: "exists and is not a directory"}
	}

	if info.Mode().Perm() != a.Mode.Perm() {
		if !a.Force && !c.Force {
			return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.Path, Reason: fmt.Sprintf("exists with mode %o, expected %o", info.Mode().Perm(), a.Mode.Perm())}
		}
		a.disposition = DispositionConflict
		return nil
	}

	a.disposition = DispositionAdopt
	return nil
}

func (a *CreateDirectory) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if a.disposition == DispositionAdopt {
		a.state = StateCompleted
		return nil
	}

	if err := c.Sys.FS().MkdirAll(a.Path, a.Mode); err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
	}

	if err := chown(a.Path, a.User, a.Group); err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
	}

	a.state = StateCompleted
	return nil
}

func (a *CreateDirectory) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if a.disposition == DispositionAdopt || a.disposition == DispositionConflict {
		a.state = StateUncompleted
		return nil
	}

	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
	}

	a.state = StateUncompleted
	return nil
}

// chown is shared by CreateDirectory and CreateFile; both resolve their
// owner/group names the same way and silently no-op when left empty.
func chown(path, userName, groupName string) error {
	if userName == "" && groupName == "" {
		return nil
	}

	uid := -1
	gid := -1

	if userName != "" {
		u, err := user.Lookup(userName)
		if err != nil {
			return err
		}
		uid, err = strconv.Atoi(u.Uid)
		if err != nil {
			return err
		}
	}

	if groupName != "" {
		g, err := user.LookupGroup(groupName)
		if err != nil {
			return err
		}
		gid, err = strconv.Atoi(g.Gid)
		if err != nil {
			return err
		}
	}

	return os.Chown(path, uid, gid)
}
