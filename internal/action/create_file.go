package action

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nix-community/nix-installer/internal/errs"
)

// CreateFile writes Bytes to Path via atomic write-then-rename, with
// the same Create/Adopt/Conflict discipline as CreateDirectory (§4.1).
type CreateFile struct {
	Path  string      `json:"path"`
	User  string      `json:"user"`
	Group string      `json:"group"`
	Mode  os.FileMode `json:"mode"`
	Bytes []byte      `json:"bytes"`
	Force bool        `json:"force"`

	disposition Disposition
	state       State
}

func NewCreateFile(path, user, group string, mode os.FileMode, contents []byte, force bool) *CreateFile {
	return &CreateFile{Path: path, User: user, Group: group, Mode: mode, Bytes: contents, Force: force, state: StateUncompleted}
}

func (a *CreateFile) Typetag() string { return "create_file" }

func (a *CreateFile) TracingSynopsis() string { return fmt.Sprintf("Create file %s", a.Path) }

func (a *CreateFile) TracingSpanData() map[string]string {
	return map[string]string{"path": a.Path}
}

func (a *CreateFile) State() State { return a.state }

func (a *CreateFile) Plan(c *Context) error {
	existing, err := c.Sys.FS().ReadFile(a.Path)
	if err != nil {
		a.disposition = DispositionCreate
		return nil
	}

	if bytes.Equal(existing, a.Bytes) {
		a.disposition = DispositionAdopt
		return nil
	}

	if !a.Force && !c.Force {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.Path, Reason: "exists with different contents"}
	}

	a.disposition = DispositionConflict
	return nil
}

func (a *CreateFile) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if a.disposition == DispositionAdopt {
		a.state = StateCompleted
		return nil
	}

	dir := filepath.Dir(a.Path)
	tmp, err := os.CreateTemp(dir, ".nix-installer-*")
	if err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: dir, OsError: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(a.Bytes); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &errs.ActionError{Kind: errs.Io, Path: tmpPath, OsError: err}
	}

	if err := tmp.Chmod(a.Mode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &errs.ActionError{Kind: errs.Io, Path: tmpPath, OsError: err}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &errs.ActionError{Kind: errs.Io, Path: tmpPath, OsError: err}
	}

	if err := os.Rename(tmpPath, a.Path); err != nil {
		_ = os.Remove(tmpPath)
		return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
	}

	if err := chown(a.Path, a.User, a.Group); err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
	}

	a.state = StateCompleted
	return nil
}

func (a *CreateFile) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if a.disposition == DispositionAdopt {
		a.state = StateUncompleted
		return nil
	}

	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
	}

	a.state = StateUncompleted
	return nil
}
