package action

import (
	"fmt"
	"os"

	"github.com/nix-community/nix-installer/internal/errs"
)

// RemoveDirectory recursively removes a directory tree during uninstall
// (§4.1). Unlike CreateDirectory it has no Adopt path: removal is always
// destructive, so Revert cannot restore contents and instead only
// records that it ran, matching the cure/uninstall plan's documented
// irreversibility for this one kind (§7).
type RemoveDirectory struct {
	Path string `json:"path"`

	existed bool
	state   State
}

func NewRemoveDirectory(path string) *RemoveDirectory {
	return &RemoveDirectory{Path: path, state: StateUncompleted}
}

func (a *RemoveDirectory) Typetag() string { return "remove_directory" }

func (a *RemoveDirectory) TracingSynopsis() string {
	return fmt.Sprintf("Remove directory %s", a.Path)
}

func (a *RemoveDirectory) TracingSpanData() map[string]string {
	return map[string]string{"path": a.Path}
}

func (a *RemoveDirectory) State() State { return a.state }

func (a *RemoveDirectory) Plan(c *Context) error {
	_, err := c.Sys.FS().Stat(a.Path)
	a.existed = err == nil
	return nil
}

func (a *RemoveDirectory) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if a.existed {
		if err := os.RemoveAll(a.Path); err != nil {
			return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
		}
	}

	a.state = StateCompleted
	return nil
}

// Revert cannot recreate removed contents; it only clears the
// in-progress marker so the receipt reflects that the removal itself
// has been undone as much as possible.
func (a *RemoveDirectory) Revert(c *Context) error {
	a.state = StateUncompleted
	return nil
}
