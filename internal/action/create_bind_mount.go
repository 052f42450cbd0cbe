package action

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/nix-community/nix-installer/internal/errs"
)

// CreateBindMount bind-mounts Source onto Target via `mount --bind`,
// used by the steam-deck and ostree planners to relocate /nix onto a
// partition the base read-only image doesn't expose directly (§4.2).
type CreateBindMount struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Force  bool   `json:"force"`

	disposition Disposition
	state       State
}

func NewCreateBindMount(source, target string, force bool) *CreateBindMount {
	return &CreateBindMount{Source: source, Target: target, Force: force, state: StateUncompleted}
}

func (a *CreateBindMount) Typetag() string { return "create_bind_mount" }

func (a *CreateBindMount) TracingSynopsis() string {
	return fmt.Sprintf("Bind mount %s onto %s", a.Source, a.Target)
}

func (a *CreateBindMount) TracingSpanData() map[string]string {
	return map[string]string{"source": a.Source, "target": a.Target}
}

func (a *CreateBindMount) State() State { return a.state }

// Plan checks whether Target is already a distinct mount, classifying
// the result per §4.1.1: a plain directory (or a Target that cannot be
// stat'ed) is the Create case, and a Target that is already a mount
// point is a Conflict unless Force is set, in which case it is Adopted.
// It does not tell a bind mount of Source apart from any other mount.
func (a *CreateBindMount) Plan(c *Context) error {
	mounted, err := isMountpoint(a.Target)
	if err != nil {
		a.disposition = DispositionCreate
		return nil
	}

	if mounted && !a.Force && !c.Force {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.Target, Reason: "already a mount point"}
	}

	if mounted {
		a.disposition = DispositionAdopt
		return nil
	}

	a.disposition = DispositionCreate
	return nil
}

func (a *CreateBindMount) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if a.disposition == DispositionAdopt {
		a.state = StateCompleted
		return nil
	}

	if err := runCommand(c, "mount", "--bind", a.Source, a.Target); err != nil {
		return err
	}

	a.state = StateCompleted
	return nil
}

func (a *CreateBindMount) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if a.disposition == DispositionAdopt {
		a.state = StateUncompleted
		return nil
	}

	if err := runCommand(c, "umount", a.Target); err != nil {
		return err
	}

	a.state = StateUncompleted
	return nil
}

// isMountpoint reports whether path is a distinct mount from its parent
// directory, the same device-number comparison the `mountpoint` command
// uses, so Plan doesn't need to parse /proc/self/mountinfo.
func isMountpoint(path string) (bool, error) {
	pathInfo, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	parentInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return false, err
	}

	pathStat, ok := pathInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return false, fmt.Errorf("device number not available on this platform")
	}

	parentStat, ok := parentInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return false, fmt.Errorf("device number not available on this platform")
	}

	return pathStat.Dev != parentStat.Dev, nil
}
