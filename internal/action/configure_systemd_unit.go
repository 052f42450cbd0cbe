package action

import (
	"fmt"
	"os"

	"github.com/nix-community/nix-installer/internal/errs"
	systemdUtils "github.com/nix-community/nix-installer/internal/systemd"
)

// ConfigureSystemdUnit writes a systemd unit file, classifying a
// pre-existing unit at Path by parsing both it and the freshly
// rendered content with ParseUnit/CompareUnits instead of a raw byte
// diff (§4.1.1): a unit that differs only in an ignorable field
// (Description, SourcePath, comments, key ordering, ...) is adopted
// rather than flagged as a conflict or needlessly rewritten.
type ConfigureSystemdUnit struct {
	Path  string `json:"path"`
	Bytes []byte `json:"bytes"`
	Force bool   `json:"force"`

	adopted bool
	file    *CreateFile
	state   State
}

func NewConfigureSystemdUnit(path string, contents []byte, force bool) *ConfigureSystemdUnit {
	return &ConfigureSystemdUnit{Path: path, Bytes: contents, Force: force, state: StateUncompleted}
}

func (a *ConfigureSystemdUnit) Typetag() string { return "configure_systemd_unit" }

func (a *ConfigureSystemdUnit) TracingSynopsis() string {
	return fmt.Sprintf("Write systemd unit %s", a.Path)
}

func (a *ConfigureSystemdUnit) TracingSpanData() map[string]string {
	return map[string]string{"path": a.Path}
}

func (a *ConfigureSystemdUnit) State() State {
	if a.adopted {
		return a.state
	}
	if a.file == nil {
		return StateUncompleted
	}
	return a.file.State()
}

func (a *ConfigureSystemdUnit) Plan(c *Context) error {
	if equivalent, err := a.unitEquivalentToExisting(); err == nil && equivalent {
		a.adopted = true
		a.state = StateCompleted
		return nil
	}

	a.file = NewCreateFile(a.Path, "", "", 0o644, a.Bytes, a.Force)
	if err := a.file.Plan(c); err != nil {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.Path, Reason: err.Error()}
	}
	return nil
}

// unitEquivalentToExisting reports whether Path already holds a unit
// that CompareUnits considers equal to Bytes. A missing file, or a
// parse failure on either side, is reported as not equivalent so Plan
// falls back to CreateFile's ordinary byte-level classification.
func (a *ConfigureSystemdUnit) unitEquivalentToExisting() (bool, error) {
	if _, err := os.Stat(a.Path); err != nil {
		return false, err
	}

	tmp, err := os.CreateTemp("", "nix-installer-unit-*")
	if err != nil {
		return false, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(a.Bytes); err != nil {
		tmp.Close()
		return false, err
	}
	tmp.Close()

	existing, err := systemdUtils.ParseUnit(a.Path, a.Path)
	if err != nil {
		return false, err
	}

	rendered, err := systemdUtils.ParseUnit(tmpPath, tmpPath)
	if err != nil {
		return false, err
	}

	return systemdUtils.CompareUnits(existing, rendered) == systemdUtils.UnitComparisonEqual, nil
}

func (a *ConfigureSystemdUnit) Execute(c *Context) error {
	if a.adopted {
		return nil
	}
	return a.file.Execute(c)
}

func (a *ConfigureSystemdUnit) Revert(c *Context) error {
	if a.adopted {
		return nil
	}
	return a.file.Revert(c)
}
