package action

import (
	"fmt"
	"os"
	"strings"

	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/errs"
)

// ConfigureShellProfile appends a fenced block sourcing the Nix profile
// to a shell init file, delimited by ShellProfileFenceStart/End so a
// later revert can find and remove exactly what it added without
// disturbing the rest of the file (§9).
type ConfigureShellProfile struct {
	Path    string `json:"path"`
	Snippet string `json:"snippet"`

	existedBefore  bool
	originalBody   string
	appended       bool
	state          State
}

func NewConfigureShellProfile(path, snippet string) *ConfigureShellProfile {
	return &ConfigureShellProfile{Path: path, Snippet: snippet, state: StateUncompleted}
}

func (a *ConfigureShellProfile) Typetag() string { return "configure_shell_profile" }

func (a *ConfigureShellProfile) TracingSynopsis() string {
	return fmt.Sprintf("Configure shell profile %s", a.Path)
}

func (a *ConfigureShellProfile) TracingSpanData() map[string]string {
	return map[string]string{"path": a.Path}
}

func (a *ConfigureShellProfile) State() State { return a.state }

func (a *ConfigureShellProfile) fencedBlock() string {
	var b strings.Builder
	b.WriteString(constants.ShellProfileFenceStart)
	b.WriteByte('\n')
	b.WriteString(a.Snippet)
	if !strings.HasSuffix(a.Snippet, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(constants.ShellProfileFenceEnd)
	b.WriteByte('\n')
	return b.String()
}

func (a *ConfigureShellProfile) Plan(c *Context) error {
	contents, err := c.Sys.FS().ReadFile(a.Path)
	if err != nil {
		a.existedBefore = false
		a.originalBody = ""
		return nil
	}

	a.existedBefore = true
	a.originalBody = string(contents)

	if strings.Contains(a.originalBody, constants.ShellProfileFenceStart) {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.Path, Reason: "already contains a Nix-managed block"}
	}

	return nil
}

func (a *ConfigureShellProfile) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	var newContents string
	if a.existedBefore {
		newContents = a.originalBody
		if !strings.HasSuffix(newContents, "\n") {
			newContents += "\n"
		}
		newContents += a.fencedBlock()
	} else {
		newContents = a.fencedBlock()
	}

	file := NewCreateFile(a.Path, "", "", 0o644, []byte(newContents), true)
	if err := file.Plan(c); err != nil {
		return err
	}
	if err := file.Execute(c); err != nil {
		return err
	}

	a.appended = true
	a.state = StateCompleted
	return nil
}

func (a *ConfigureShellProfile) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if !a.appended {
		a.state = StateUncompleted
		return nil
	}

	contents, err := os.ReadFile(a.Path)
	if err != nil && !os.IsNotExist(err) {
		return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
	}
	remaining := strings.Replace(string(contents), a.fencedBlock(), "", 1)

	if !a.existedBefore && strings.TrimSpace(remaining) == "" {
		if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
			return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
		}
	} else if err == nil {
		if err := os.WriteFile(a.Path, []byte(remaining), 0o644); err != nil {
			return &errs.ActionError{Kind: errs.Io, Path: a.Path, OsError: err}
		}
	}

	a.state = StateUncompleted
	return nil
}
