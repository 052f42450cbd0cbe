package action

import (
	"fmt"

	"github.com/nix-community/nix-installer/internal/errs"
)

// ConfigureSELinux loads the precompiled Nix policy module with
// semodule when the host is enforcing (§4.1). Revert removes the module
// again; files labeled while it was loaded are not relabeled.
type ConfigureSELinux struct {
	ModulePath string `json:"module_path"`
	ModuleName string `json:"module_name"`
	Enforcing  bool   `json:"enforcing"`

	loaded bool
	state  State
}

func NewConfigureSELinux(modulePath, moduleName string, enforcing bool) *ConfigureSELinux {
	return &ConfigureSELinux{ModulePath: modulePath, ModuleName: moduleName, Enforcing: enforcing, state: StateUncompleted}
}

func (a *ConfigureSELinux) Typetag() string { return "configure_selinux" }

func (a *ConfigureSELinux) TracingSynopsis() string {
	return fmt.Sprintf("Load SELinux policy module %s", a.ModuleName)
}

func (a *ConfigureSELinux) TracingSpanData() map[string]string {
	return map[string]string{"module": a.ModuleName}
}

func (a *ConfigureSELinux) State() State { return a.state }

func (a *ConfigureSELinux) Plan(c *Context) error {
	if !a.Enforcing {
		return nil
	}
	if _, err := c.Sys.FS().Stat(a.ModulePath); err != nil {
		return &errs.PlanError{Kind: errs.MissingPrerequisite, Resource: a.ModulePath, Reason: "SELinux policy module not found"}
	}
	return nil
}

func (a *ConfigureSELinux) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if !a.Enforcing {
		a.state = StateCompleted
		return nil
	}

	if err := runCommand(c, "semodule", "-i", a.ModulePath); err != nil {
		return err
	}

	a.loaded = true
	a.state = StateCompleted
	return nil
}

// Revert removes the module. A failure here is surfaced through the
// ordinary PartialFailure accumulation rather than treated specially.
// Leftover file labels are neither touched nor reported.
func (a *ConfigureSELinux) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if a.loaded {
		if err := runCommand(c, "semodule", "-r", a.ModuleName); err != nil {
			return err
		}
	}

	a.state = StateUncompleted
	return nil
}
