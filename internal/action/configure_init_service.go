package action

import (
	"fmt"

	"github.com/nix-community/nix-installer/internal/errs"
	systemdUtils "github.com/nix-community/nix-installer/internal/systemd"
)

// ConfigureInitService enables and starts the Nix daemon unit through
// systemd (or marks itself a no-op when Init is "none"), reusing the
// dbus-backed Manager built for this installer (§4.1, §6).
type ConfigureInitService struct {
	Init       string `json:"init"`
	SocketUnit string `json:"socket_unit"`
	ServiceUnit string `json:"service_unit"`

	state State
}

func NewConfigureInitService(init, socketUnit, serviceUnit string) *ConfigureInitService {
	return &ConfigureInitService{Init: init, SocketUnit: socketUnit, ServiceUnit: serviceUnit, state: StateUncompleted}
}

func (a *ConfigureInitService) Typetag() string { return "configure_init_service" }

func (a *ConfigureInitService) TracingSynopsis() string {
	return fmt.Sprintf("Configure %s to start the Nix daemon", a.Init)
}

func (a *ConfigureInitService) TracingSpanData() map[string]string {
	return map[string]string{"init": a.Init}
}

func (a *ConfigureInitService) State() State { return a.state }

func (a *ConfigureInitService) Plan(c *Context) error {
	if a.Init != "systemd" && a.Init != "none" {
		return &errs.PlanError{Kind: errs.UnsupportedPlatform, Resource: a.Init, Reason: "init system not handled by this action"}
	}
	return nil
}

func (a *ConfigureInitService) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if a.Init == "none" {
		a.state = StateCompleted
		return nil
	}

	mgr, err := systemdUtils.NewManager(c.Ctx)
	if err != nil {
		return &errs.ActionError{Kind: errs.Command, Program: "systemd", OsError: err}
	}
	defer mgr.Close()

	if err := mgr.DaemonReload(c.Ctx); err != nil {
		return &errs.ActionError{Kind: errs.Command, Program: "systemd", OsError: err}
	}

	if err := mgr.EnableAndStart(c.Ctx, a.SocketUnit); err != nil {
		return &errs.ActionError{Kind: errs.Command, Program: "systemd", OsError: err}
	}

	a.state = StateCompleted
	return nil
}

func (a *ConfigureInitService) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if a.Init == "none" {
		a.state = StateUncompleted
		return nil
	}

	mgr, err := systemdUtils.NewManager(c.Ctx)
	if err != nil {
		return &errs.ActionError{Kind: errs.Command, Program: "systemd", OsError: err}
	}
	defer mgr.Close()

	if err := mgr.StopAndDisable(c.Ctx, a.SocketUnit); err != nil {
		return &errs.ActionError{Kind: errs.Command, Program: "systemd", OsError: err}
	}

	a.state = StateUncompleted
	return nil
}
