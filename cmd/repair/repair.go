package repair

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/nix-community/nix-installer/internal/action"
	cmdOpts "github.com/nix-community/nix-installer/internal/cmd/opts"
	cmdUtils "github.com/nix-community/nix-installer/internal/cmd/utils"
	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/cure"
	"github.com/nix-community/nix-installer/internal/diagnostic"
	"github.com/nix-community/nix-installer/internal/engine"
	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/receipt"
	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
)

func defaultPlannerName() string {
	if runtime.GOOS == "darwin" {
		return "macos"
	}
	return "linux"
}

func RepairCommand() *cobra.Command {
	o := cmdOpts.RepairOpts{}

	cmd := cobra.Command{
		Use:   "repair [planner]",
		Short: "Diagnose and repair a partial or un-receipted install",
		Long:  "Probe the host for existing Nix artifacts, synthesize a cure Plan biased toward adopting what already exists, and execute it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.Planner = args[0]
			}
			return cmdUtils.CommandErrorHandler(repairMain(cmd, &o))
		},
	}

	cmdUtils.SetHelpFlagText(&cmd)

	return &cmd
}

func repairMain(cmd *cobra.Command, o *cmdOpts.RepairOpts) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	s := settings.FromContext(ctx)

	plannerName := o.Planner
	if plannerName == "" {
		plannerName = defaultPlannerName()
	}

	sys := system.NewLocalSystem(log)

	lock, err := system.AcquireLock(constants.LockPath)
	if err != nil {
		log.Error(err)
		return err
	}
	defer func() { _ = lock.Release() }()

	if cure.HasReceipt(constants.ReceiptPath) {
		err := fmt.Errorf("a receipt already exists at %s; use 'install' to resume or 'uninstall' to remove it first", constants.ReceiptPath)
		log.Error(err)
		return err
	}

	log.Step("Gathering system information...")
	snap, err := probe.Gather(sys)
	if err != nil {
		log.Error(err)
		return err
	}

	if !cure.IsInstalled(sys, s) {
		err := fmt.Errorf("no existing Nix artifacts found; use 'install' instead")
		log.Error(err)
		return err
	}

	if age, err := cure.InstallAge(constants.NixRoot); err == nil {
		log.Infof("found an unreceipted install, %s created %s ago", constants.NixRoot, age.Round(time.Minute))
	}

	log.Step(fmt.Sprintf("Diagnosing existing install (%s)...", plannerName))
	curePlan, err := cure.Diagnose(sys, s, snap, plannerName)
	if err != nil {
		log.Error(err)
		return err
	}

	if root, ok := curePlan.Root.(*action.Composite); ok {
		if cleanup := cure.CleanupBackupFiles(sys, constants.ShellProfileTargets); len(cleanup) > 0 {
			log.Infof("found %d leftover shell-profile backup(s) from a prior installer, scheduling removal", len(cleanup))
			root.Children = append(root.Children, cleanup...)
		}
	}

	store := receipt.NewStore(constants.ReceiptPath, constants.InstallerBinaryPath)
	eng := engine.New(store, sys)

	log.Step("Executing repair plan...")
	execErr := eng.Execute(ctx, curePlan, true)

	status := diagnostic.StatusSuccess
	var failureChain []string
	if execErr != nil {
		status = diagnostic.StatusFailure
		failureChain = diagnostic.FailureChain(execErr)
	}

	_ = diagnostic.Send(ctx, s.DiagnosticEndpoint, diagnostic.Payload{
		Version:      curePlan.Version,
		Planner:      curePlan.Planner,
		OSName:       snap.DistroFamily,
		Triple:       diagnostic.Triple(),
		IsCI:         diagnostic.IsCI(),
		Action:       diagnostic.ActionInstall,
		Status:       status,
		Attribution:  s.DiagnosticAttribute,
		FailureChain: failureChain,
	})

	if execErr != nil {
		log.Error(execErr)
		return execErr
	}

	log.Print("Repair complete.")
	return nil
}
