package uninstall

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdOpts "github.com/nix-community/nix-installer/internal/cmd/opts"
	cmdUtils "github.com/nix-community/nix-installer/internal/cmd/utils"
	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/diagnostic"
	"github.com/nix-community/nix-installer/internal/engine"
	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/receipt"
	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
)

func UninstallCommand() *cobra.Command {
	o := cmdOpts.UninstallOpts{}

	cmd := cobra.Command{
		Use:   "uninstall [receipt-path]",
		Short: "Remove a Nix installation",
		Long:  "Reverse every resource recorded in an installation receipt.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.ReceiptPath = constants.ReceiptPath
			if len(args) == 1 {
				o.ReceiptPath = args[0]
			}
			return cmdUtils.CommandErrorHandler(uninstallMain(cmd, &o))
		},
	}

	cmd.Flags().BoolVar(&o.Force, "force", false, "Continue past individual revert failures")

	cmdUtils.SetHelpFlagText(&cmd)

	return &cmd
}

func uninstallMain(cmd *cobra.Command, o *cmdOpts.UninstallOpts) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	s := settings.FromContext(ctx)

	sys := system.NewLocalSystem(log)

	lock, err := system.AcquireLock(constants.LockPath)
	if err != nil {
		log.Error(err)
		return err
	}
	defer func() { _ = lock.Release() }()

	store := receipt.NewStore(o.ReceiptPath, constants.InstallerBinaryPath)
	if !store.Exists() {
		err := fmt.Errorf("no receipt found at %s", o.ReceiptPath)
		log.Error(err)
		return err
	}

	log.Step(fmt.Sprintf("Loading receipt from %s...", o.ReceiptPath))
	p, err := store.Load()
	if err != nil {
		log.Error(err)
		return err
	}

	eng := engine.New(store, sys)

	log.Step("Reverting recorded changes...")
	revertErr := eng.Revert(ctx, p, s.Force || o.Force)

	status := diagnostic.StatusSuccess
	var failureChain []string
	if revertErr != nil {
		status = diagnostic.StatusFailure
		failureChain = diagnostic.FailureChain(revertErr)
	}

	_ = diagnostic.Send(ctx, s.DiagnosticEndpoint, diagnostic.Payload{
		Version:      p.Version,
		Planner:      p.Planner,
		Triple:       diagnostic.Triple(),
		IsCI:         diagnostic.IsCI(),
		Action:       diagnostic.ActionUninstall,
		Status:       status,
		Attribution:  s.DiagnosticAttribute,
		FailureChain: failureChain,
	})

	if revertErr != nil {
		log.Error(revertErr)
		return revertErr
	}

	log.Print("Nix has been removed.")
	return nil
}
