package selftest

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdUtils "github.com/nix-community/nix-installer/internal/cmd/utils"
	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/selftest"
	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
)

func SelftestCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "self-test",
		Short: "Verify a Nix installation is functional",
		Long:  "Run the daemon-reachability, store-ping, and trivial-build checks without installing or repairing anything.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdUtils.CommandErrorHandler(selftestMain(cmd))
		},
	}

	cmdUtils.SetHelpFlagText(&cmd)

	return &cmd
}

func selftestMain(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	s := settings.FromContext(ctx)

	sys := system.NewLocalSystem(log)

	log.Step("Running self-test...")
	results := selftest.Run(ctx, sys, s.Init)

	failed := false
	for _, result := range results {
		if result.Passed {
			log.Infof("%s: ok", result.Name)
			continue
		}
		failed = true
		log.Warnf("%s: %s", result.Name, result.Detail)
	}

	if failed {
		return fmt.Errorf("one or more self-test checks failed")
	}

	log.Print("All self-test checks passed.")
	return nil
}
