package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nix-community/nix-installer/internal/action"
	cmdOpts "github.com/nix-community/nix-installer/internal/cmd/opts"
	cmdUtils "github.com/nix-community/nix-installer/internal/cmd/utils"
	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/planner"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
)

func defaultPlannerName() string {
	if runtime.GOOS == "darwin" {
		return "macos"
	}
	return "linux"
}

func PlanCommand() *cobra.Command {
	o := cmdOpts.PlanOpts{}

	cmd := cobra.Command{
		Use:   "plan [planner]",
		Short: "Compute a Plan without executing it",
		Long:  "Probe the host, build a Plan, and print or save it as JSON without touching the system.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.Planner = args[0]
			}
			return cmdUtils.CommandErrorHandler(planMain(cmd, &o))
		},
	}

	cmd.Flags().StringVar(&o.OutFile, "out-file", "", "Write the Plan JSON to this path instead of stdout")

	cmdUtils.SetHelpFlagText(&cmd)

	return &cmd
}

func planMain(cmd *cobra.Command, o *cmdOpts.PlanOpts) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	s := settings.FromContext(ctx)

	plannerName := o.Planner
	if plannerName == "" {
		plannerName = defaultPlannerName()
	}

	sys := system.NewLocalSystem(log)

	log.Step("Gathering system information...")
	snap, err := probe.Gather(sys)
	if err != nil {
		log.Error(err)
		return err
	}

	p, err := planner.Lookup(plannerName)
	if err != nil {
		log.Error(err)
		return err
	}

	computedPlan, err := p(s, snap)
	if err != nil {
		log.Error(err)
		return err
	}

	if err := computedPlan.Root.Plan(&action.Context{Ctx: ctx, Sys: sys, Force: s.Force}); err != nil {
		log.Error(err)
		return err
	}

	out, err := json.MarshalIndent(computedPlan, "", "  ")
	if err != nil {
		log.Error(err)
		return err
	}
	out = append(out, '\n')

	if o.OutFile == "" {
		fmt.Print(string(out))
		return nil
	}

	if err := os.WriteFile(o.OutFile, out, 0o644); err != nil {
		log.Error(err)
		return err
	}

	log.Infof("Plan written to %s", o.OutFile)
	return nil
}
