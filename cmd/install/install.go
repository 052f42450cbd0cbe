package install

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	cmdOpts "github.com/nix-community/nix-installer/internal/cmd/opts"
	cmdUtils "github.com/nix-community/nix-installer/internal/cmd/utils"
	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/diagnostic"
	"github.com/nix-community/nix-installer/internal/engine"
	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/planner"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/receipt"
	"github.com/nix-community/nix-installer/internal/selftest"
	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
)

func defaultPlannerName() string {
	if runtime.GOOS == "darwin" {
		return "macos"
	}
	return "linux"
}

func InstallCommand() *cobra.Command {
	o := cmdOpts.InstallOpts{}

	cmd := cobra.Command{
		Use:   "install [planner]",
		Short: "Install Nix",
		Long:  "Plan and execute a fresh Nix installation, or resume a partial one.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.Planner = args[0]
			}
			return cmdUtils.CommandErrorHandler(installMain(cmd, &o))
		},
	}

	cmd.Flags().StringVar(&o.Init, "init", "", "Init system to configure {launchd,systemd,none}")
	cmd.Flags().StringVar(&o.NixBuildGroupName, "nix-build-group-name", "", "Name of the Nix build group")
	cmd.Flags().Int64Var(&o.NixBuildGroupID, "nix-build-group-id", 0, "GID of the Nix build group")
	cmd.Flags().StringVar(&o.NixBuildUserPrefix, "nix-build-user-prefix", "", "Prefix for build user names")
	cmd.Flags().Int64Var(&o.NixBuildUserCount, "nix-build-user-count", 0, "Number of build users to create")
	cmd.Flags().Int64Var(&o.NixBuildUserIDBase, "nix-build-user-id-base", 0, "Base UID for build users (first UID is base+1)")
	cmd.Flags().StringVar(&o.NixPackageURL, "nix-package-url", "", "URL of the Nix package tarball")
	cmd.Flags().StringArrayVar(&o.ExtraConf, "extra-conf", nil, "Extra nix.conf line (repeatable)")
	cmd.Flags().BoolVar(&o.Force, "force", false, "Adopt/overwrite conflicting resources")
	cmd.Flags().BoolVar(&o.ModifyProfile, "modify-profile", true, "Add Nix to shell profiles")
	cmd.Flags().BoolVar(&o.NoStartDaemon, "no-start-daemon", false, "Do not start the Nix daemon service")
	cmd.Flags().StringVar(&o.Proxy, "proxy", "", "HTTP(S) proxy URL")
	cmd.Flags().StringVar(&o.SSLCertFile, "ssl-cert-file", "", "Path to a CA bundle")
	cmd.Flags().StringVar(&o.DiagnosticEndpoint, "diagnostic-endpoint", "", "Diagnostic beacon URL (\"\" disables)")
	cmd.Flags().StringVar(&o.DiagnosticAttribute, "diagnostic-attribution", "", "Attribution string to include in the diagnostic beacon")
	cmd.Flags().BoolVar(&o.Determinate, "determinate", false, "Recorded in settings; does not change which Nix package is installed")

	cmdUtils.SetHelpFlagText(&cmd)

	return &cmd
}

func applyOverrides(s *settings.Settings, o *cmdOpts.InstallOpts) {
	if o.Init != "" {
		_ = s.SetValue("init", o.Init)
	}
	if o.NixBuildGroupName != "" {
		s.NixBuildGroupName = o.NixBuildGroupName
	}
	if o.NixBuildGroupID != 0 {
		s.NixBuildGroupID = o.NixBuildGroupID
	}
	if o.NixBuildUserPrefix != "" {
		s.NixBuildUserPrefix = o.NixBuildUserPrefix
	}
	if o.NixBuildUserCount != 0 {
		s.NixBuildUserCount = o.NixBuildUserCount
	}
	if o.NixBuildUserIDBase != 0 {
		s.NixBuildUserIDBase = o.NixBuildUserIDBase
	}
	if o.NixPackageURL != "" {
		s.NixPackageURL = o.NixPackageURL
	}
	if len(o.ExtraConf) > 0 {
		s.ExtraConf = o.ExtraConf
	}
	s.Force = s.Force || o.Force
	s.ModifyProfile = o.ModifyProfile
	s.NoStartDaemon = s.NoStartDaemon || o.NoStartDaemon
	if o.Proxy != "" {
		s.Proxy = o.Proxy
	}
	if o.SSLCertFile != "" {
		s.SSLCertFile = o.SSLCertFile
	}
	if o.DiagnosticEndpoint != "" {
		s.DiagnosticEndpoint = o.DiagnosticEndpoint
	}
	if o.DiagnosticAttribute != "" {
		s.DiagnosticAttribute = o.DiagnosticAttribute
	}
	s.Determinate = s.Determinate || o.Determinate
}

func installMain(cmd *cobra.Command, o *cmdOpts.InstallOpts) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	s := settings.FromContext(ctx)

	applyOverrides(s, o)

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

	log.Step("Gathering system information...")
	snap, err := probe.Gather(sys)
	if err != nil {
		log.Error(err)
		return err
	}

	log.Step(fmt.Sprintf("Planning install (%s)...", plannerName))
	p, err := planner.Lookup(plannerName)
	if err != nil {
		log.Error(err)
		return err
	}

	installPlan, err := p(s, snap)
	if err != nil {
		log.Error(err)
		return err
	}

	store := receipt.NewStore(constants.ReceiptPath, constants.InstallerBinaryPath)
	eng := engine.New(store, sys)

	log.Step("Executing plan...")
	execErr := eng.Execute(ctx, installPlan, s.Force)

	status := diagnostic.StatusSuccess
	var failureChain []string
	if execErr != nil {
		status = diagnostic.StatusFailure
		failureChain = diagnostic.FailureChain(execErr)
	}

	_ = diagnostic.Send(ctx, s.DiagnosticEndpoint, diagnostic.Payload{
		Version:      installPlan.Version,
		Planner:      installPlan.Planner,
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

	log.Step("Running self-test...")
	for _, result := range selftest.Run(ctx, sys, s.Init) {
		if result.Passed {
			log.Infof("%s: ok", result.Name)
		} else {
			log.Warnf("%s: %s", result.Name, result.Detail)
		}
	}

	log.Print("Nix has been installed successfully.")
	return nil
}
