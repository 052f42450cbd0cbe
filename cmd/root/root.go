package root

import (
	"context"
	"fmt"
	"os"

	"github.com/carapace-sh/carapace"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nix-community/nix-installer/internal/build"
	cmdOpts "github.com/nix-community/nix-installer/internal/cmd/opts"
	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/settings"

	completionCmd "github.com/nix-community/nix-installer/cmd/completion"
	exportCmd "github.com/nix-community/nix-installer/cmd/export"
	installCmd "github.com/nix-community/nix-installer/cmd/install"
	planCmd "github.com/nix-community/nix-installer/cmd/plan"
	repairCmd "github.com/nix-community/nix-installer/cmd/repair"
	selftestCmd "github.com/nix-community/nix-installer/cmd/selftest"
	uninstallCmd "github.com/nix-community/nix-installer/cmd/uninstall"
)

const helpTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}

Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`

func mainCommand() (*cobra.Command, error) {
	opts := cmdOpts.MainOpts{}

	loggerKind := os.Getenv("NIX_INSTALLER_LOGGER")
	log, err := logger.NewLoggerFor(loggerKind)
	if err != nil {
		log = logger.NewConsoleLogger()
	}
	cmdCtx := logger.WithLogger(context.Background(), log)

	configLocation := os.Getenv("NIX_INSTALLER_CONFIG")
	if configLocation == "" {
		configLocation = constants.DefaultConfigLocation
	}

	cfg, err := settings.ParseSettings(configLocation)
	if err != nil {
		if os.Getenv("NIX_INSTALLER_SUPPRESS_NO_SETTINGS_WARNING") == "" {
			log.Warn("no settings file found, proceeding with defaults only")
		}

		cfg = settings.NewSettings()
	}

	for _, verr := range cfg.Validate() {
		log.Warn(verr.Error())
	}

	cmdCtx = settings.WithConfig(cmdCtx, cfg)

	cmd := cobra.Command{
		Use:                        "nix-installer {command} [flags]",
		Short:                      "nix-installer",
		Long:                       "Install, repair, or remove a Nix package manager deployment",
		Version:                    build.Version(),
		SilenceUsage:               true,
		SuggestionsMinimumDistance: 1,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for key, value := range opts.ConfigValues {
				if err := cfg.SetValue(key, value); err != nil {
					return fmt.Errorf("failed to set %v: %w", key, err)
				}
			}

			for _, verr := range cfg.Validate() {
				log.Warn(verr.Error())
			}

			if cmd.Flags().Changed("logger") {
				kind, _ := cmd.Flags().GetString("logger")
				l, err := logger.NewLoggerFor(kind)
				if err != nil {
					return err
				}
				log = l
				cmd.SetContext(logger.WithLogger(cmd.Context(), log))
			}

			if opts.Verbose > 0 {
				log.SetLogLevel(logger.LogLevelDebug)
			}

			cfg.NoConfirm = cfg.NoConfirm || opts.NoConfirm
			cfg.Explain = cfg.Explain || opts.Explain

			// Precedence of color settings:
			// 1. --color-always -> true
			// 2. NO_COLOR=1 -> false, fatih/color already takes this into account
			// 3. `color` setting from config (default: true)
			if opts.ColorAlways {
				color.NoColor = false
			} else if os.Getenv("NO_COLOR") == "" {
				color.NoColor = !cfg.UseColor
			}

			return nil
		},
	}

	cmd.SetContext(cmdCtx)

	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetUsageTemplate(helpTemplate)

	boldRed := color.New(color.FgRed).Add(color.Bold)
	cmd.SetErrPrefix(boldRed.Sprint("error:"))

	cmd.Flags().BoolP("help", "h", false, "Show this help menu")
	cmd.Flags().BoolP("version", "v", false, "Display version information")

	cmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "V", "Increase logging verbosity (repeatable)")
	cmd.PersistentFlags().BoolVar(&opts.ColorAlways, "color-always", false, "Always color output when possible")
	cmd.PersistentFlags().BoolVar(&opts.NoConfirm, "no-confirm", false, "Never prompt for confirmation")
	cmd.PersistentFlags().BoolVar(&opts.Explain, "explain", false, "Recorded in settings; does not change failure output")
	cmd.PersistentFlags().StringToStringVar(&opts.ConfigValues, "config", map[string]string{}, "Set a configuration `key=value`")
	cmd.PersistentFlags().String("logger", loggerKind, "Output format {compact,full,pretty,json}")
	cmd.PersistentFlags().String("log-directives", "", "Fine-grained per-module log level directives")

	cmd.AddCommand(installCmd.InstallCommand())
	cmd.AddCommand(uninstallCmd.UninstallCommand())
	cmd.AddCommand(planCmd.PlanCommand())
	cmd.AddCommand(repairCmd.RepairCommand())
	cmd.AddCommand(selftestCmd.SelftestCommand())
	cmd.AddCommand(exportCmd.ExportCommand())
	cmd.AddCommand(completionCmd.CompletionCommand())

	carapace.Gen(cmd.Root())

	return &cmd, nil
}

func Execute() {
	cmd, err := mainCommand()
	if err != nil {
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		// Subcommands route real failures through
		// cmdUtils.CommandErrorHandler, which calls os.Exit with the
		// mapped code itself; reaching here means cobra rejected the
		// invocation before RunE ran (bad flags, unknown subcommand).
		os.Exit(1)
	}
}
