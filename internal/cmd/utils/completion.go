package cmdUtils

import (
	"os"

	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/spf13/cobra"
)

// PrepareCompletionResources builds the Logger/Settings pair that
// carapace completion callbacks need but that, running outside of the
// normal PersistentPreRunE path, cannot pull off the command context.
func PrepareCompletionResources() (logger.Logger, *settings.Settings) {
	var log logger.Logger
	if debugMode := os.Getenv("NIX_INSTALLER_DEBUG_MODE"); debugMode != "" {
		log = logger.NewConsoleLogger()
	} else {
		log = logger.NewNoOpLogger()
	}

	configLocation := os.Getenv("NIX_INSTALLER_CONFIG")
	if configLocation == "" {
		configLocation = constants.DefaultConfigLocation
	}

	cfg, err := settings.ParseSettings(configLocation)
	if err != nil {
		cfg = settings.NewSettings()
	}

	return log, cfg
}

func DirCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return nil, cobra.ShellCompDirectiveFilterDirs
}

func FileCompletions(extensions ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(extensions) != 0 {
			return extensions, cobra.ShellCompDirectiveFilterFileExt
		} else {
			return nil, cobra.ShellCompDirectiveDefault
		}
	}
}
