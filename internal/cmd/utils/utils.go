package cmdUtils

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"

	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/spf13/cobra"
)

func SetHelpFlagText(cmd *cobra.Command) {
	cmd.Flags().BoolP("help", "h", false, "Show this help menu")
}

var ErrCommand = errors.New("command error")

// CommandErrorHandler replaces a returned error with the generic
// ErrCommand and exits with the code the §7 taxonomy assigns it, so that
// cobra's own error printing doesn't duplicate a message the command
// has already logged.
func CommandErrorHandler(err error) error {
	if err != nil {
		os.Exit(errs.ExitCode(err))
		return ErrCommand
	}
	return nil
}

func AlignedOptions(options map[string]string) string {
	maxLen := 0
	for cmd := range options {
		if len(cmd) > maxLen {
			maxLen = len(cmd)
		}
	}

	result := ""
	format := fmt.Sprintf("  %%-%ds  %%s\n", maxLen)

	keys := slices.Collect(maps.Keys(options))
	sort.Strings(keys)

	for _, cmd := range keys {
		desc := options[cmd]
		result += fmt.Sprintf(format, cmd, desc)
	}

	return result
}
