package export

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cmdOpts "github.com/nix-community/nix-installer/internal/cmd/opts"
	cmdUtils "github.com/nix-community/nix-installer/internal/cmd/utils"
)

// bindings are the environment variables a shell needs to pick up a
// freshly installed Nix without sourcing the full profile.d hook,
// useful for non-interactive shells and process managers.
var bindings = []struct {
	Name  string
	Value string
}{
	{"NIX_PROFILES", "/nix/var/nix/profiles/default /root/.nix-profile"},
	{"NIX_SSL_CERT_FILE", "/nix/var/nix/profiles/default/etc/ssl/certs/ca-bundle.crt"},
	{"PATH", "/nix/var/nix/profiles/default/bin:$PATH"},
}

func ExportCommand() *cobra.Command {
	o := cmdOpts.ExportOpts{Format: "sh"}

	cmd := cobra.Command{
		Use:   "export",
		Short: "Print environment bindings for a Nix installation",
		Long:  "Emit the environment variable bindings a shell profile hook needs to pick up Nix, in the requested format.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdUtils.CommandErrorHandler(exportMain(&o))
		},
	}

	cmd.Flags().StringVar(&o.Format, "format", "sh", "Output format {sh, null-separated, space-newline-separated}")

	cmdUtils.SetHelpFlagText(&cmd)

	return &cmd
}

func exportMain(o *cmdOpts.ExportOpts) error {
	switch o.Format {
	case "sh":
		for _, b := range bindings {
			fmt.Printf("export %s=%q\n", b.Name, b.Value)
		}
	case "null-separated":
		var parts []string
		for _, b := range bindings {
			parts = append(parts, fmt.Sprintf("%s=%s", b.Name, b.Value))
		}
		fmt.Print(strings.Join(parts, "\x00"))
	case "space-newline-separated":
		for _, b := range bindings {
			fmt.Printf("%s=%s\n", b.Name, b.Value)
		}
	default:
		return fmt.Errorf("unknown export format %q", o.Format)
	}

	return nil
}
