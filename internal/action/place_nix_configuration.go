package action

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/errs"
)

// nixConfLinePattern matches a well-formed `key = value` nix.conf line,
// the shape nix.custom.conf lines must follow to be merged in as-is.
var nixConfLinePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\s*=.*$`)

// PlaceNixConfiguration writes the installer-owned nix.conf, combining
// the canonical defaults (§6) with any --extra-conf lines, the
// optional --ssl-cert-file override, and, on Linux, the Linux-only
// defaults. Any pre-existing /etc/nix/nix.custom.conf is folded in
// afterward: well-formed lines are carried through unchanged, anything
// that doesn't look like `key = value` is kept but comment-prefixed
// rather than dropped, so an operator can see what was rejected. It
// delegates the actual file write to CreateFile so conflict/adopt
// classification stays in one place.
type PlaceNixConfiguration struct {
	Path        string   `json:"path"`
	ExtraConf   []string `json:"extra_conf"`
	Linux       bool     `json:"linux"`
	SSLCertFile string   `json:"ssl_cert_file"`
	Force       bool     `json:"force"`

	file *CreateFile
}

func NewPlaceNixConfiguration(path string, extraConf []string, linux bool, sslCertFile string, force bool) *PlaceNixConfiguration {
	return &PlaceNixConfiguration{Path: path, ExtraConf: extraConf, Linux: linux, SSLCertFile: sslCertFile, Force: force}
}

func (a *PlaceNixConfiguration) Typetag() string { return "place_nix_configuration" }

func (a *PlaceNixConfiguration) TracingSynopsis() string {
	return fmt.Sprintf("Place Nix configuration at %s", a.Path)
}

func (a *PlaceNixConfiguration) TracingSpanData() map[string]string {
	return map[string]string{"path": a.Path}
}

func (a *PlaceNixConfiguration) State() State {
	if a.file == nil {
		return StateUncompleted
	}
	return a.file.State()
}

func (a *PlaceNixConfiguration) render(c *Context) []byte {
	var b strings.Builder
	for _, line := range constants.CanonicalNixConfDefaults {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if a.Linux {
		for _, line := range constants.LinuxOnlyNixConfDefaults {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if a.SSLCertFile != "" {
		fmt.Fprintf(&b, "ssl-cert-file = %s\n", a.SSLCertFile)
	}
	for _, line := range a.ExtraConf {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.Write(a.renderCustomConf(c))
	return []byte(b.String())
}

// renderCustomConf folds constants.NixCustomConfPath into the rendered
// output if it exists, per §4.1's optional nix.custom.conf composition.
func (a *PlaceNixConfiguration) renderCustomConf(c *Context) []byte {
	data, err := c.Sys.FS().ReadFile(constants.NixCustomConfPath)
	if err != nil {
		return nil
	}

	var b strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "#") || nixConfLinePattern.MatchString(trimmed) {
			b.WriteString(line)
		} else {
			b.WriteString("# ")
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func (a *PlaceNixConfiguration) Plan(c *Context) error {
	a.file = NewCreateFile(a.Path, "", "", 0o644, a.render(c), a.Force)
	if err := a.file.Plan(c); err != nil {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.Path, Reason: err.Error()}
	}
	return nil
}

func (a *PlaceNixConfiguration) Execute(c *Context) error { return a.file.Execute(c) }

func (a *PlaceNixConfiguration) Revert(c *Context) error { return a.file.Revert(c) }
