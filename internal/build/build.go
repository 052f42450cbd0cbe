package build

import (
	"github.com/nix-community/nix-installer/internal/build/vars"
)

func boolCheck(varName string, value string) {
	if value != "true" && value != "false" {
		panic("Compile-time variable internal.build." + varName + " is not a value of either 'true' or 'false'; this application was compiled incorrectly")
	}
}

func boolCast(value string) bool {
	switch value {
	case "true":
		return true
	case "false":
		return false
	default:
		panic("unreachable, this variable has not been bool-checked properly")
	}
}

func Version() string {
	return vars.Version
}

func GitRevision() string {
	return vars.GitRevision
}

// Determinate reports whether this binary was built to install the
// Determinate Nix variant rather than upstream Nix.
func Determinate() bool {
	return boolCast(vars.Determinate)
}

func init() {
	boolCheck("Determinate", vars.Determinate)
}
