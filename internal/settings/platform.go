package settings

import (
	"runtime"

	"github.com/nix-community/nix-installer/internal/constants"
)

// defaultInitSystem, defaultBuildGroupName, defaultBuildGroupID, and
// defaultBuildUserPrefix pick the per-OS defaults a Planner would
// otherwise have to special-case (§4.2, §6): macOS gets launchd and the
// `_nixbld`/350 convention, Linux gets systemd and the `nixbld`/30000
// convention.
func defaultInitSystem() InitSystem {
	if runtime.GOOS == "darwin" {
		return InitSystemLaunchd
	}
	return InitSystemSystemd
}

func defaultBuildGroupName() string {
	if runtime.GOOS == "darwin" {
		return constants.DefaultBuildGroupNameDarwin
	}
	return constants.DefaultBuildGroupNameLinux
}

func defaultBuildGroupID() int64 {
	if runtime.GOOS == "darwin" {
		return constants.DefaultBuildGroupIDDarwin
	}
	return constants.DefaultBuildGroupIDLinux
}

func defaultBuildUserPrefix() string {
	if runtime.GOOS == "darwin" {
		return constants.DefaultBuildUserPrefixDarwin
	}
	return constants.DefaultBuildUserPrefixLinux
}
