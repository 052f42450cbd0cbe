// Package probe implements the system probes a Planner consults before
// emitting a Plan (§4.2: "Enumerate prerequisite probes"), and that the
// cure/diagnosis path (§4.4) re-runs against a host with no receipt.
// Every probe here is read-only, mirroring the Action.plan() contract's
// "must not mutate" rule (§4.1).
package probe

import (
	"bufio"
	"os/user"
	"regexp"
	"strconv"
	"strings"

	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
)

// SELinuxMode is the result of reading /sys/fs/selinux/enforce.
type SELinuxMode string

const (
	SELinuxEnforcing SELinuxMode = "enforcing"
	SELinuxPermissive SELinuxMode = "permissive"
	SELinuxDisabled   SELinuxMode = "disabled"
)

// Snapshot is the bundle of probed facts a Planner consults. It is
// gathered once per run and passed alongside Settings into every
// Planner function (§4.2's `(Settings, Probes) → Plan`).
type Snapshot struct {
	Init              settings.InitSystem
	DistroFamily      string
	SELinux           SELinuxMode
	NixRootFilesystem string
	Container         ContainerKind
	SteamDeck         bool
}

// ContainerKind names the sandboxing environment the installer is
// running under, if any. Outside ContainerNone the Linux planner writes
// no systemd units and configures the "none" init service instead.
type ContainerKind string

const (
	ContainerNone   ContainerKind = "none"
	ContainerDocker ContainerKind = "docker"
	ContainerWSL    ContainerKind = "wsl"
	ContainerOther  ContainerKind = "other"
)

// Gather runs every probe in this package against sys and returns the
// aggregate Snapshot a Planner needs.
func Gather(sys system.System) (*Snapshot, error) {
	snap := &Snapshot{
		Init:              DetectInit(sys),
		DistroFamily:      DetectDistroFamily(sys),
		SELinux:           DetectSELinuxMode(sys),
		NixRootFilesystem: DetectFilesystemType("/nix"),
		Container:         DetectContainerEnvironment(sys),
		SteamDeck:         IsSteamDeck(sys),
	}

	return snap, nil
}

// DetectInit reports which service supervisor is present, mirroring
// LocalSystem.IsNixOS's pattern of checking for well-known marker paths
// before falling back to os-release parsing.
func DetectInit(sys system.System) settings.InitSystem {
	if _, err := sys.FS().Stat("/run/systemd/system"); err == nil {
		return settings.InitSystemSystemd
	}

	if _, err := sys.FS().Stat("/Library/LaunchDaemons"); err == nil {
		return settings.InitSystemLaunchd
	}

	return settings.InitSystemNone
}

var osReleaseIDRegex = regexp.MustCompile(`^"?([a-zA-Z0-9_.-]+)"?$`)

// DetectDistroFamily parses /etc/os-release the same way
// LocalSystem.IsNixOS does, returning the lowercased ID field, or
// "darwin" if there is no os-release file and launchd is present.
func DetectDistroFamily(sys system.System) string {
	contents, err := sys.FS().ReadFile("/etc/os-release")
	if err != nil {
		if _, err := sys.FS().Stat("/Library/LaunchDaemons"); err == nil {
			return "darwin"
		}
		return "unknown"
	}

	values := parseOSRelease(strings.NewReader(string(contents)))

	id, ok := values["ID"]
	if !ok {
		return "unknown"
	}

	m := osReleaseIDRegex.FindStringSubmatch(id)
	if m == nil {
		return "unknown"
	}

	return strings.ToLower(m[1])
}

func parseOSRelease(r *strings.Reader) map[string]string {
	values := make(map[string]string)

	s := bufio.NewScanner(r)
	for s.Scan() {
		key, value, found := strings.Cut(s.Text(), "=")
		if !found {
			continue
		}
		values[key] = value
	}

	return values
}

// DetectSELinuxMode reads /sys/fs/selinux/enforce, returning Disabled
// when the file does not exist (no SELinux support compiled in, or a
// non-Linux host).
func DetectSELinuxMode(sys system.System) SELinuxMode {
	contents, err := sys.FS().ReadFile("/sys/fs/selinux/enforce")
	if err != nil {
		return SELinuxDisabled
	}

	switch strings.TrimSpace(string(contents)) {
	case "1":
		return SELinuxEnforcing
	case "0":
		return SELinuxPermissive
	default:
		return SELinuxDisabled
	}
}

func parentDir(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}

// DetectContainerEnvironment distinguishes Docker/WSL from a bare
// metal or VM host; inside a container the Linux planner configures the
// "none" init service instead of the systemd units (§6 scenario 6).
func DetectContainerEnvironment(sys system.System) ContainerKind {
	if _, err := sys.FS().Stat("/.dockerenv"); err == nil {
		return ContainerDocker
	}

	if _, err := sys.FS().Stat("/run/.containerenv"); err == nil {
		return ContainerOther
	}

	if contents, err := sys.FS().ReadFile("/proc/sys/kernel/osrelease"); err == nil {
		if strings.Contains(strings.ToLower(string(contents)), "microsoft") {
			return ContainerWSL
		}
	}

	return ContainerNone
}

// IsSteamDeck reports whether the host identifies as SteamOS, selecting
// the Steam Deck planner variant.
func IsSteamDeck(sys system.System) bool {
	return DetectDistroFamily(sys) == "steamos"
}

// DetectExistingUser looks up name in the system user database,
// recording the "referenced" pre-existing state an Action must honor at
// revert time (§4.1.1): a user that preexisted plan time is never
// deleted on revert.
func DetectExistingUser(name string) (found bool, uid int, err error) {
	u, err := user.Lookup(name)
	if err != nil {
		if _, ok := err.(user.UnknownUserError); ok {
			return false, 0, nil
		}
		return false, 0, err
	}

	id, err := strconv.Atoi(u.Uid)
	if err != nil {
		return true, 0, err
	}

	return true, id, nil
}

// DetectExistingGroup is DetectExistingUser's group analogue.
func DetectExistingGroup(name string) (found bool, gid int, err error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		if _, ok := err.(user.UnknownGroupError); ok {
			return false, 0, nil
		}
		return false, 0, err
	}

	id, err := strconv.Atoi(g.Gid)
	if err != nil {
		return true, 0, err
	}

	return true, id, nil
}
