// Package constants centralizes the well-known filesystem paths and
// defaults referenced throughout the installer, mirroring how
// nixos-cli keeps its own well-known paths in one place rather than
// scattered across commands.
package constants

const (
	// NixRoot is the top-level directory the installer owns.
	NixRoot = "/nix"

	// ReceiptPath is the canonical on-disk location of the installation
	// receipt (§6).
	ReceiptPath = "/nix/receipt.json"

	// InstallerBinaryPath is where a copy of the running binary is placed
	// as part of the receipt.
	InstallerBinaryPath = "/nix/nix-installer"

	// LockPath is the advisory lock file path guarding concurrent runs.
	LockPath = "/nix/.nix-installer.lock"

	// NixStoreDirectory is the final location of the unpacked Nix store.
	NixStoreDirectory = "/nix/store"

	// NixTempInstallDir is the scratch directory extraction happens under
	// before the atomic move into NixStoreDirectory.
	NixTempInstallDir = "/nix/temp-install-dir"

	// NixConfDirectory and NixConfPath hold the installer-owned nix.conf.
	NixConfDirectory  = "/etc/nix"
	NixConfPath       = "/etc/nix/nix.conf"
	NixCustomConfPath = "/etc/nix/nix.custom.conf"

	// DefaultConfigLocation is where the installer's own settings file
	// is read from, analogous to nixos-cli's DefaultConfigLocation.
	DefaultConfigLocation = "/etc/nix-installer.toml"

	// LegacyReceiptPath is where the upstream (pre-rewrite) installer
	// stored its receipt; consulted by the cure/diagnosis path.
	LegacyReceiptPath = "/nix/receipt.json"

	// ShellProfileBackupSuffix is appended to shell init files the
	// upstream shell-script installer left behind.
	ShellProfileBackupSuffix = ".backup-before-nix"

	// ShellProfileFenceStart and ShellProfileFenceEnd delimit the
	// installer-owned block inside shell init files.
	ShellProfileFenceStart = "# Nix"
	ShellProfileFenceEnd   = "# End Nix"

	// SystemdUnitDirectory holds the systemd units this installer writes.
	SystemdUnitDirectory  = "/etc/systemd/system"
	SystemdServiceName    = "nix-daemon.service"
	SystemdSocketName     = "nix-daemon.socket"
	SystemdDaemonUnitName = "nix-daemon.socket"

	// LaunchdDaemonPlistPath is the launchd unit the macOS planner writes.
	LaunchdDaemonPlistPath = "/Library/LaunchDaemons/org.nixos.nix-daemon.plist"
	LaunchdDaemonLabel     = "org.nixos.nix-daemon"

	// SyntheticConfPath and FstabPath are the macOS-owned files
	// CreateAPFSVolume appends to, so the "Nix Store" volume's
	// mountpoint exists pre-boot and remounts automatically (§4.1, §6).
	SyntheticConfPath = "/etc/synthetic.conf"
	FstabPath         = "/etc/fstab"

	// SELinuxModuleName and DeterminateSELinuxModuleName name the
	// precompiled policy module loaded on enforcing hosts.
	SELinuxModuleName            = "nix"
	DeterminateSELinuxModuleName = "determinate-nix"

	// DefaultBuildGroupNameLinux/Darwin and associated ID bases (§6).
	DefaultBuildGroupNameLinux  = "nixbld"
	DefaultBuildGroupNameDarwin = "nixbld"
	DefaultBuildUserPrefixLinux = "nixbld"
	DefaultBuildUserPrefixDarwin = "_nixbld"

	DefaultBuildGroupIDLinux  = 30000
	DefaultBuildGroupIDDarwin = 350

	DefaultBuildUserIDBaseLinux  = 30000
	DefaultBuildUserIDBaseDarwin = 350

	DefaultBuildUserCount = 32

	// NixOSMarkerFile marks a root as being a NixOS system; reused here
	// only for probes that need to distinguish a NixOS host installing
	// Nix into a container/chroot rootfs from a normal Linux host.
	NixOSMarkerFile = "/etc/NIXOS"

	// DefaultPackageTarballURLTemplate is the release tarball URL pattern.
	// Nothing fills it in: an empty --nix-package-url reaches
	// FetchAndUnpackNix unchanged.
	DefaultPackageTarballURLTemplate = "https://releases.nixos.org/nix/nix-%s/nix-%s-%s.tar.xz"

	// UpgradeNixStorePathURL is written into nix.conf by default (§6).
	UpgradeNixStorePathURL = "https://install.determinate.systems/nix-upgrade/stable/universal"
)

// CanonicalNixConfDefaults are the default lines placed into nix.conf
// by PlaceNixConfiguration, in the order they should be written (§6).
// auto-optimise-store is appended separately for Linux only.
var CanonicalNixConfDefaults = []string{
	"experimental-features = nix-command flakes",
	"bash-prompt-prefix = (nix:$name)\\040",
	"always-allow-substitutes = true",
	"extra-nix-path = nixpkgs=flake:nixpkgs",
	"max-jobs = auto",
	"upgrade-nix-store-path-url = " + UpgradeNixStorePathURL,
}

// LinuxOnlyNixConfDefaults are appended only when targeting Linux.
var LinuxOnlyNixConfDefaults = []string{
	"auto-optimise-store = true",
}

// ShellProfileTargets lists the shell init files ConfigureShellProfile
// may append its fenced block to, keyed by shell family.
var ShellProfileTargets = map[string][]string{
	"bash": {"/etc/bashrc", "/etc/bash.bashrc"},
	"zsh":  {"/etc/zshenv", "/etc/zshrc"},
	"fish": {"/etc/fish/conf.d/nix.fish"},
	"posix": {
		"/etc/profile.d/nix.sh",
	},
}
