package planner

import (
	"fmt"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/plan"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/settings"
)

// Linux produces: ProvisionSelinux (if applicable) -> CreateNixTree ->
// ProvisionNix -> ConfigureNix -> ConfigureInitService ->
// SetupDefaultProfile, matching §4.2's description of the Linux
// planner's action order.
func Linux(s *settings.Settings, snap *probe.Snapshot) (*plan.Plan, error) {
	if s.Init == settings.InitSystemLaunchd {
		return nil, &errs.PlanError{Kind: errs.UnsupportedPlatform, Resource: "init=launchd", Reason: "launchd is not available on Linux"}
	}

	var steps []action.Action

	if snap.SELinux == probe.SELinuxEnforcing {
		steps = append(steps, action.NewConfigureSELinux(
			"/nix/selinux/nix.pp",
			constants.SELinuxModuleName,
			true,
		))
	}

	steps = append(steps, createNixTree(s)...)
	steps = append(steps, provisionNix(s, false)...)
	steps = append(steps, configureNix(s, true)...)

	if snap.Init == settings.InitSystemSystemd && snap.Container == probe.ContainerNone && !s.NoStartDaemon {
		steps = append(steps, configureSystemdInitService(s)...)
	} else {
		steps = append(steps, action.NewConfigureInitService("none", "", ""))
	}

	if s.ModifyProfile {
		steps = append(steps, setupDefaultProfile()...)
	}

	root := action.NewComposite(fmt.Sprintf("Install Nix (%s)", snap.DistroFamily), action.Sequential, steps...)
	return plan.New("linux", s, root), nil
}

func createNixTree(s *settings.Settings) []action.Action {
	steps := []action.Action{
		action.NewCreateDirectory(constants.NixRoot, "", "", 0o755, s.Force),
		action.NewCreateGroup(s.NixBuildGroupName, int(s.NixBuildGroupID)),
	}

	userNames := buildUserNames(s.NixBuildUserPrefix, s.NixBuildUserCount)
	for i, name := range userNames {
		uid := int(s.NixBuildUserIDBase) + i + 1
		steps = append(steps, action.NewCreateUser(name, uid, s.NixBuildGroupName, "Nix build user", "/usr/sbin/nologin", "/var/empty"))
	}

	return steps
}

func provisionNix(s *settings.Settings, linuxOptimise bool) []action.Action {
	return []action.Action{
		action.NewFetchAndUnpackNix(s.NixPackageURL, "", constants.NixTempInstallDir, "", s.Proxy, s.SSLCertFile),
		action.NewMoveUnpackedNix(constants.NixTempInstallDir, constants.NixStoreDirectory),
	}
}

func configureNix(s *settings.Settings, linux bool) []action.Action {
	return []action.Action{
		action.NewCreateDirectory(constants.NixConfDirectory, "", "", 0o755, s.Force),
		action.NewPlaceNixConfiguration(constants.NixConfPath, s.ExtraConf, linux, s.SSLCertFile, s.Force),
	}
}

// nixDaemonServiceUnit and nixDaemonSocketUnit are the systemd units
// this installer owns, socket-activating nix-daemon the same way
// upstream Nix's own shell installer does.
const nixDaemonServiceUnit = `[Unit]
Description=Nix Daemon
Documentation=man:nix-daemon
RequiresMountsFor=/nix/store /nix/var

[Service]
ExecStart=/nix/var/nix/profiles/default/bin/nix-daemon
KillMode=process
LimitNOFILE=1048576
`

const nixDaemonSocketUnit = `[Unit]
Description=Nix Daemon Socket
Before=multi-user.target

[Socket]
ListenStream=/nix/var/nix/daemon-socket/socket
SocketMode=0666
Service=nix-daemon.service

[Install]
WantedBy=sockets.target
`

// configureSystemdInitService writes the nix-daemon service and socket
// units before enabling them, so ConfigureInitService's DaemonReload
// finds real unit files on disk rather than assuming the host already
// has them (§4.1, §6's on-disk artifact list).
func configureSystemdInitService(s *settings.Settings) []action.Action {
	unitPath := func(name string) string {
		return constants.SystemdUnitDirectory + "/" + name
	}

	return []action.Action{
		action.NewConfigureSystemdUnit(unitPath(constants.SystemdServiceName), []byte(nixDaemonServiceUnit), s.Force),
		action.NewConfigureSystemdUnit(unitPath(constants.SystemdSocketName), []byte(nixDaemonSocketUnit), s.Force),
		action.NewConfigureInitService("systemd", constants.SystemdSocketName, constants.SystemdServiceName),
	}
}

func setupDefaultProfile() []action.Action {
	snippet := "if [ -e '/nix/var/nix/profiles/default/etc/profile.d/nix-daemon.sh' ]; then\n" +
		". '/nix/var/nix/profiles/default/etc/profile.d/nix-daemon.sh'\n" +
		"fi"
	return shellProfileActions(constants.ShellProfileTargets, snippet)
}
