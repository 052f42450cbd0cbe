package action

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/errs"
)

// volumeUUIDPattern extracts the "Volume UUID" line out of `diskutil
// info`'s plain-text output.
var volumeUUIDPattern = regexp.MustCompile(`(?m)^\s*Volume UUID:\s*(\S+)\s*$`)

// CreateAPFSVolume creates the dedicated "Nix Store" APFS volume and a
// synthetic.conf/fstab entry mounting it at /nix on macOS (§4.1, §6):
// synthetic.conf makes the empty mountpoint exist before the APFS
// driver has even started, and the fstab entry, keyed by the volume's
// UUID, remounts it automatically on every subsequent boot. Revert
// removes the fstab and synthetic.conf entries and deletes the volume
// it created; any secure-token/encryption state the OS associated with
// the volume is left untouched and is not reported.
type CreateAPFSVolume struct {
	DiskIdentifier string `json:"disk_identifier"`
	VolumeName     string `json:"volume_name"`
	MountPoint     string `json:"mount_point"`

	created            bool
	wroteSyntheticConf bool
	fstabLine          string
	state              State
}

func NewCreateAPFSVolume(diskIdentifier, volumeName, mountPoint string) *CreateAPFSVolume {
	return &CreateAPFSVolume{DiskIdentifier: diskIdentifier, VolumeName: volumeName, MountPoint: mountPoint, state: StateUncompleted}
}

func (a *CreateAPFSVolume) Typetag() string { return "create_apfs_volume" }

func (a *CreateAPFSVolume) TracingSynopsis() string {
	return fmt.Sprintf("Create APFS volume %q on %s", a.VolumeName, a.DiskIdentifier)
}

func (a *CreateAPFSVolume) TracingSpanData() map[string]string {
	return map[string]string{"disk": a.DiskIdentifier, "volume": a.VolumeName}
}

func (a *CreateAPFSVolume) State() State { return a.state }

func (a *CreateAPFSVolume) Plan(c *Context) error {
	if _, err := c.Sys.FS().Stat(a.MountPoint); err == nil && !c.Force {
		return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.MountPoint, Reason: "mount point already exists"}
	}
	return nil
}

func (a *CreateAPFSVolume) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if err := runCommand(c, "diskutil", "apfs", "addVolume", a.DiskIdentifier, "APFS", a.VolumeName); err != nil {
		return err
	}
	a.created = true

	if err := runCommand(c, "diskutil", "mount", "-mountPoint", a.MountPoint, a.VolumeName); err != nil {
		return err
	}

	if err := a.writeSyntheticConf(); err != nil {
		return err
	}

	if err := a.writeFstabEntry(c); err != nil {
		return err
	}

	a.state = StateCompleted
	return nil
}

// writeSyntheticConf ensures the mountpoint's basename (e.g. "nix") is
// listed in /etc/synthetic.conf, so macOS creates the empty directory
// at boot before any volume is mounted onto it.
func (a *CreateAPFSVolume) writeSyntheticConf() error {
	entry := strings.TrimPrefix(a.MountPoint, "/")

	existing, err := os.ReadFile(constants.SyntheticConfPath)
	if err == nil {
		for _, line := range strings.Split(string(existing), "\n") {
			if strings.TrimSpace(line) == entry {
				return nil
			}
		}
	}

	f, err := os.OpenFile(constants.SyntheticConfPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: constants.SyntheticConfPath, OsError: err}
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, entry); err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: constants.SyntheticConfPath, OsError: err}
	}

	a.wroteSyntheticConf = true
	return nil
}

// writeFstabEntry looks up the volume's UUID via `diskutil info` and
// appends an fstab line mounting it at MountPoint on every boot,
// mirroring the line diskutil itself writes when a user enrolls a
// volume through Disk Utility.
func (a *CreateAPFSVolume) writeFstabEntry(c *Context) error {
	out, err := runCommandOutput(c, "diskutil", "info", a.VolumeName)
	if err != nil {
		return err
	}

	m := volumeUUIDPattern.FindStringSubmatch(out)
	if m == nil {
		return &errs.ActionError{Kind: errs.Command, Program: "diskutil", OsError: fmt.Errorf("could not determine volume UUID for %s", a.VolumeName)}
	}
	uuid := m[1]

	line := fmt.Sprintf("UUID=%s %s apfs rw,noauto,nobrowse,suid,owners", uuid, a.MountPoint)

	existing, err := os.ReadFile(constants.FstabPath)
	if err == nil {
		for _, l := range strings.Split(string(existing), "\n") {
			if strings.TrimSpace(l) == line {
				return nil
			}
		}
	}

	f, err := os.OpenFile(constants.FstabPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: constants.FstabPath, OsError: err}
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: constants.FstabPath, OsError: err}
	}

	a.fstabLine = line
	return nil
}

func (a *CreateAPFSVolume) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}

	if a.fstabLine != "" {
		removeLine(constants.FstabPath, a.fstabLine)
	}

	if a.wroteSyntheticConf {
		removeLine(constants.SyntheticConfPath, strings.TrimPrefix(a.MountPoint, "/"))
	}

	if a.created {
		_ = runCommand(c, "diskutil", "unmount", "force", a.MountPoint)
		if err := runCommand(c, "diskutil", "apfs", "deleteVolume", a.VolumeName); err != nil {
			return err
		}
	}

	a.state = StateUncompleted
	return nil
}

// removeLine rewrites path with every line equal to target dropped,
// leaving anything else a user or other tool has since added intact.
// Failures are swallowed: Revert is best-effort cleanup, not a
// guaranteed restore of pre-install state.
func removeLine(path, target string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != target {
			kept = append(kept, l)
		}
	}

	_ = os.WriteFile(path, []byte(strings.Join(kept, "\n")), 0o644)
}
