//go:build linux

package probe

import (
	"strconv"

	"golang.org/x/sys/unix"
)

// DetectFilesystemType reports the filesystem backing path; Gather
// records it as Snapshot.NixRootFilesystem, which no planner reads. If
// path does not exist yet (pre-install, `/nix` is frequently absent) it
// walks up to the nearest existing ancestor and reports that one's
// filesystem; "unknown" is returned only when no ancestor can be
// stat'ed.
func DetectFilesystemType(path string) string {
	var buf unix.Statfs_t

	probePath := path
	for {
		if err := unix.Statfs(probePath, &buf); err == nil {
			return filesystemMagicName(int64(buf.Type))
		}

		parent := parentDir(probePath)
		if parent == probePath {
			return "unknown"
		}
		probePath = parent
	}
}

// filesystemMagicName maps the handful of statfs magic numbers the
// planners care about; anything unrecognized is reported numerically so
// it still shows up in diagnostics.
func filesystemMagicName(magic int64) string {
	switch magic {
	case 0x9123683e:
		return "btrfs"
	case 0xef53:
		return "ext4"
	case 0x01021994:
		return "tmpfs"
	case 0x794c7630:
		return "overlayfs"
	case 0x58465342:
		return "xfs"
	case 0x6969:
		return "nfs"
	default:
		return "magic:" + strconv.FormatInt(magic, 16)
	}
}
