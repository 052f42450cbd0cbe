//go:build darwin

package probe

import (
	"golang.org/x/sys/unix"
)

// DetectFilesystemType is the macOS counterpart of the Linux statfs
// probe; darwin's Statfs_t reports the filesystem name directly rather
// than a magic number. As on Linux, the result is only recorded in
// Snapshot.NixRootFilesystem; CreateAPFSVolume does not consult it.
func DetectFilesystemType(path string) string {
	var buf unix.Statfs_t

	probePath := path
	for {
		if err := unix.Statfs(probePath, &buf); err == nil {
			return fstypeToString(buf.Fstypename[:])
		}

		parent := parentDir(probePath)
		if parent == probePath {
			return "unknown"
		}
		probePath = parent
	}
}

func fstypeToString(raw []int8) string {
	b := make([]byte, 0, len(raw))
	for _, c := range raw {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return string(b)
}
