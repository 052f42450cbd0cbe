//go:build !linux && !darwin

package probe

// DetectFilesystemType has no portable implementation outside
// Linux/macOS; the installer does not target other platforms, so this
// is a stub that keeps the package buildable rather than a real probe.
func DetectFilesystemType(path string) string {
	return "unknown"
}
