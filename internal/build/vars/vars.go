package vars

// Do not change these. These are always going to be set
// at compile-time via -ldflags.

var (
	Version     string = "unknown"
	GitRevision string = "unknown"
	Determinate string = "false"
)
