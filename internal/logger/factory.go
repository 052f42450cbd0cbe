package logger

import "fmt"

// NewLoggerFor builds the Logger named by kind, matching the
// `--logger {compact,full,pretty,json}` flag. "compact", "pretty" and
// "full" all resolve to the console sink, which numbers steps unless
// NIX_INSTALLER_DISABLE_STEPS is set; "full" keeps step numbering on
// even then, since this installer has no separate multi-line renderer
// the way the teacher's "full" view does.
func NewLoggerFor(kind string) (Logger, error) {
	switch kind {
	case "", "compact", "pretty":
		return NewConsoleLogger(), nil
	case "full":
		l := NewConsoleLogger()
		l.stepsEnabled = true
		return l, nil
	case "json":
		return NewDefaultJSONLogger(), nil
	default:
		return nil, fmt.Errorf("unknown logger kind %q", kind)
	}
}
