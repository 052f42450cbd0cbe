package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/nix-community/nix-installer/internal/utils"
)

// jsonRecord is a single line emitted by JSONLogger. One record per call,
// written as a complete JSON object followed by a newline so that external
// tooling (§6 diagnostic collection, systemd journal forwarding) can consume
// the stream without buffering partial lines.
type jsonRecord struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Step    uint   `json:"step,omitempty"`
}

// JSONLogger is the `--logger json` sink. Every line on its writer is a
// complete, independently-parseable record; level filtering happens the
// same way it does for ConsoleLogger, but nothing is ever colorized.
type JSONLogger struct {
	w io.Writer
	m sync.Mutex

	level      LogLevel
	stepNumber uint
}

func NewJSONLogger(w io.Writer) *JSONLogger {
	return &JSONLogger{w: w, level: LogLevelInfo}
}

func (l *JSONLogger) SetLogLevel(level LogLevel) {
	l.level = level
}

func (l *JSONLogger) GetLogLevel() LogLevel {
	return l.level
}

func (l *JSONLogger) emit(level, message string) {
	l.m.Lock()
	defer l.m.Unlock()

	rec := jsonRecord{
		Time:    time.Now().UTC().Format(time.RFC3339Nano),
		Level:   level,
		Message: message,
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return
	}

	fmt.Fprintln(l.w, string(b))
}

func (l *JSONLogger) Debug(v ...any) {
	if l.level > LogLevelDebug {
		return
	}
	l.emit("debug", fmt.Sprint(v...))
}

func (l *JSONLogger) Debugf(format string, v ...any) {
	if l.level > LogLevelDebug {
		return
	}
	l.emit("debug", fmt.Sprintf(format, v...))
}

func (l *JSONLogger) Info(v ...any) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("info", fmt.Sprint(v...))
}

func (l *JSONLogger) Infof(format string, v ...any) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("info", fmt.Sprintf(format, v...))
}

func (l *JSONLogger) Warn(v ...any) {
	if l.level > LogLevelWarn {
		return
	}
	l.emit("warn", fmt.Sprint(v...))
}

func (l *JSONLogger) Warnf(format string, v ...any) {
	if l.level > LogLevelWarn {
		return
	}
	l.emit("warn", fmt.Sprintf(format, v...))
}

func (l *JSONLogger) Error(v ...any) {
	if l.level > LogLevelError {
		return
	}
	l.emit("error", fmt.Sprint(v...))
}

func (l *JSONLogger) Errorf(format string, v ...any) {
	if l.level > LogLevelError {
		return
	}
	l.emit("error", fmt.Sprintf(format, v...))
}

func (l *JSONLogger) Print(v ...any) {
	l.emit("print", fmt.Sprint(v...))
}

func (l *JSONLogger) Printf(format string, v ...any) {
	l.emit("print", fmt.Sprintf(format, v...))
}

func (l *JSONLogger) CmdArray(argv []string) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("cmd", utils.EscapeAndJoinArgs(argv))
}

func (l *JSONLogger) Step(message string) {
	if l.level > LogLevelInfo {
		return
	}

	l.m.Lock()
	defer l.m.Unlock()

	l.stepNumber++
	step := l.stepNumber

	rec := jsonRecord{
		Time:    time.Now().UTC().Format(time.RFC3339Nano),
		Level:   "info",
		Message: message,
		Step:    step,
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return
	}

	fmt.Fprintln(l.w, string(b))
}

// NewDefaultJSONLogger is a convenience constructor writing to stderr,
// matching the other sinks' default destination.
func NewDefaultJSONLogger() *JSONLogger {
	return NewJSONLogger(os.Stderr)
}
