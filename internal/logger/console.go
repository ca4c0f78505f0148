// Package logger provides the logging implementations used across
// lingtest: a level-filtered, optionally colorized console logger and a
// run-stamped file logger. Both are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Logger is the minimal leveled contract consumed by the dataset loaders,
// the history store, and the CLI commands.
type Logger interface {
	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Log levels, ordered by severity.
const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[int]string{
	levelTrace: "TRACE",
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
}

// parseLevel maps a level name to its ordinal. Empty or unknown names
// default to info.
func parseLevel(name string) int {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Console writes timestamped, level-filtered messages to a writer. Color
// is enabled automatically when the writer is a terminal.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	level int
	color bool
}

// NewConsole creates a console logger. A nil writer discards everything.
// level is one of trace, debug, info, warn, error (case-insensitive;
// defaults to info).
func NewConsole(w io.Writer, level string) *Console {
	return &Console{
		w:     w,
		level: parseLevel(level),
		color: writerIsTerminal(w),
	}
}

// writerIsTerminal reports whether w is a TTY that can render ANSI colors.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var levelColors = map[int]*color.Color{
	levelTrace: color.New(color.Faint),
	levelDebug: color.New(color.FgCyan),
	levelInfo:  color.New(color.FgGreen),
	levelWarn:  color.New(color.FgYellow),
	levelError: color.New(color.FgRed),
}

func (c *Console) Tracef(format string, args ...any) { c.logf(levelTrace, format, args...) }
func (c *Console) Debugf(format string, args ...any) { c.logf(levelDebug, format, args...) }
func (c *Console) Infof(format string, args ...any)  { c.logf(levelInfo, format, args...) }
func (c *Console) Warnf(format string, args ...any)  { c.logf(levelWarn, format, args...) }
func (c *Console) Errorf(format string, args ...any) { c.logf(levelError, format, args...) }

func (c *Console) logf(level int, format string, args ...any) {
	if c == nil || c.w == nil || level < c.level {
		return
	}

	ts := time.Now().Format("15:04:05")
	tag := levelNames[level]
	if c.color {
		tag = levelColors[level].Sprint(tag)
	}
	msg := fmt.Sprintf(format, args...)

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[%s] %-5s %s\n", ts, tag, msg)
}

// Discard is a logger that drops every message. Useful as a default when a
// caller passes nil.
type Discard struct{}

func (Discard) Tracef(string, ...any) {}
func (Discard) Debugf(string, ...any) {}
func (Discard) Infof(string, ...any)  {}
func (Discard) Warnf(string, ...any)  {}
func (Discard) Errorf(string, ...any) {}

// Or returns log, or a Discard logger when log is nil.
func Or(log Logger) Logger {
	if log == nil {
		return Discard{}
	}
	return log
}
