package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File is a leveled logger writing to a run-stamped file, one file per
// process invocation, so consecutive runs never interleave.
type File struct {
	mu    sync.Mutex
	f     *os.File
	level int
	path  string
}

// NewFile creates a file logger under dir, creating the directory if
// needed. The file name carries the start timestamp:
// lingtest-20060102-150405.log.
func NewFile(dir, level string) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("lingtest-%s.log", time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	return &File{f: f, level: parseLevel(level), path: path}, nil
}

// Path returns the log file path.
func (l *File) Path() string {
	return l.path
}

// Close flushes and closes the underlying file.
func (l *File) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

func (l *File) Tracef(format string, args ...any) { l.logf(levelTrace, format, args...) }
func (l *File) Debugf(format string, args ...any) { l.logf(levelDebug, format, args...) }
func (l *File) Infof(format string, args ...any)  { l.logf(levelInfo, format, args...) }
func (l *File) Warnf(format string, args ...any)  { l.logf(levelWarn, format, args...) }
func (l *File) Errorf(format string, args ...any) { l.logf(levelError, format, args...) }

func (l *File) logf(level int, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.f, "[%s] %-5s %s\n", ts, levelNames[level], fmt.Sprintf(format, args...))
}

// Tee fans every message out to several loggers, typically console plus
// file.
type Tee []Logger

func (t Tee) Tracef(format string, args ...any) {
	for _, l := range t {
		l.Tracef(format, args...)
	}
}

func (t Tee) Debugf(format string, args ...any) {
	for _, l := range t {
		l.Debugf(format, args...)
	}
}

func (t Tee) Infof(format string, args ...any) {
	for _, l := range t {
		l.Infof(format, args...)
	}
}

func (t Tee) Warnf(format string, args ...any) {
	for _, l := range t {
		l.Warnf(format, args...)
	}
}

func (t Tee) Errorf(format string, args ...any) {
	for _, l := range t {
		l.Errorf(format, args...)
	}
}
