package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// DailyFileHandler writes log records to one file per calendar day
// (DDMMYYYY.log) in a fixed directory. Lines have the shape
//
//	[YYYY-MM-DD HH:MM:SS] LEVEL message key=value ...
//
// Appends are guarded by an advisory lock on a sidecar file so
// concurrent worker processes appending to the same day's file cannot
// interleave partial lines. Files are never rotated by size.
type DailyFileHandler struct {
	dir   string
	level slog.Level
	attrs []slog.Attr
	mu    sync.Mutex
}

// NewDailyFile creates a handler writing daily log files under dir.
func NewDailyFile(dir string, level slog.Level) (*DailyFileHandler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	return &DailyFileHandler{dir: dir, level: level}, nil
}

func (h *DailyFileHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *DailyFileHandler) Handle(_ context.Context, rec slog.Record) error {
	now := rec.Time
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(now.Format("2006-01-02 15:04:05"))
	b.WriteString("] ")
	b.WriteString(rec.Level.String())
	b.WriteString(" ")
	b.WriteString(rec.Message)
	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteString("\n")

	name := filepath.Join(h.dir, now.Format("02012006")+".log")
	return h.append(name, b.String())
}

// append writes one line in append mode under both an in-process
// mutex and a cross-process advisory lock.
func (h *DailyFileHandler) append(name, line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	fl := flock.New(name + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("logger: lock log file: %w", err)
	}
	defer fl.Unlock() //nolint:errcheck // best-effort release

	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logger: open log file: %w", err)
	}
	defer f.Close()

	_, err = f.WriteString(line)
	return err
}

func (h *DailyFileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &DailyFileHandler{dir: h.dir, level: h.level}
	out.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return out
}

// WithGroup is accepted but flattened: the line format has no nesting.
func (h *DailyFileHandler) WithGroup(string) slog.Handler { return h }

func writeAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteString(" ")
	b.WriteString(a.Key)
	b.WriteString("=")
	b.WriteString(a.Value.String())
}
