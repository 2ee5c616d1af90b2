package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix         = "drugstore-"
	defaultMaxFileSize = 100 * 1024 * 1024
	cleanupInterval    = 24 * time.Hour
)

var numberedFile = regexp.MustCompile(`^drugstore-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingLogger writes to one file per ISO week, opening numbered siblings
// (drugstore-2026-W42_01.log, ...) once a file reaches maxFileSize.
type RotatingLogger struct {
	dir         string
	retention   time.Duration
	maxFileSize int64

	mu   sync.Mutex
	file *os.File
	week string
	size int64

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewRotatingLogger opens the current week's file in dir and starts the daily
// retention sweep.
func NewRotatingLogger(dir string, retentionWeeks int, maxFileSize int64) (*RotatingLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}

	rl := &RotatingLogger{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	rl.mu.Lock()
	err := rl.openLocked(weekKey(time.Now()), false)
	rl.mu.Unlock()
	if err != nil {
		return nil, err
	}

	go rl.sweep()
	return rl, nil
}

// weekKey returns the ISO week as YYYY-Www.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write implements io.Writer.
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := weekKey(time.Now())
	switch {
	case rl.file == nil || rl.week != week:
		if err := rl.openLocked(week, false); err != nil {
			return 0, err
		}
	case rl.size+int64(len(p)) > rl.maxFileSize:
		if err := rl.openLocked(week, true); err != nil {
			return 0, err
		}
	}

	n, err := rl.file.Write(p)
	rl.size += int64(n)
	return n, err
}

// openLocked switches to the file for week. full forces a new numbered file.
func (rl *RotatingLogger) openLocked(week string, full bool) error {
	if rl.file != nil {
		if err := rl.file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
		rl.file = nil
	}

	name := rl.pickFile(week, full)
	path := filepath.Join(rl.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	rl.file = f
	rl.week = week
	rl.size = size
	return nil
}

func (rl *RotatingLogger) pickFile(week string, full bool) string {
	highest, size := rl.highestNumbered(week)
	switch {
	case full:
		return numberedName(week, highest+1)
	case highest > 0 && size < rl.maxFileSize:
		return numberedName(week, highest)
	case highest > 0:
		return numberedName(week, highest+1)
	}

	base := filePrefix + week + ".log"
	if info, err := os.Stat(filepath.Join(rl.dir, base)); err == nil && info.Size() >= rl.maxFileSize {
		return numberedName(week, 1)
	}
	return base
}

func numberedName(week string, n int) string {
	return fmt.Sprintf("%s%s_%02d.log", filePrefix, week, n)
}

// highestNumbered returns the largest sequence number used for week and the
// size of that file.
func (rl *RotatingLogger) highestNumbered(week string) (int, int64) {
	matches, _ := filepath.Glob(filepath.Join(rl.dir, filePrefix+week+"_??.log"))

	highest := 0
	var size int64
	for _, match := range matches {
		m := numberedFile.FindStringSubmatch(filepath.Base(match))
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if n <= highest {
			continue
		}
		highest = n
		size = 0
		if info, err := os.Stat(match); err == nil {
			size = info.Size()
		}
	}
	return highest, size
}

// Cleanup removes log files last modified before the retention window and
// returns how many were deleted.
func (rl *RotatingLogger) Cleanup(now time.Time) (int, error) {
	entries, err := os.ReadDir(rl.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := now.Add(-rl.retention)
	deleted := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(rl.dir, name)); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

func (rl *RotatingLogger) sweep() {
	defer close(rl.done)
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			// Console only, the file handler may be what we're cleaning
			if n, err := rl.Cleanup(now); err != nil {
				fmt.Fprintf(os.Stderr, "log cleanup failed: %v\n", err)
			} else if n > 0 {
				fmt.Fprintf(os.Stdout, "Cleaned up %d old log files\n", n)
			}
		}
	}
}

// Close stops the sweep and closes the current file. Safe to call twice.
func (rl *RotatingLogger) Close() error {
	var err error
	rl.once.Do(func() {
		close(rl.stop)
		<-rl.done

		rl.mu.Lock()
		defer rl.mu.Unlock()
		if rl.file != nil {
			err = rl.file.Close()
			rl.file = nil
		}
	})
	return err
}

// newLogger builds the console + file logger described by opts.
func newLogger(opts Options) (*slog.Logger, *RotatingLogger) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	consoleHandler := slog.NewTextHandler(console, handlerOpts)

	if opts.Dir == "" {
		return slog.New(consoleHandler), nil
	}

	retention := opts.RetentionWeeks
	if retention <= 0 {
		retention = 4
	}
	file, err := NewRotatingLogger(opts.Dir, retention, opts.MaxFileSize)
	if err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("File logging disabled", "error", err)
		return logger, nil
	}

	// Console gets text, the file gets JSON
	return slog.New(&multiHandler{handlers: []slog.Handler{
		consoleHandler,
		slog.NewJSONHandler(file, handlerOpts),
	}}), file
}

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}

var _ io.Writer = (*RotatingLogger)(nil)
