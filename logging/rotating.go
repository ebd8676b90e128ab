package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultFilePrefix  = "cardioexplain"
	defaultMaxFileSize = 100 * 1024 * 1024
	cleanupInterval    = 24 * time.Hour
)

var numberedFileRe = regexp.MustCompile(`-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingLogger is an io.Writer that starts a new file every ISO week and
// whenever the current file reaches maxFileSize. Files older than the
// retention period are removed by a background sweep.
type RotatingLogger struct {
	logDir      string
	prefix      string
	retention   time.Duration
	maxFileSize int64

	mu          sync.Mutex
	currentFile *os.File
	currentWeek string
	currentSize atomic.Int64
	closed      bool

	cancel    context.CancelFunc
	sweepDone chan struct{}
	closeOnce sync.Once
}

// NewRotatingLogger creates a rotating logger with the default 100MB size cap.
func NewRotatingLogger(logDir string, retentionWeeks int) *RotatingLogger {
	return NewRotatingLoggerWithSizeLimit(logDir, retentionWeeks, defaultMaxFileSize)
}

// NewRotatingLoggerWithSizeLimit creates a rotating logger. A maxFileSize of
// zero disables size based rotation. The file is opened lazily on first write.
func NewRotatingLoggerWithSizeLimit(logDir string, retentionWeeks int, maxFileSize int64) *RotatingLogger {
	return &RotatingLogger{
		logDir:      logDir,
		prefix:      defaultFilePrefix,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
	}
}

// getWeekKey returns the week key in YYYY-Www format (ISO week)
func getWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (rl *RotatingLogger) baseName(week string) string {
	return fmt.Sprintf("%s-%s.log", rl.prefix, week)
}

// open opens the file for the current week (caller must hold mu)
func (rl *RotatingLogger) open(week string, sizeExceeded bool) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			slog.Warn("Failed to close log file during rotation", "error", err)
		}
		rl.currentFile = nil
	}

	name := rl.pickFile(week, sizeExceeded)
	path := filepath.Join(rl.logDir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	rl.currentFile = file
	rl.currentWeek = week
	rl.currentSize.Store(size)
	return nil
}

// pickFile returns the name of the file to append to: the week's base file
// while it has room, then numbered overflow files (_01, _02, ...).
func (rl *RotatingLogger) pickFile(week string, sizeExceeded bool) string {
	base := rl.baseName(week)
	if !sizeExceeded {
		info, err := os.Stat(filepath.Join(rl.logDir, base))
		if err != nil || rl.maxFileSize == 0 || info.Size() < rl.maxFileSize {
			return base
		}
	}

	highest, lastPath, lastSize := rl.highestNumbered(week)
	if lastPath != "" && lastSize < rl.maxFileSize && !sizeExceeded {
		return filepath.Base(lastPath)
	}

	return fmt.Sprintf("%s-%s_%02d.log", rl.prefix, week, highest+1)
}

func (rl *RotatingLogger) highestNumbered(week string) (int, string, int64) {
	matches, _ := filepath.Glob(filepath.Join(rl.logDir, fmt.Sprintf("%s-%s_??.log", rl.prefix, week)))

	highest := 0
	var lastPath string
	var lastSize int64
	for _, match := range matches {
		m := numberedFileRe.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if num <= highest {
			continue
		}
		highest = num
		lastPath = match
		lastSize = 0
		if info, err := os.Stat(match); err == nil {
			lastSize = info.Size()
		}
	}

	return highest, lastPath, lastSize
}

// Write writes p to the current log file, rotating first if the week changed
// or p would push the file past its size cap.
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return 0, fmt.Errorf("log file %s is closed", rl.prefix)
	}

	week := getWeekKey(time.Now())
	sizeExceeded := false
	needsOpen := rl.currentFile == nil || rl.currentWeek != week
	if !needsOpen && rl.maxFileSize > 0 && rl.currentSize.Load()+int64(len(p)) > rl.maxFileSize {
		needsOpen = true
		sizeExceeded = true
	}

	if needsOpen {
		if err := rl.open(week, sizeExceeded); err != nil {
			return 0, err
		}
	}

	n, err := rl.currentFile.Write(p)
	rl.currentSize.Add(int64(n))
	return n, err
}

// startSweeper launches the background retention sweep.
func (rl *RotatingLogger) startSweeper(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	rl.cancel = cancel
	rl.sweepDone = make(chan struct{})

	go func() {
		defer close(rl.sweepDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := rl.cleanupOldLogs(); err != nil {
					slog.Warn("Failed to clean up old log files", "error", err)
				}
			}
		}
	}()
}

// cleanupOldLogs removes this logger's files older than the retention period
// and returns how many were deleted.
func (rl *RotatingLogger) cleanupOldLogs() (int, error) {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().Add(-rl.retention)
	deleted := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, rl.prefix+"-") || !strings.HasSuffix(name, ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(rl.logDir, name)); err == nil {
			deleted++
		}
	}

	if deleted > 0 {
		// stdout rather than slog, the file handler writes through us
		fmt.Printf("Cleaned up %d old log files\n", deleted)
	}

	return deleted, nil
}

// Close stops the retention sweep and closes the current file.
func (rl *RotatingLogger) Close() error {
	var err error
	rl.closeOnce.Do(func() {
		if rl.cancel != nil {
			rl.cancel()
			<-rl.sweepDone
		}

		rl.mu.Lock()
		defer rl.mu.Unlock()
		rl.closed = true
		if rl.currentFile != nil {
			err = rl.currentFile.Close()
			rl.currentFile = nil
		}
	})
	return err
}
