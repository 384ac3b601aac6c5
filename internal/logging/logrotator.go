// Package logging writes decoded reports to daily rotated files.
package logging

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPrefix names report files uat_YYYY-MM-DD.log
const DefaultPrefix = "uat_"

const dateLayout = "2006-01-02"

var errClosed = errors.New("no current log file")

// LogRotator writes to one file per day and gzips the previous day's file
// once the date changes. It implements io.Writer; writes always land in the
// file for the current date.
type LogRotator struct {
	logDir      string
	useUTC      bool
	maxDays     int
	logger      *logrus.Logger
	now         func() time.Time
	currentFile *os.File
	currentDate string
	mutex       sync.RWMutex
	compressWG  sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// Option configures a LogRotator
type Option func(*LogRotator)

// WithRetention removes rotated files older than maxDays on every rotation check.
// Zero keeps everything.
func WithRetention(maxDays int) Option {
	return func(r *LogRotator) { r.maxDays = maxDays }
}

// withClock is used by tests to drive date changes.
func withClock(now func() time.Time) Option {
	return func(r *LogRotator) { r.now = now }
}

// NewLogRotator creates a new log rotator
func NewLogRotator(logDir string, useUTC bool, logger *logrus.Logger, opts ...Option) (*LogRotator, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	rotator := &LogRotator{
		logDir: logDir,
		useUTC: useUTC,
		logger: logger,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(rotator)
	}

	rotator.mutex.Lock()
	err := rotator.rotateLogFile()
	rotator.mutex.Unlock()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize log file: %w", err)
	}

	return rotator, nil
}

// Start runs the rotation scheduler until ctx is cancelled or the rotator is closed
func (r *LogRotator) Start(ctx context.Context) {
	r.logger.Info("Starting log rotator")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Log rotator stopping")
			return
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.checkRotation()
		}
	}
}

func (r *LogRotator) today() string {
	now := r.now()
	if r.useUTC {
		now = now.UTC()
	}
	return now.Format(dateLayout)
}

func (r *LogRotator) fileFor(date string) string {
	return filepath.Join(r.logDir, fmt.Sprintf("%s%s.log", DefaultPrefix, date))
}

// checkRotation rotates when the date changed since the file was opened
func (r *LogRotator) checkRotation() {
	date := r.today()

	r.mutex.Lock()
	rotated := false
	if r.currentFile != nil && r.currentDate != date {
		r.logger.WithFields(logrus.Fields{
			"old_date": r.currentDate,
			"new_date": date,
		}).Info("Rotating log file")

		if err := r.rotateLogFile(); err != nil {
			r.logger.WithError(err).Error("Failed to rotate log file")
		} else {
			rotated = true
		}
	}
	r.mutex.Unlock()

	if rotated && r.maxDays > 0 {
		if err := r.CleanupOldLogs(r.maxDays); err != nil {
			r.logger.WithError(err).Warn("Failed to clean up old log files")
		}
	}
}

// rotateLogFile opens today's file and schedules compression of the previous
// one. Callers hold the write lock.
func (r *LogRotator) rotateLogFile() error {
	newDate := r.today()

	if r.currentFile != nil {
		oldDate := r.currentDate
		if err := r.currentFile.Close(); err != nil {
			r.logger.WithError(err).Error("Failed to close old log file")
		}
		r.currentFile = nil

		if oldDate != newDate {
			r.compressWG.Add(1)
			go func() {
				defer r.compressWG.Done()
				r.compressLogFile(oldDate)
			}()
		}
	}

	path := r.fileFor(newDate)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file %s: %w", path, err)
	}

	r.currentFile = file
	r.currentDate = newDate

	r.logger.WithField("file", path).Info("Created new log file")
	return nil
}

// compressLogFile gzips the file for date and removes the original
func (r *LogRotator) compressLogFile(date string) {
	logFile := r.fileFor(date)
	gzipFile := logFile + ".gz"

	log := r.logger.WithFields(logrus.Fields{
		"source": logFile,
		"target": gzipFile,
	})
	log.Info("Compressing log file")

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		log.Debug("Log file doesn't exist, skipping compression")
		return
	}

	if err := compressFile(logFile, gzipFile); err != nil {
		log.WithError(err).Error("Failed to compress log file")
		_ = os.Remove(gzipFile)
		return
	}

	if err := os.Remove(logFile); err != nil {
		log.WithError(err).Error("Failed to remove original log file")
		return
	}

	r.logger.WithField("file", gzipFile).Info("Log file compressed successfully")
}

func compressFile(source, target string) error {
	src, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	defer dst.Close()

	gzWriter := gzip.NewWriter(dst)
	gzWriter.Name = filepath.Base(source)
	gzWriter.ModTime = time.Now()

	if _, err := io.Copy(gzWriter, src); err != nil {
		gzWriter.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return dst.Close()
}

// Write appends p to the current day's file
func (r *LogRotator) Write(p []byte) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.currentFile == nil {
		return 0, errClosed
	}
	return r.currentFile.Write(p)
}

// Close closes the current file and waits for pending compressions
func (r *LogRotator) Close() error {
	r.logger.Info("Closing log rotator")

	r.cancel()

	r.mutex.Lock()
	var err error
	if r.currentFile != nil {
		if err = r.currentFile.Close(); err != nil {
			r.logger.WithError(err).Error("Failed to close current log file")
		}
		r.currentFile = nil
	}
	r.mutex.Unlock()

	r.compressWG.Wait()
	return err
}

// GetCurrentLogFile returns the current log file path
func (r *LogRotator) GetCurrentLogFile() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.currentDate == "" {
		return ""
	}
	return r.fileFor(r.currentDate)
}

// GetLogFiles returns all report files, compressed ones included
func (r *LogRotator) GetLogFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(r.logDir, DefaultPrefix+"*.log*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	return files, nil
}

// CleanupOldLogs removes log files older than the specified number of days
func (r *LogRotator) CleanupOldLogs(maxDays int) error {
	if maxDays <= 0 {
		return fmt.Errorf("maxDays must be positive")
	}

	files, err := r.GetLogFiles()
	if err != nil {
		return fmt.Errorf("failed to get log files: %w", err)
	}

	cutoff := r.now().AddDate(0, 0, -maxDays)
	current := r.GetCurrentLogFile()

	removed := 0
	for _, file := range files {
		if file == current {
			continue
		}

		info, err := os.Stat(file)
		if err != nil {
			r.logger.WithError(err).WithField("file", file).Warn("Failed to stat log file")
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				r.logger.WithError(err).WithField("file", file).Error("Failed to remove old log file")
			} else {
				r.logger.WithField("file", file).Info("Removed old log file")
				removed++
			}
		}
	}

	r.logger.WithField("count", removed).Info("Cleaned up old log files")
	return nil
}
