package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fixedClock returns a clock the test can move forward
func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}
	return clock, advance
}

func TestNewLogRotator(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock, _ := fixedClock(start)

	tests := []struct {
		name   string
		subdir string
		useUTC bool
	}{
		{"Flat directory", "logs", true},
		{"Nested directory", "a/b/logs", true},
		{"Local time", "local", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), tt.subdir)

			rotator, err := NewLogRotator(dir, tt.useUTC, quietLogger(), withClock(clock))
			require.NoError(t, err)
			defer rotator.Close()

			want := filepath.Join(dir, "uat_2024-03-01.log")
			assert.Equal(t, want, rotator.GetCurrentLogFile())
			assert.FileExists(t, want)
		})
	}
}

func TestNewLogRotator_DirectoryIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	rotator, err := NewLogRotator(path, true, quietLogger())
	assert.Error(t, err)
	assert.Nil(t, rotator)
}

func TestLogRotator_Write(t *testing.T) {
	rotator, err := NewLogRotator(t.TempDir(), true, quietLogger())
	require.NoError(t, err)

	record := "DOWNLINK\n00abcdef\n"
	n, err := rotator.Write([]byte(record))
	require.NoError(t, err)
	assert.Equal(t, len(record), n)

	path := rotator.GetCurrentLogFile()
	require.NoError(t, rotator.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, record, string(content))

	// Writes after Close fail instead of reopening a file
	_, err = rotator.Write([]byte("late\n"))
	assert.ErrorIs(t, err, errClosed)
}

func TestLogRotator_GetLogFiles(t *testing.T) {
	dir := t.TempDir()
	clock, _ := fixedClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	rotator, err := NewLogRotator(dir, true, quietLogger(), withClock(clock))
	require.NoError(t, err)
	defer rotator.Close()

	for _, name := range []string{"uat_2024-02-28.log.gz", "uat_2024-02-29.log", "other.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := rotator.GetLogFiles()
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{"uat_2024-02-28.log.gz", "uat_2024-02-29.log", "uat_2024-03-01.log"}, names)
}

func TestLogRotator_CleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	clock, _ := fixedClock(now)

	rotator, err := NewLogRotator(dir, true, quietLogger(), withClock(clock))
	require.NoError(t, err)
	defer rotator.Close()

	stale := filepath.Join(dir, "uat_2024-03-01.log.gz")
	recent := filepath.Join(dir, "uat_2024-03-18.log.gz")
	for path, age := range map[string]int{stale: 19, recent: 2} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		mtime := now.AddDate(0, 0, -age)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}

	require.NoError(t, rotator.CleanupOldLogs(7))

	assert.NoFileExists(t, stale)
	assert.FileExists(t, recent)
	assert.FileExists(t, rotator.GetCurrentLogFile())
}

func TestLogRotator_CleanupOldLogs_InvalidMaxDays(t *testing.T) {
	rotator, err := NewLogRotator(t.TempDir(), true, quietLogger())
	require.NoError(t, err)
	defer rotator.Close()

	for _, days := range []int{0, -1} {
		t.Run(fmt.Sprint(days), func(t *testing.T) {
			err := rotator.CleanupOldLogs(days)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "maxDays must be positive")
		})
	}
}

func TestLogRotator_CompressLogFile(t *testing.T) {
	dir := t.TempDir()
	rotator, err := NewLogRotator(dir, true, quietLogger())
	require.NoError(t, err)
	defer rotator.Close()

	path := filepath.Join(dir, "uat_2023-01-01.log")
	content := "DOWNLINK\n00abcdef\n\nUPLINK\n3c6c;\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rotator.compressLogFile("2023-01-01")

	assert.NoFileExists(t, path)

	gzFile, err := os.Open(path + ".gz")
	require.NoError(t, err)
	defer gzFile.Close()

	gz, err := gzip.NewReader(gzFile)
	require.NoError(t, err)
	defer gz.Close()
	assert.Equal(t, "uat_2023-01-01.log", gz.Name)

	got, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	// A day with no file is skipped
	rotator.compressLogFile("2023-01-02")
	assert.NoFileExists(t, filepath.Join(dir, "uat_2023-01-02.log.gz"))
}

func TestLogRotator_DateRotation(t *testing.T) {
	dir := t.TempDir()
	clock, advance := fixedClock(time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC))

	rotator, err := NewLogRotator(dir, true, quietLogger(), withClock(clock))
	require.NoError(t, err)
	defer rotator.Close()

	firstFile := rotator.GetCurrentLogFile()
	assert.Equal(t, filepath.Join(dir, "uat_2024-03-01.log"), firstFile)

	_, err = rotator.Write([]byte("before midnight\n"))
	require.NoError(t, err)

	rotator.checkRotation()
	assert.Equal(t, firstFile, rotator.GetCurrentLogFile())

	advance(2 * time.Minute)
	rotator.checkRotation()

	secondFile := rotator.GetCurrentLogFile()
	assert.Equal(t, filepath.Join(dir, "uat_2024-03-02.log"), secondFile)

	_, err = rotator.Write([]byte("after midnight\n"))
	require.NoError(t, err)

	// Close waits for the background compression
	require.NoError(t, rotator.Close())

	assert.NoFileExists(t, firstFile)
	assert.FileExists(t, firstFile+".gz")

	content, err := os.ReadFile(secondFile)
	require.NoError(t, err)
	assert.Equal(t, "after midnight\n", string(content))
}

func TestLogRotator_Retention(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock, advance := fixedClock(start)

	stale := filepath.Join(dir, "uat_2024-01-01.log.gz")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))
	old := start.AddDate(0, 0, -60)
	require.NoError(t, os.Chtimes(stale, old, old))

	rotator, err := NewLogRotator(dir, true, quietLogger(), withClock(clock), WithRetention(30))
	require.NoError(t, err)
	defer rotator.Close()

	// Cleanup only runs on rotation
	assert.FileExists(t, stale)

	advance(24 * time.Hour)
	rotator.checkRotation()

	assert.NoFileExists(t, stale)
}

func TestLogRotator_ConcurrentWrites(t *testing.T) {
	rotator, err := NewLogRotator(t.TempDir(), true, quietLogger())
	require.NoError(t, err)
	defer rotator.Close()

	const writers, records = 8, 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < records; j++ {
				if _, err := fmt.Fprintf(rotator, "writer-%d-record-%d\n", id, j); err != nil {
					t.Errorf("write failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	content, err := os.ReadFile(rotator.GetCurrentLogFile())
	require.NoError(t, err)
	assert.Contains(t, string(content), "writer-0-record-0\n")
	assert.Contains(t, string(content), fmt.Sprintf("writer-%d-record-%d\n", writers-1, records-1))
}

func BenchmarkLogRotator_Write(b *testing.B) {
	rotator, err := NewLogRotator(b.TempDir(), true, quietLogger())
	require.NoError(b, err)
	defer rotator.Close()

	data := []byte("MSG,3,1,11225087,ABCDEF,11225087,2024/03/01,12:00:00.000,2024/03/01,12:00:00.000,,1475,,,,,,,,,,0\n")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := rotator.Write(data); err != nil {
			b.Fatal(err)
		}
	}
}
