// Package journal keeps a JSONL history of dictations for later review.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Entry is one recorded dictation exchange.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	Model       string    `json:"model"`
	RawText     string    `json:"raw_text"`
	CleanedText string    `json:"cleaned_text"`
	Context     Context   `json:"context"`
}

// Context records which window the dictation targeted.
type Context struct {
	WindowName          string `json:"window_name"`
	ExtraContextApplied bool   `json:"extra_context_applied"`
}

// Stats summarizes one day's journal file.
type Stats struct {
	Dictations int
	LastEntry  *Entry
}

// Journal appends entries to daily JSONL files.
type Journal struct {
	dir     string
	enabled bool
}

// New creates a Journal writing under dir (default ~/.vox/journal).
// When enabled is false Append is a no-op.
func New(dir string, enabled bool) (*Journal, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".vox", "journal")
	}
	return &Journal{dir: dir, enabled: enabled}, nil
}

// PathFor returns the journal file path for the given day.
func (j *Journal) PathFor(t time.Time) string {
	name := fmt.Sprintf("dictation-%s.jsonl", t.UTC().Format("2006-01-02"))
	return filepath.Join(j.dir, name)
}

// Append records one dictation. Journal failures must never break the
// dictation flow; callers log the returned error and move on.
func (j *Journal) Append(entry Entry) error {
	if !j.enabled {
		return nil
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Context.WindowName == "" {
		entry.Context.WindowName = "Unknown"
	}

	if err := os.MkdirAll(j.dir, dirPerm); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	f, err := os.OpenFile(j.PathFor(entry.Timestamp), os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open journal file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}

	return nil
}

// TodayStats parses today's journal file. A missing file yields zero stats.
func (j *Journal) TodayStats() (*Stats, error) {
	return ParseFile(j.PathFor(time.Now()))
}

// ParseFile reads a day's JSONL file into summary statistics. Lines that
// fail to parse are skipped rather than failing the summary.
func ParseFile(path string) (*Stats, error) {
	stats := &Stats{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, fmt.Errorf("open journal file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		stats.Dictations++
		e := entry
		stats.LastEntry = &e
	}

	return stats, scanner.Err()
}
