package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWritesStructuredLines(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{LogDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer logger.Close()

	logger.Info("pipeline complete",
		String("window", "Visual Studio Code"),
		Int("chars", 42),
		Bool("cleanup", true),
		Duration("elapsed", 1500*time.Millisecond),
	)
	logger.Warn("cleanup unavailable, using raw transcript")
	logger.Error("transcription failed", errors.New("connection refused"))

	data, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		`INFO  pipeline complete window="Visual Studio Code" chars=42 cleanup=true elapsed=1.5s`,
		"WARN  cleanup unavailable",
		`ERROR transcription failed error="connection refused"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q in:\n%s", want, content)
		}
	}
}

func TestMinLevelFiltersDebug(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{LogDir: dir, MinLevel: LevelInfo})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer logger.Close()

	logger.Debug("hidden")
	logger.Info("visible")

	data, _ := os.ReadFile(logger.LogPath())
	if strings.Contains(string(data), "hidden") {
		t.Error("expected debug line to be filtered")
	}
	if !strings.Contains(string(data), "visible") {
		t.Error("expected info line to be written")
	}
}

func TestSweepRemovesExpiredLogs(t *testing.T) {
	dir := t.TempDir()

	oldDate := time.Now().UTC().AddDate(0, 0, -40).Format("2006-01-02")
	oldPath := filepath.Join(dir, fmt.Sprintf("vox-%s.log", oldDate))
	if err := os.WriteFile(oldPath, []byte("old\n"), 0644); err != nil {
		t.Fatalf("write old log: %v", err)
	}
	keepPath := filepath.Join(dir, "unrelated.log")
	os.WriteFile(keepPath, []byte("keep\n"), 0644)

	logger, err := New(Config{LogDir: dir, RetentionDays: 30})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("expected expired log file to be removed")
	}
	if _, err := os.Stat(keepPath); err != nil {
		t.Error("expected unrelated file to survive the sweep")
	}
}

func TestDefaultLogDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	logger, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer logger.Close()

	wantDir := filepath.Join(tmpDir, ".vox", "logs")
	if filepath.Dir(logger.LogPath()) != wantDir {
		t.Errorf("log dir = %q, want %q", filepath.Dir(logger.LogPath()), wantDir)
	}
}
