package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesDefaultConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var buf bytes.Buffer
	cmd := NewInitCmd()
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	path := filepath.Join(home, ".vox", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected config file written: %v", err)
	}
	if !strings.Contains(string(data), `"mode": "api"`) {
		t.Errorf("config missing default mode, got: %s", data)
	}
	if !strings.Contains(buf.String(), path) {
		t.Errorf("expected output to mention %s, got: %q", path, buf.String())
	}
}

func TestInit_LeavesExistingConfigUntouched(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, ".vox", "config.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	original := `{"mode": "local", "local_model_path": "/m.bin"}`
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var buf bytes.Buffer
	cmd := NewInitCmd()
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != original {
		t.Errorf("existing config was modified: %s", data)
	}
	if !strings.Contains(buf.String(), "already exists") {
		t.Errorf("expected already-exists notice, got: %q", buf.String())
	}
}
