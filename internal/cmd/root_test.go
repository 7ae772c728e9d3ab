package cmd

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestNewRootCmd(t *testing.T) {
	rootCmd := NewRootCmd()

	if rootCmd.Use != "vox" {
		t.Errorf("expected Use to be 'vox', got '%s'", rootCmd.Use)
	}

	// Verify subcommands are registered
	subcommands := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		subcommands[cmd.Use] = true
	}

	expected := []string{"init", "start", "stop", "toggle", "status", "context", "version"}
	for _, name := range expected {
		if !subcommands[name] {
			t.Errorf("expected subcommand '%s' to be registered", name)
		}
	}
}

func TestNoCleanupFlag_RegisteredOnPipelineCommands(t *testing.T) {
	commands := map[string]*cobra.Command{
		"start":  NewStartCmd(),
		"stop":   NewStopCmd(),
		"toggle": NewToggleCmd(),
	}

	for name, cmd := range commands {
		flag := cmd.Flags().Lookup("no-cleanup")
		if flag == nil {
			t.Errorf("expected '%s' to have a --no-cleanup flag", name)
			continue
		}
		if flag.DefValue != "false" {
			t.Errorf("expected --no-cleanup on '%s' to default to false, got %s", name, flag.DefValue)
		}
	}
}
