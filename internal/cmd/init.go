package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TechnicallyShaun/vox-orbis/internal/dictate"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a default configuration file to ~/.vox/config.json so the
available settings can be edited in place. An existing file is left
untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stateDir, err := dictate.StateDir()
			if err != nil {
				return err
			}
			path := filepath.Join(stateDir, dictate.ConfigFileName)

			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
				return nil
			}

			cfg := &dictate.Config{}
			cfg.ApplyDefaults()
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
			return nil
		},
	}
}
