package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the vox CLI
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vox",
		Short: "Hotkey-driven desktop dictation",
		Long: `Vox Orbis - Hotkey-driven desktop dictation.

Records the microphone, transcribes the audio with a local or cloud speech
model, optionally cleans the transcript with a language model, and pastes
the result into the active window. Bind "vox toggle" to a desktop keyboard
shortcut for a single-key workflow.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Secrets may live in a .env beside the binary; absence is fine.
			_ = godotenv.Load()
		},
	}

	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewStartCmd())
	rootCmd.AddCommand(NewStopCmd())
	rootCmd.AddCommand(NewToggleCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewContextCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
