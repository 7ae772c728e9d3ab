package cmd

import (
	"fmt"

	"github.com/TechnicallyShaun/vox-orbis/internal/dictate"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/logging"
	"github.com/spf13/cobra"
)

// newService loads configuration and wires the dictation pipeline.
// The logger falls back to Discard so a read-only filesystem cannot block
// dictation itself.
func newService() (*dictate.Service, logging.Logger, error) {
	cfg, err := dictate.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	var logger logging.Logger
	logger, err = logging.New(logging.Config{})
	if err != nil {
		logger = logging.Discard{}
	}

	svc, err := dictate.NewService(cfg, logger)
	if err != nil {
		logger.Close()
		return nil, nil, err
	}

	return svc, logger, nil
}

// NewStartCmd creates the start command
func NewStartCmd() *cobra.Command {
	var noCleanup bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start recording the microphone",
		Long: `Start recording the microphone in the background.

The command returns immediately; recording continues until "vox stop" or
"vox toggle". Fails if a recording session is already active. Passing
--no-cleanup here makes the matching stop skip language-model cleanup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService()
			if err != nil {
				return err
			}
			defer logger.Close()

			if err := svc.Start(cmd.Context(), noCleanup); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Recording started")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCleanup, "no-cleanup", false, "paste the raw transcript without language-model cleanup")
	return cmd
}

// NewStopCmd creates the stop command
func NewStopCmd() *cobra.Command {
	var noCleanup bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop recording, transcribe and paste",
		Long: `Stop the active recording session and run the dictation pipeline:
transcribe the audio, resolve window context, clean the transcript with a
language model, and paste the result into the active window.

Fails if no recording session is active. Cleanup and paste failures degrade
gracefully: the raw transcript is still delivered, or left on the clipboard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService()
			if err != nil {
				return err
			}
			defer logger.Close()

			result, err := svc.Stop(cmd.Context(), noCleanup)
			if err != nil {
				return err
			}

			reportResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCleanup, "no-cleanup", false, "paste the raw transcript without language-model cleanup")
	return cmd
}

// NewToggleCmd creates the toggle command
func NewToggleCmd() *cobra.Command {
	var noCleanup bool

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Start or stop recording depending on current state",
		Long: `Start a recording session when idle, otherwise stop it and run the
dictation pipeline. Designed to be bound to a single desktop keyboard
shortcut; the session state lives on disk, so each press can be a fresh
process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService()
			if err != nil {
				return err
			}
			defer logger.Close()

			result, err := svc.Toggle(cmd.Context(), noCleanup)
			if err != nil {
				return err
			}

			if result == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Recording started")
				return nil
			}

			reportResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCleanup, "no-cleanup", false, "paste the raw transcript without language-model cleanup")
	return cmd
}

// reportResult prints the stop pipeline outcome for shell invocations.
// Degraded outcomes are reported but keep exit code 0: a raw transcript on
// the clipboard is success for the user at the keyboard.
func reportResult(cmd *cobra.Command, result *dictate.StopResult) {
	out := cmd.OutOrStdout()

	if result.FinalText == "" {
		fmt.Fprintln(out, "Nothing was recognized")
		return
	}

	if result.CleanupErr != nil {
		fmt.Fprintln(out, "Cleanup unavailable, delivered raw transcript")
	}
	if result.DeliveryErr != nil {
		fmt.Fprintf(out, "Delivery degraded: %v\n", result.DeliveryErr)
		fmt.Fprintln(out, result.FinalText)
		return
	}

	fmt.Fprintln(out, result.FinalText)
}
