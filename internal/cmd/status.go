package cmd

import (
	"fmt"

	"github.com/TechnicallyShaun/vox-orbis/internal/dictate"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/journal"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/session"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state and today's dictation stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			store, err := session.NewStore("")
			if err != nil {
				return err
			}

			switch sess, err := store.Current(); {
			case err == nil:
				stale, _ := store.Stale()
				if stale {
					fmt.Fprintf(out, "Session:    stale (capture process %d not running)\n", sess.PID)
				} else {
					fmt.Fprintf(out, "Session:    recording since %s (PID %d)\n",
						sess.StartedAt.Local().Format("15:04:05"), sess.PID)
				}
			default:
				fmt.Fprintln(out, "Session:    idle")
			}

			cfg, err := dictate.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			fmt.Fprintf(out, "Mode:       %s\n", cfg.Mode)
			fmt.Fprintf(out, "Cleanup:    %v\n", cfg.CleanupEnabled())

			jnl, err := journal.New(cfg.JournalDir, true)
			if err != nil {
				return err
			}
			stats, err := jnl.TodayStats()
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}

			fmt.Fprintf(out, "Today:      %d dictation(s)\n", stats.Dictations)
			if stats.LastEntry != nil {
				fmt.Fprintf(out, "Last:       %s (%s)\n",
					stats.LastEntry.Timestamp.Local().Format("15:04:05"),
					stats.LastEntry.Context.WindowName)
			}

			return nil
		},
	}
}
