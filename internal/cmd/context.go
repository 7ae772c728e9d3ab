package cmd

import (
	"fmt"

	"github.com/TechnicallyShaun/vox-orbis/internal/dictate"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/contextrules"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/window"
	"github.com/spf13/cobra"
)

// NewContextCmd creates the context command
func NewContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Show the context resolved for the active window",
		Long: `Show which context rule, if any, applies to the currently focused
window. Useful when writing context rules: focus the target window, run
this in a terminal (or bind it to a shortcut) and inspect the match.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := dictate.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			title, err := window.NewXdotoolTitler().ActiveTitle(cmd.Context())
			if err != nil {
				return fmt.Errorf("query active window: %w", err)
			}
			fmt.Fprintf(out, "Window:         %s\n", title)

			rules, err := contextrules.Load(cfg.ContextRules)
			if err != nil {
				fmt.Fprintf(out, "Rules:          unavailable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "Rules:          %d loaded from %s\n", rules.Len(), cfg.ContextRules)
			}

			match := rules.Resolve(title)
			pasteKey := match.PasteKey
			if pasteKey == "" {
				pasteKey = cfg.PasteKey
			}

			if !match.Matched {
				fmt.Fprintln(out, "Matched rule:   none (defaults apply)")
				fmt.Fprintf(out, "Paste key:      %s\n", pasteKey)
				return nil
			}

			fmt.Fprintf(out, "Matched rule:   %s\n", match.Description)
			fmt.Fprintf(out, "Paste key:      %s\n", pasteKey)
			if match.ExtraContext != "" {
				fmt.Fprintf(out, "Extra context:  %s\n", match.ExtraContext)
			}
			return nil
		},
	}
}
