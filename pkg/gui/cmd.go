package gui

import (
	"github.com/spf13/cobra"
)

func NewTrayCommand(groupID string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tray",
		Short:   "Show the power state in the menu bar",
		GroupID: groupID,
		Long: `Show the power state in the menu bar (macOS) or the notification area (Windows).

The indicator is updated whenever the OS reports a power state change.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return Run()
		},
	}

	return cmd
}
