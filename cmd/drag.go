package cmd

import (
	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/input"
)

var dragCmd = &cobra.Command{
	Use:   "drag",
	Short: "Drag from one element to another",
	Long: `Press, move, and release between two points: from an element's centroid to
another element (--to-id) or an explicit coordinate (--to-x/--to-y).
Alias for 'act --action drag'.

Examples:
  screenlens drag --id 2 --to-id 5
  screenlens drag --id 2 --to-x 800 --to-y 400`,
	RunE: runDrag,
}

func init() {
	rootCmd.AddCommand(dragCmd)
	addActFlags(dragCmd)
}

func runDrag(cmd *cobra.Command, args []string) error {
	return executeAct(cmd, input.ActionDrag)
}
