package cmd

import (
	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/input"
)

var scrollCmd = &cobra.Command{
	Use:   "scroll",
	Short: "Scroll at an element from the last observe",
	Long: `Scroll by wheel clicks with the pointer over an element's centroid.
Alias for 'act --action scroll'. Positive --dy scrolls down.

Examples:
  screenlens scroll --id 4 --dy 3
  screenlens scroll --id 4 --dy -3
  screenlens scroll --id 4 --dx 2`,
	RunE: runScroll,
}

func init() {
	rootCmd.AddCommand(scrollCmd)
	addActFlags(scrollCmd)
}

func runScroll(cmd *cobra.Command, args []string) error {
	return executeAct(cmd, input.ActionScroll)
}
