package cmd

import (
	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/input"
)

var typeCmd = &cobra.Command{
	Use:   "type",
	Short: "Type text into an element from the last observe",
	Long: `Click an element to focus it, then type text as keystrokes. Alias for
'act --action type'. Pass --needs-focus=false to type without clicking.

Examples:
  screenlens type --id 7 --text "hello world"
  screenlens type --id 7 --text "slow" --delay 50
  screenlens type --id 0 --text "already focused" --needs-focus=false`,
	RunE: runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	addActFlags(typeCmd)
}

func runType(cmd *cobra.Command, args []string) error {
	return executeAct(cmd, input.ActionType)
}
