package cmd

import (
	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/input"
)

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click an element from the last observe",
	Long: `Click at an element's centroid. Alias for 'act --action click'.

Examples:
  screenlens click --id 3
  screenlens click --id 3 --button right
  screenlens click --id 3 --double`,
	RunE: runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	addActFlags(clickCmd)
	clickCmd.Flags().Bool("double", false, "Double-click")
}

func runClick(cmd *cobra.Command, args []string) error {
	action := input.ActionClick
	if double, _ := cmd.Flags().GetBool("double"); double {
		action = input.ActionDoubleClick
	}
	return executeAct(cmd, action)
}
