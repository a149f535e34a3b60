package cmd

import (
	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/input"
)

var hoverCmd = &cobra.Command{
	Use:   "hover",
	Short: "Move the pointer over an element without clicking",
	Long: `Move the pointer to an element's centroid to trigger tooltips or hover
menus. Alias for 'act --action move'.

Examples:
  screenlens hover --id 3`,
	RunE: runHover,
}

func init() {
	rootCmd.AddCommand(hoverCmd)
	addActFlags(hoverCmd)
}

func runHover(cmd *cobra.Command, args []string) error {
	return executeAct(cmd, input.ActionMove)
}
