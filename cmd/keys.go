package cmd

import (
	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/input"
	"github.com/screenlens/screenlens/internal/output"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported key names",
	Long:  "List the key names accepted by 'press' and the press_key tool.",
	RunE:  runKeys,
}

var pressCmd = &cobra.Command{
	Use:   "press [key...]",
	Short: "Press a key or key combination",
	Long: `Press keys together, modifiers first.

Examples:
  screenlens press enter
  screenlens press ctrl c
  screenlens press ctrl shift t`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPress,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(pressCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	return output.Print(struct {
		Keys []string `yaml:"keys" json:"keys"`
	}{Keys: input.KeyNames})
}

func runPress(cmd *cobra.Command, args []string) error {
	dispatcher := input.NewDispatcher(newInjector())
	res, err := dispatcher.PressKeys(args)
	if err != nil {
		return printActError("press_key", "", err)
	}
	return output.Print(output.ActResult{
		Success: res.Success,
		Action:  res.Action,
		Message: res.Message,
	})
}
