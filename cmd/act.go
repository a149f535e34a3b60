package cmd

import (
	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/input"
	"github.com/screenlens/screenlens/internal/model"
	"github.com/screenlens/screenlens/internal/output"
	"github.com/screenlens/screenlens/internal/registry"
)

var actCmd = &cobra.Command{
	Use:   "act",
	Short: "Perform an input action on an element from the last observe",
	Long: `Resolve an element ID against the saved screen state and dispatch an input
action at its centroid. Fails with StaleState when the state has been
superseded by a newer observe.

Examples:
  screenlens act --id 3 --action click
  screenlens act --id 7 --action type --text "hello"
  screenlens act --id 2 --action drag --to-id 5`,
	RunE: runAct,
}

func init() {
	rootCmd.AddCommand(actCmd)
	addActFlags(actCmd)
	actCmd.Flags().String("action", "", "Action: click, doubleClick, type, scroll, drag, move")
}

// addActFlags registers the flags shared by act and its aliases.
func addActFlags(cmd *cobra.Command) {
	cmd.Flags().String("state", "", "State ID from observe (default: most recent saved state)")
	cmd.Flags().Int("id", -1, "Element ID within the state")
	cmd.Flags().String("button", "left", "Mouse button: left, right, middle")
	cmd.Flags().String("text", "", "Text to type")
	cmd.Flags().Bool("needs-focus", true, "Click the element before typing")
	cmd.Flags().Int("delay", 0, "Delay between keystrokes in ms")
	cmd.Flags().Int("dx", 0, "Horizontal scroll clicks")
	cmd.Flags().Int("dy", 0, "Vertical scroll clicks")
	cmd.Flags().Int("to-id", -1, "Drag target element ID")
	cmd.Flags().Int("to-x", 0, "Drag target X coordinate")
	cmd.Flags().Int("to-y", 0, "Drag target Y coordinate")
}

func runAct(cmd *cobra.Command, args []string) error {
	action, _ := cmd.Flags().GetString("action")
	return executeAct(cmd, action)
}

// newInjector builds the OS injector; swapped out by tests.
var newInjector = func() input.Injector { return input.NewRobotInjector() }

// printActError emits the structured failure on stdout before the error
// propagates to cobra's stderr reporting, so scripted callers always get a
// machine-readable result.
func printActError(action, stateID string, err error) error {
	if perr := output.Print(output.ActResult{
		Success: false,
		Action:  action,
		StateID: stateID,
		Error:   model.AsError(err, model.KindInjectionFailed),
	}); perr != nil {
		return perr
	}
	return err
}

// executeAct loads the saved state, resolves coordinates, and dispatches the
// action through the OS injector.
func executeAct(cmd *cobra.Command, action string) error {
	stateID, _ := cmd.Flags().GetString("state")
	elementID, _ := cmd.Flags().GetInt("id")
	button, _ := cmd.Flags().GetString("button")
	text, _ := cmd.Flags().GetString("text")
	needsFocus, _ := cmd.Flags().GetBool("needs-focus")
	delay, _ := cmd.Flags().GetInt("delay")
	dx, _ := cmd.Flags().GetInt("dx")
	dy, _ := cmd.Flags().GetInt("dy")
	toID, _ := cmd.Flags().GetInt("to-id")

	req := input.Request{
		Action:     action,
		Button:     button,
		Text:       text,
		NeedsFocus: needsFocus,
		DelayMs:    delay,
		DeltaX:     dx,
		DeltaY:     dy,
	}
	state, err := registry.LoadState(stateID)
	if err != nil {
		return err
	}

	el := state.Element(elementID)
	if el == nil {
		err := model.Errf(model.KindUnknownElement, "element %d out of range (state has %d elements)", elementID, len(state.Elements))
		return printActError(action, state.ID, err)
	}
	cx, cy := el.Center()
	at := model.Point{X: cx, Y: cy}

	if action == input.ActionDrag {
		if toID >= 0 {
			toEl := state.Element(toID)
			if toEl == nil {
				err := model.Errf(model.KindUnknownElement, "drag target %d out of range (state has %d elements)", toID, len(state.Elements))
				return printActError(action, state.ID, err)
			}
			tx, ty := toEl.Center()
			req.To = &model.Point{X: tx, Y: ty}
		} else if cmd.Flags().Changed("to-x") {
			toX, _ := cmd.Flags().GetInt("to-x")
			toY, _ := cmd.Flags().GetInt("to-y")
			req.To = &model.Point{X: toX, Y: toY}
		}
	}

	dispatcher := input.NewDispatcher(newInjector())
	res, err := dispatcher.Execute(req, at)
	if err != nil {
		return printActError(action, state.ID, err)
	}

	return output.Print(output.ActResult{
		Success: res.Success,
		Action:  res.Action,
		StateID: state.ID,
		Point:   res.Point,
		To:      res.To,
		Message: res.Message,
	})
}
