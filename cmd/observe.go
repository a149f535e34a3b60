package cmd

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/output"
	"github.com/screenlens/screenlens/internal/overlay"
	"github.com/screenlens/screenlens/internal/registry"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Capture the screen and detect UI elements",
	Long: `Capture the screen, run element detection, and print the resulting screen
state. Element IDs are valid until the next observe; they are resolved by
'act' (and its click/type/scroll/drag aliases) against the saved state.

Examples:
  screenlens observe
  screenlens observe --detector-url http://localhost:8000 --annotate marks.png
  screenlens observe --display 1 --scale 0.5`,
	RunE: runObserveCmd,
}

func init() {
	rootCmd.AddCommand(observeCmd)
	addObserveFlags(observeCmd)
	observeCmd.Flags().Bool("save", true, "Persist the state so a later act can resolve its element IDs")
	observeCmd.Flags().String("annotate", "", "Write the screenshot annotated with element ID labels to this file")
	observeCmd.Flags().Bool("image", false, "Include the annotated screenshot as base64 in the output")
}

func runObserveCmd(cmd *cobra.Command, args []string) error {
	state, shot, err := observeOnce(cmd.Context(), cmd, registry.New())
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := registry.SaveState(state); err != nil {
			return err
		}
		registry.CleanStates(24 * time.Hour)
	}

	annotatePath, _ := cmd.Flags().GetString("annotate")
	includeImage, _ := cmd.Flags().GetBool("image")

	var annotated []byte
	if annotatePath != "" || includeImage {
		img := overlay.Annotate(shot.Image, state.Elements, shot.Width, shot.Height, shot.OffsetX, shot.OffsetY)
		annotated, err = overlay.EncodePNG(img)
		if err != nil {
			return err
		}
	}
	if annotatePath != "" {
		if err := os.WriteFile(annotatePath, annotated, 0644); err != nil {
			return fmt.Errorf("write annotated image: %w", err)
		}
	}

	display, _ := cmd.Flags().GetInt("display")
	result := output.ObserveResult{
		StateID:  state.ID,
		Display:  display,
		Width:    state.Width,
		Height:   state.Height,
		TS:       state.TakenAt.Unix(),
		Elements: state.Elements,
	}
	if includeImage {
		result.Image = base64.StdEncoding.EncodeToString(annotated)
	}
	return output.Print(result)
}
