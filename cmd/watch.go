package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/model"
	"github.com/screenlens/screenlens/internal/registry"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for screen changes and stream diffs as JSONL",
	Long: `Continuously observe the screen and emit element changes (added, removed,
moved) as JSONL to stdout. No output is emitted while the screen is stable.
Elements are matched across observations by content hash, so detector ID
reshuffling does not show up as churn.

Output is always JSONL regardless of the --format flag.

Use Ctrl+C or --duration to stop watching.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addObserveFlags(watchCmd)
	watchCmd.Flags().Int("interval", 1000, "Polling interval in milliseconds")
	watchCmd.Flags().Int("duration", 0, "Max seconds to watch (0 = until Ctrl+C)")
	watchCmd.Flags().Bool("ignore-bounds", false, "Ignore element position changes")
}

func runWatch(cmd *cobra.Command, args []string) error {
	intervalMs, _ := cmd.Flags().GetInt("interval")
	durationSec, _ := cmd.Flags().GetInt("duration")
	ignoreBounds, _ := cmd.Flags().GetBool("ignore-bounds")

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)

	interval := time.Duration(intervalMs) * time.Millisecond
	var deadline time.Time
	if durationSec > 0 {
		deadline = time.Now().Add(time.Duration(durationSec) * time.Second)
	}
	start := time.Now()

	reg := registry.New()

	// Initial observation to establish baseline
	state, _, err := observeOnce(cmd.Context(), cmd, reg)
	if err != nil {
		return fmt.Errorf("initial observation failed: %w", err)
	}
	prev := state.Elements

	enc.Encode(map[string]interface{}{
		"type":  "snapshot",
		"ts":    time.Now().Unix(),
		"count": len(prev),
	})

	eventCount := 0

	// Poll loop
	for {
		if durationSec > 0 && time.Now().After(deadline) {
			break
		}
		if err := cmd.Context().Err(); err != nil {
			break
		}

		time.Sleep(interval)

		state, _, err := observeOnce(cmd.Context(), cmd, reg)
		if err != nil {
			enc.Encode(map[string]interface{}{
				"type":  "error",
				"ts":    time.Now().Unix(),
				"error": err.Error(),
			})
			continue
		}

		diff := model.DiffStates(prev, state.Elements)
		emitted := emitChanges(enc, diff, ignoreBounds)
		eventCount += emitted

		prev = state.Elements
	}

	elapsed := time.Since(start)
	enc.Encode(map[string]interface{}{
		"type":    "done",
		"ts":      time.Now().Unix(),
		"elapsed": fmt.Sprintf("%.1fs", elapsed.Seconds()),
		"events":  eventCount,
	})

	return nil
}

// emitChanges writes one JSONL line per change and returns how many were
// emitted after filtering.
func emitChanges(enc *json.Encoder, diff model.StateDiff, ignoreBounds bool) int {
	count := 0
	emit := func(changes []model.Change) {
		for _, change := range changes {
			if change.Type == "changed" && ignoreBounds {
				delete(change.Changes, "b")
				if len(change.Changes) == 0 {
					continue
				}
			}
			enc.Encode(change)
			count++
		}
	}
	emit(diff.Added)
	emit(diff.Removed)
	emit(diff.Changed)
	return count
}
