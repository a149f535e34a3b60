package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/screenlens/screenlens/internal/model"
)

// statePrefix is the filename prefix for persisted screen states.
const statePrefix = "screenlens-state-"

// One-shot CLI invocations cannot keep the registry in memory between
// observe and act, so the current state is persisted to the temp dir and
// reloaded by the next invocation. Staleness still holds: act validates the
// caller-supplied state ID against the loaded file.

func statePath(id string) string {
	safe := strings.ReplaceAll(id, "/", "_")
	return filepath.Join(os.TempDir(), statePrefix+safe+".json")
}

// latestPath is a fixed-name pointer file holding the ID of the most recent
// saved state, so `act` can default to it.
func latestPath() string {
	return filepath.Join(os.TempDir(), statePrefix+"latest")
}

// SaveState writes a screen state to the temp dir for a later act call.
func SaveState(state *model.ScreenState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(statePath(state.ID), data, 0600); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return os.WriteFile(latestPath(), []byte(state.ID), 0600)
}

// LoadState reads a previously saved state. An empty id loads the most
// recently saved one. A missing file maps to NoStateAvailable; an ID that
// no longer matches the latest saved state maps to StaleState.
func LoadState(id string) (*model.ScreenState, error) {
	latest, err := os.ReadFile(latestPath())
	if err != nil {
		return nil, model.Errf(model.KindNoState, "no saved observation — run observe --save first")
	}
	latestID := strings.TrimSpace(string(latest))

	if id == "" {
		id = latestID
	} else if id != latestID {
		return nil, model.Errf(model.KindStaleState, "state %q has been superseded by %q — re-observe before acting", id, latestID)
	}

	data, err := os.ReadFile(statePath(id))
	if err != nil {
		return nil, model.Errf(model.KindNoState, "saved state %q not found — run observe --save first", id)
	}
	var state model.ScreenState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state %q: %w", id, err)
	}
	return &state, nil
}

// CleanStates removes persisted state files older than maxAge. Best-effort.
func CleanStates(maxAge time.Duration) {
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), statePrefix) || entry.Name() == statePrefix+"latest" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(os.TempDir(), entry.Name()))
		}
	}
}
