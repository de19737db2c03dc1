package startup

import (
	"encoding/json"
	"fmt"
	"time"

	"submux/internal/fileutil"
)

// State is the persisted record of past startup checks. A missing or
// unreadable state file is treated as the zero value, never as an error
// that blocks the CLI.
type State struct {
	LastCheckedUTC           time.Time `json:"lastCheckedUtc"`
	LastInstalledVersionSeen string    `json:"lastInstalledVersionSeen"`
}

// LoadState reads the persisted state from path.
func LoadState(path string) State {
	data, ok, err := fileutil.ReadFileIfExists(path)
	if err != nil || !ok {
		return State{}
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}
	}
	return state
}

// SaveState persists the state to path atomically.
func SaveState(path string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal startup state: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write startup state: %w", err)
	}
	return nil
}
