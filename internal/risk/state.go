package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the fitted state as versioned JSON, creating the directory if
// needed.
func (s *ModelState) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model state: %w", err)
	}
	return nil
}

// LoadState reads previously persisted model state. A missing file surfaces
// as an os.IsNotExist error so callers can start untrained.
func LoadState(path string) (*ModelState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state ModelState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal model state: %w", err)
	}
	return &state, nil
}
