// Package cache persists the pipeline's small JSON key→value stores. A
// missing file is an empty store; a file that exists but cannot be parsed is
// an error, never a silent restart from scratch.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads the JSON file at path into v. It reports whether the file
// existed; absence is not an error.
func Load(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse cache %s: %w", path, err)
	}
	return true, nil
}

// Save writes v as indented JSON to path, creating parent directories as
// needed. The write goes through a temp file and rename so an interrupted
// run never leaves a half-written store behind.
func Save(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write cache %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace cache %s: %w", path, err)
	}
	return nil
}
