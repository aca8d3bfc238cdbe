package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"memescout/internal/token"
)

const jsonsDir = "data_out"

// LastSearchFile holds the most recent search results so tools can work
// with them without hitting the APIs again.
const LastSearchFile = "last_search.json"

// SearchSnapshot is the file structure for a saved result set.
type SearchSnapshot struct {
	SavedAt time.Time      `json:"saved_at"`
	Filter  string         `json:"filter"`
	Records []token.Record `json:"records"`
}

func ensureJsonsDir() error {
	return os.MkdirAll(jsonsDir, 0755)
}

// SaveSearchSnapshot writes the records for the given filter text under
// data_out.
func SaveSearchSnapshot(filename, filterText string, records []token.Record) error {
	if err := ensureJsonsDir(); err != nil {
		return fmt.Errorf("failed to create jsons directory: %w", err)
	}

	snapshot := SearchSnapshot{
		SavedAt: time.Now().UTC(),
		Filter:  filterText,
		Records: records,
	}

	jsonData, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal search snapshot: %w", err)
	}

	fullPath := filepath.Join(jsonsDir, filename)
	if err := os.WriteFile(fullPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to save search snapshot: %w", err)
	}
	return nil
}

// LoadSearchSnapshot loads a saved result set from JSON file under data_out.
func LoadSearchSnapshot(filename string) (*SearchSnapshot, error) {
	fullPath := filepath.Join(jsonsDir, filename)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read search snapshot file: %w", err)
	}

	var snapshot SearchSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search snapshot: %w", err)
	}

	return &snapshot, nil
}
