// Package config persists run settings between sessions: selected country,
// the operation-column decision, resolved picklist assignments, and the file
// names the settings were derived from.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FilesUsed records which artifacts a configuration was saved against. Purely
// informational; loading does not verify the files still exist.
type FilesUsed struct {
	SchemaDictionary   string   `json:"schema_dictionary"`
	PicklistReferences []string `json:"picklist_references,omitempty"`
	Templates          []string `json:"templates,omitempty"`
}

// Run is a saved enrichment configuration.
type Run struct {
	SavedAt       time.Time         `json:"saved_at"`
	Country       string            `json:"country"`
	SkipOperation bool              `json:"skip_operation"`
	FilesUsed     FilesUsed         `json:"files_used"`
	// Assignments maps normalized column names to comma-joined picklist
	// values, exactly as the transformer consumes them.
	Assignments map[string]string `json:"picklist_assignments,omitempty"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Run, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse config json: %w", err)
	}
	return &r, nil
}

// Save writes the configuration, stamping SavedAt.
func (r *Run) Save(path string) error {
	r.SavedAt = time.Now().UTC().Truncate(time.Second)
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
