// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// SaveRegistry writes reg as indented JSON, creating the parent directory if needed.
func SaveRegistry(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Upsert replaces the activity with the same ID or appends it, and stamps LastUpdated.
func (r *ActivityRegistry) Upsert(activity Activity, now time.Time) {
	r.LastUpdated = now.UTC().Format(time.RFC3339)
	for i := range r.Activities {
		if r.Activities[i].ID == activity.ID {
			r.Activities[i] = activity
			return
		}
	}
	r.Activities = append(r.Activities, activity)
}

// Validate checks required fields and uniqueness. When knownTaskTypes is non-empty every activity
// must reference one of them.
func (r *ActivityRegistry) Validate(knownTaskTypes []string) error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	known := make(map[string]bool, len(knownTaskTypes))
	for _, t := range knownTaskTypes {
		known[t] = true
	}

	ids := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if len(known) > 0 && !known[activity.TaskType] {
			return fmt.Errorf("activity %s references unknown task type %q", activity.ID, activity.TaskType)
		}
	}
	return nil
}
