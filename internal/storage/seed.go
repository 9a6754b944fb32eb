package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

// LoadSeedFile reads events from a JSON file holding either a bare array of
// events or a JSON-server style database object {"events": [...]}.
func LoadSeedFile(path string) ([]models.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var events []models.Event
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("parsing seed file: %w", err)
		}
		return events, nil
	}

	var db struct {
		Events []models.Event `json:"events"`
	}
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return db.Events, nil
}
