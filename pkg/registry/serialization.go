package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RecordToHash converts a Record to a Redis hash.
// The libraries array is JSON-encoded into a single field.
func RecordToHash(r *Record) (map[string]interface{}, error) {
	librariesJSON, err := json.Marshal(r.Libraries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal libraries: %w", err)
	}

	return map[string]interface{}{
		"build_id":         r.BuildID,
		"run_id":           r.RunID,
		"platform":         r.Platform,
		"strategy":         r.Strategy,
		"object_directory": r.ObjectDirectory,
		"libraries":        string(librariesJSON),
		"source_revision":  r.SourceRevision,
		"status":           string(r.Status),
		"created_at_ms":    r.CreatedAtMs,
	}, nil
}

// HashToRecord converts a Redis hash back to a Record
func HashToRecord(hash map[string]string) (*Record, error) {
	var libraries []string
	if librariesJSON := hash["libraries"]; librariesJSON != "" {
		if err := json.Unmarshal([]byte(librariesJSON), &libraries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal libraries: %w", err)
		}
	}
	if libraries == nil {
		libraries = []string{}
	}

	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	return &Record{
		BuildID:         hash["build_id"],
		RunID:           hash["run_id"],
		Platform:        hash["platform"],
		Strategy:        hash["strategy"],
		ObjectDirectory: hash["object_directory"],
		Libraries:       libraries,
		SourceRevision:  hash["source_revision"],
		Status:          Status(hash["status"]),
		CreatedAtMs:     createdAtMs,
	}, nil
}
