package registry

import (
	"fmt"

	"github.com/dyluth/nodebuild/internal/buildid"
	"github.com/google/uuid"
)

// Status is the outcome recorded for a build
type Status string

const (
	// StatusArchived means the build succeeded and the archiver accepted it
	StatusArchived Status = "Archived"

	// StatusArchiveFailed means the build succeeded but the archiver failed
	StatusArchiveFailed Status = "ArchiveFailed"

	// StatusBuilt means the build succeeded and no archiver was configured
	StatusBuilt Status = "Built"
)

// Record describes one finished build invocation
type Record struct {
	BuildID         string   `json:"build_id"`         // <platform>-node-<date>-<random>
	RunID           string   `json:"run_id"`           // UUID of the orchestrator invocation
	Platform        string   `json:"platform"`         // Platform tag embedded in BuildID
	Strategy        string   `json:"strategy"`         // "container" or "native"
	ObjectDirectory string   `json:"object_directory"` // Where the compiled objects live
	Libraries       []string `json:"libraries"`        // Libraries handed to the archiver
	SourceRevision  string   `json:"source_revision"`  // HEAD commit of the checkout, if known
	Status          Status   `json:"status"`
	CreatedAtMs     int64    `json:"created_at_ms"`
}

// Validate checks that the record can be stored
func (r *Record) Validate() error {
	if _, err := buildid.Parse(r.BuildID); err != nil {
		return err
	}

	if _, err := uuid.Parse(r.RunID); err != nil {
		return fmt.Errorf("invalid run_id: %w", err)
	}

	switch r.Status {
	case StatusArchived, StatusArchiveFailed, StatusBuilt:
	default:
		return fmt.Errorf("invalid status: %q", r.Status)
	}

	if r.ObjectDirectory == "" {
		return fmt.Errorf("object_directory is required")
	}

	return nil
}

// NewRunID creates a new UUID for an orchestrator invocation
func NewRunID() string {
	return uuid.New().String()
}
