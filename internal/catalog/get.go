package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/dyluth/nodebuild/internal/buildid"
	"github.com/dyluth/nodebuild/pkg/registry"
)

// GetBuild writes a single build record as pretty-printed JSON
func GetBuild(ctx context.Context, reg Lister, buildID string, w io.Writer) error {
	if _, err := buildid.Parse(buildID); err != nil {
		return err
	}

	record, err := reg.Get(ctx, buildID)
	if err != nil {
		if registry.IsNotFound(err) {
			return &BuildNotFoundError{BuildID: buildID}
		}
		return fmt.Errorf("failed to fetch build: %w", err)
	}

	if err := FormatSingleJSON(w, record); err != nil {
		return fmt.Errorf("failed to format build: %w", err)
	}

	return nil
}

// BuildNotFoundError reports a build id that was never recorded
type BuildNotFoundError struct {
	BuildID string
}

func (e *BuildNotFoundError) Error() string {
	return fmt.Sprintf("build '%s' not found", e.BuildID)
}

// IsNotFound returns true if err is a BuildNotFoundError
func IsNotFound(err error) bool {
	_, ok := err.(*BuildNotFoundError)
	return ok
}
