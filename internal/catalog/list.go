package catalog

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dyluth/nodebuild/pkg/registry"
)

// OutputFormat specifies how to render a build list
type OutputFormat string

const (
	// OutputFormatDefault is a human-readable table
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL writes one complete record per line
	OutputFormatJSONL OutputFormat = "jsonl"
)

// Lister is the part of the registry client the catalog reads from
type Lister interface {
	List(ctx context.Context, sinceMs int64) ([]*registry.Record, error)
	Get(ctx context.Context, buildID string) (*registry.Record, error)
}

// Filter narrows a build list. All set fields are ANDed together.
type Filter struct {
	SinceMs      int64  // 0 = no lower bound
	UntilMs      int64  // 0 = no upper bound
	PlatformGlob string // e.g. "linux-*"
	Status       string // Exact match
}

// Matches reports whether r passes every set field of f. A nil filter matches everything.
func Matches(f *Filter, r *registry.Record) bool {
	if f == nil {
		return true
	}
	if f.SinceMs > 0 && r.CreatedAtMs < f.SinceMs {
		return false
	}
	return f.matches(r)
}

func (f *Filter) matches(r *registry.Record) bool {
	if f.UntilMs > 0 && r.CreatedAtMs > f.UntilMs {
		return false
	}

	if f.PlatformGlob != "" {
		matched, err := filepath.Match(f.PlatformGlob, r.Platform)
		if err != nil || !matched {
			return false
		}
	}

	if f.Status != "" && string(r.Status) != f.Status {
		return false
	}

	return true
}

// ListBuilds writes the builds matching filter to w, newest first
func ListBuilds(ctx context.Context, reg Lister, format OutputFormat, filter *Filter, w io.Writer) error {
	if filter == nil {
		filter = &Filter{}
	}

	records, err := reg.List(ctx, filter.SinceMs)
	if err != nil {
		return err
	}

	matched := records[:0]
	for _, r := range records {
		if filter.matches(r) {
			matched = append(matched, r)
		}
	}

	switch format {
	case OutputFormatDefault, "":
		FormatTable(w, matched)
	case OutputFormatJSONL:
		if err := FormatJSONL(w, matched); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
