package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/nodebuild/internal/git"
	"github.com/dyluth/nodebuild/pkg/registry"
)

// FormatTable writes records as a table and returns how many were written
func FormatTable(w io.Writer, records []*registry.Record) int {
	if len(records) == 0 {
		fmt.Fprintf(w, "No builds found\n")
		return 0
	}

	fmt.Fprintf(w, "%-42s %-10s %-14s %-9s %-8s %s\n",
		"BUILD ID", "STRATEGY", "STATUS", "REV", "AGE", "LIBRARIES")
	fmt.Fprintf(w, "%-42s %-10s %-14s %-9s %-8s %s\n",
		strings.Repeat("-", 42), "----------", "--------------", "---------", "--------", "--------------------")

	for _, r := range records {
		fmt.Fprintf(w, "%-42s %-10s %-14s %-9s %-8s %s\n",
			r.BuildID,
			orDash(r.Strategy),
			orDash(string(r.Status)),
			orDash(git.ShortRevision(r.SourceRevision)),
			formatAge(r.CreatedAtMs, time.Now()),
			formatLibraries(r.Libraries),
		)
	}

	noun := "build"
	if len(records) != 1 {
		noun = "builds"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(records), noun)

	return len(records)
}

// FormatJSONL writes each record as a single JSON line
func FormatJSONL(w io.Writer, records []*registry.Record) error {
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal build to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatRecord writes one streamed record in the given list format
func FormatRecord(w io.Writer, format OutputFormat, r *registry.Record) error {
	switch format {
	case OutputFormatJSONL:
		return FormatJSONL(w, []*registry.Record{r})
	case OutputFormatDefault, "":
		_, err := fmt.Fprintf(w, "%s  %s  %s  %s\n",
			r.BuildID, orDash(r.Strategy), orDash(string(r.Status)), formatLibraries(r.Libraries))
		return err
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// FormatSingleJSON writes one record as indented JSON
func FormatSingleJSON(w io.Writer, r *registry.Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal build to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatLibraries(libs []string) string {
	if len(libs) == 0 {
		return "-"
	}
	joined := strings.Join(libs, ",")
	if len(joined) > 40 {
		return joined[:37] + "..."
	}
	return joined
}

// formatAge renders a creation time relative to now, e.g. "5m ago"
func formatAge(timestampMs int64, now time.Time) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := now.Sub(time.UnixMilli(timestampMs))

	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
