package timespec

import (
	"fmt"
	"time"
)

// Parse turns a --since/--until value into a Unix timestamp in milliseconds.
// Accepted forms:
//   - Go durations relative to now: "1h", "30m", "72h"
//   - RFC3339 timestamps: "2024-03-07T13:00:00Z"
//   - Build id dates (local midnight): "20240307"
func Parse(spec string, now time.Time) (int64, error) {
	return parse(spec, now, false)
}

// ParseUntil is Parse for an upper bound: a bare date covers the whole day,
// resolving to the last millisecond before the following midnight.
func ParseUntil(spec string, now time.Time) (int64, error) {
	return parse(spec, now, true)
}

func parse(spec string, now time.Time, endOfDay bool) (int64, error) {
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}

	if len(spec) == 8 {
		if t, err := time.ParseInLocation("20060102", spec, now.Location()); err == nil {
			if endOfDay {
				return t.AddDate(0, 0, 1).UnixMilli() - 1, nil
			}
			return t.UnixMilli(), nil
		}
	}

	if d, err := time.ParseDuration(spec); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("invalid time specification: %s (duration must be positive)", spec)
		}
		return now.Add(-d).UnixMilli(), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use a duration like '24h', RFC3339 like '2024-03-07T13:00:00Z', or a date like '20240307')", spec)
}

// ParseRange parses --since and --until together.
// Zero values mean "no bound"; since must come before until when both are set.
func ParseRange(since, until string, now time.Time) (int64, int64, error) {
	var sinceMS, untilMS int64
	var err error

	if since != "" {
		if sinceMS, err = Parse(since, now); err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		if untilMS, err = ParseUntil(until, now); err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if sinceMS > 0 && untilMS > 0 && sinceMS >= untilMS {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}

	return sinceMS, untilMS, nil
}
