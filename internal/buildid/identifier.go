package buildid

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// dateLayout renders the build date as YYYYMMDD
	dateLayout = "20060102"

	// maxRandom is the inclusive upper bound of the random suffix (9 decimal digits of entropy)
	maxRandom = 1_000_000_000

	// separator joins the platform tag and the date
	separator = "-node-"
)

var suffixPattern = regexp.MustCompile(`^(\d{8})-(0|[1-9]\d*)$`)

// Identifier tags one build invocation's output.
// It is created once per build and never modified afterwards.
type Identifier struct {
	PlatformTag  string
	Date         string
	RandomSuffix string
}

// String renders the identifier as <platformTag>-node-<date>-<randomSuffix>
func (id Identifier) String() string {
	return id.PlatformTag + separator + id.Date + "-" + id.RandomSuffix
}

// IsZero reports whether the identifier was never generated
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

// RandomSource yields a uniform integer in [0, n)
type RandomSource interface {
	Int64N(n int64) int64
}

type globalSource struct{}

func (globalSource) Int64N(n int64) int64 {
	return rand.Int63n(n)
}

// FixedSource always returns the same value, clamped to the requested range
type FixedSource int64

func (f FixedSource) Int64N(n int64) int64 {
	if int64(f) >= n {
		return n - 1
	}
	if f < 0 {
		return 0
	}
	return int64(f)
}

// Generator produces build identifiers
type Generator struct {
	src RandomSource
}

// NewGenerator creates a generator drawing suffixes from src.
// A nil src uses the process-wide random source.
func NewGenerator(src RandomSource) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src}
}

// Generate builds a new identifier for platformTag dated by now.
// The suffix is drawn uniformly from [0, 1e9].
func (g *Generator) Generate(platformTag string, now time.Time) Identifier {
	return Identifier{
		PlatformTag:  platformTag,
		Date:         now.Format(dateLayout),
		RandomSuffix: strconv.FormatInt(g.src.Int64N(maxRandom+1), 10),
	}
}

// Generate builds a new identifier using the process-wide random source
func Generate(platformTag string, now time.Time) Identifier {
	return NewGenerator(nil).Generate(platformTag, now)
}

// ErrInvalidIdentifier matches every error returned by Parse
var ErrInvalidIdentifier = errors.New("invalid build id")

// Parse splits a rendered identifier back into its components.
// Platform tags may themselves contain dashes, so the last "-node-" wins.
func Parse(s string) (Identifier, error) {
	idx := strings.LastIndex(s, separator)
	if idx <= 0 {
		return Identifier{}, fmt.Errorf("%w %q: missing platform tag or %q marker", ErrInvalidIdentifier, s, separator)
	}

	m := suffixPattern.FindStringSubmatch(s[idx+len(separator):])
	if m == nil {
		return Identifier{}, fmt.Errorf("%w %q: expected <platform>-node-<YYYYMMDD>-<digits>", ErrInvalidIdentifier, s)
	}

	if _, err := time.Parse(dateLayout, m[1]); err != nil {
		return Identifier{}, fmt.Errorf("%w %q: bad date: %w", ErrInvalidIdentifier, s, err)
	}

	return Identifier{
		PlatformTag:  s[:idx],
		Date:         m[1],
		RandomSuffix: m[2],
	}, nil
}
