package app

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	valid "github.com/asaskevich/govalidator"
)

const maxExpandedTargets = 1000

var (
	ErrEmptyDelimiters  = errors.New("PatternPrefix and PatternSuffix cannot be empty")
	ErrInvalidRange     = errors.New("not a valid number range")
	ErrTooManyTargets   = errors.New("pattern expands to too many targets")
	errInvalidRangeSize = errors.New("invalid number range")
)

type PatternOptions struct {
	PatternPrefix string // default: {
	PatternSuffix string // default: }
}

func DefaultPatternOptions() PatternOptions {
	return PatternOptions{
		PatternPrefix: "{",
		PatternSuffix: "}",
	}
}

// Expander turns a URL containing range patterns such as
// "https://example.com/page/{1-3}" or "https://{www,api}.example.com" into
// the list of concrete URLs it describes.
type Expander struct {
	opts    PatternOptions
	pattern *regexp.Regexp
}

func NewExpander(opts PatternOptions) (*Expander, error) {
	if opts.PatternPrefix == "" || opts.PatternSuffix == "" {
		return nil, fmt.Errorf("NewExpander: %+v: %w", opts, ErrEmptyDelimiters)
	}

	return &Expander{
		opts: opts,
		pattern: regexp.MustCompile(
			regexp.QuoteMeta(opts.PatternPrefix) +
				`([a-zA-Z0-9,.\-]+)` +
				regexp.QuoteMeta(opts.PatternSuffix),
		),
	}, nil
}

func (e *Expander) Expand(raw string) ([]string, error) {
	return e.expand(raw, 0)
}

func (e *Expander) expand(raw string, produced int) ([]string, error) {
	loc := e.pattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return []string{raw}, nil
	}

	values, err := e.values(raw[loc[2]:loc[3]])
	if err != nil {
		return nil, err
	}

	targets := []string{}
	for _, value := range values {
		substituted, err := e.expand(raw[:loc[0]]+value+raw[loc[1]:], produced+len(targets))
		if err != nil {
			return nil, err
		}

		targets = append(targets, substituted...)
		if produced+len(targets) > maxExpandedTargets {
			return nil, fmt.Errorf("%q: %w (limit %d)", raw, ErrTooManyTargets, maxExpandedTargets)
		}
	}

	return targets, nil
}

// values resolves the comma separated parts of one pattern group. A part
// containing a dash is an inclusive integer range.
func (e *Expander) values(group string) ([]string, error) {
	values := []string{}
	for _, part := range strings.Split(group, ",") {
		if !strings.Contains(part, "-") {
			values = append(values, part)

			continue
		}

		first, last, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if last-first+1 > maxExpandedTargets {
			return nil, fmt.Errorf("%q: %w (limit %d)", part, ErrTooManyTargets, maxExpandedTargets)
		}

		for i := first; i <= last; i++ {
			values = append(values, strconv.FormatInt(i, 10))
		}
	}

	return values, nil
}

func parseRange(part string) (int64, int64, error) {
	bounds := strings.Split(part, "-")

	// a leading empty element belongs to a negative lower bound
	if len(bounds) > 2 && bounds[0] == "" {
		bounds = append([]string{"-" + bounds[1]}, bounds[2:]...)
	}
	// an empty middle element belongs to a negative upper bound
	if len(bounds) > 2 && bounds[1] == "" {
		bounds = []string{bounds[0], "-" + bounds[2]}
	}

	if len(bounds) != 2 {
		return 0, 0, fmt.Errorf("%q: number of elements != 2, is %d: %w", part, len(bounds), errInvalidRangeSize)
	}
	if bounds[0] == "" || !valid.IsInt(bounds[0]) {
		return 0, 0, fmt.Errorf("%q: first number: %w", part, ErrInvalidRange)
	}
	if bounds[1] == "" || !valid.IsInt(bounds[1]) {
		return 0, 0, fmt.Errorf("%q: second number: %w", part, ErrInvalidRange)
	}

	first, _ := strconv.ParseInt(bounds[0], 10, 64)
	last, _ := strconv.ParseInt(bounds[1], 10, 64)
	if last < first {
		return 0, 0, fmt.Errorf("%q: first number cannot be bigger than second number: %w", part, ErrInvalidRange)
	}

	return first, last, nil
}
