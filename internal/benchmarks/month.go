package benchmarks

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type monthKind int

const (
	anyMonth monthKind = iota
	singleMonth
	quarter
)

// MonthFilter is a parsed Filters.Month value.
type MonthFilter struct {
	kind  monthKind
	value int
}

// ParseMonth parses "all" or "" (no filter), "1".."12", or "Q1".."Q4".
func ParseMonth(s string) (MonthFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return MonthFilter{}, nil
	}

	if q, ok := strings.CutPrefix(strings.ToUpper(s), "Q"); ok {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 4 {
			return MonthFilter{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
		}
		return MonthFilter{kind: quarter, value: n}, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return MonthFilter{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthFilter{kind: singleMonth, value: n}, nil
}

// IsSet reports whether the filter names a month or quarter.
func (f MonthFilter) IsSet() bool {
	return f.kind != anyMonth
}

// Contains reports whether m falls in the filtered month or quarter.
func (f MonthFilter) Contains(m time.Month) bool {
	switch f.kind {
	case singleMonth:
		return int(m) == f.value
	case quarter:
		return (int(m)-1)/3+1 == f.value
	}
	return false
}

// Adjacent reports whether m misses a single-month filter by exactly one
// month. Quarters have no neighbours.
func (f MonthFilter) Adjacent(m time.Month) bool {
	return f.kind == singleMonth && monthsApart(int(m), f.value) == 1
}

// monthsApart compares month numbers without wrapping: December and January
// are eleven apart.
func monthsApart(a, b int) int {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
