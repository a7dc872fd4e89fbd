// Package formatting provides human-readable byte sizes that decode from
// configuration text such as "64MB".
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var units = []string{
	"B", "KB", "MB",
	"GB", "TB", "PB",
	"EB",
}

var bytesPattern = regexp.MustCompile(`^(\d+\.?\d*)\s*([A-Za-z]*)$`)

// ByteSize is a byte count that marshals to and from base-1024 text.
type ByteSize int64

// Int64 returns the size as an int64 byte count.
func (b ByteSize) Int64() int64 {
	return int64(b)
}

// String formats the size with up to two decimal places.
func (b ByteSize) String() string {
	return FormatBytes(int64(b), 2)
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(FormatBytes(int64(b), 0)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := ParseBytes(string(text))
	if err != nil {
		return err
	}
	*b = ByteSize(n)
	return nil
}

// FormatBytes converts a byte count to a human-readable string using base-1024 units.
// Trailing zero decimals are trimmed. Negative precision values are clamped to zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}
	precision = max(precision, 0)

	f := float64(n)
	i := min(int(math.Floor(math.Log(f)/math.Log(1024))), len(units)-1)

	formatted := strconv.FormatFloat(f/math.Pow(1024, float64(i)), 'f', precision, 64)
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
	}

	return formatted + " " + units[i]
}

// ParseBytes parses a human-readable byte size string (e.g., "50MB") into a byte count.
// A bare number is bytes. Units are case-insensitive and may be separated by a space.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := bytesPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := strings.ToUpper(matches[2])
	if unit == "" {
		return int64(value), nil
	}

	idx := slices.Index(units, unit)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	size := value * math.Pow(1024, float64(idx))
	if size >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size overflows int64: %q", s)
	}
	return int64(size), nil
}
