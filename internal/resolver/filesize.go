package resolver

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// sizePattern matches a decimal number followed by an optional whitespace and
// a B/KB/MB unit token, e.g. "1.06 MB" or "512KB".
var sizePattern = regexp.MustCompile(`(?i)([\d.]+)\s*(MB|KB|B)`)

// ParseFileSize normalizes a size value of unknown representation into a byte
// count. It accepts integers, floats, and human-readable strings.
//
// Rules:
//   - numeric input is truncated toward zero and clamped to >= 0
//   - strings with a B/KB/MB unit are multiplied by 1, 1024, or 1024²
//   - bare numeric text parses as a plain number
//   - anything else (missing, malformed, garbage) yields 0
//
// ParseFileSize never returns a negative value and never fails; the result is
// always safe to use in a numeric comparison.
func ParseFileSize(value any) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case int:
		return clampBytes(float64(v))
	case int32:
		return clampBytes(float64(v))
	case int64:
		return clampBytes(float64(v))
	case float32:
		return clampBytes(float64(v))
	case float64:
		return clampBytes(v)
	case string:
		return parseSizeString(v)
	default:
		return 0
	}
}

// parseSizeString handles human-readable size strings.
func parseSizeString(s string) int64 {
	if m := sizePattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0
		}
		switch strings.ToUpper(m[2]) {
		case "MB":
			return clampBytes(n * 1024 * 1024)
		case "KB":
			return clampBytes(n * 1024)
		default:
			return clampBytes(n)
		}
	}

	// No recognizable unit: accept plain numeric text.
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return clampBytes(n)
}

// clampBytes truncates toward zero and clamps to a non-negative byte count.
// Non-finite values map to 0 so a later comparison can never misbehave.
func clampBytes(n float64) int64 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0
	}
	return int64(math.Trunc(n))
}

// parseIntSafe parses a decimal string, returning 0 on any failure.
func parseIntSafe(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// coercePositiveInt coerces a loosely-typed value to a positive integer.
// Numbers and numeric strings are accepted; fractional values are truncated.
// Returns false for anything non-numeric, non-finite, or not positive.
func coercePositiveInt(value any) (int, bool) {
	var n float64
	switch v := value.(type) {
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case float32:
		n = float64(v)
	case float64:
		n = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}

	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, false
	}
	return int(math.Trunc(n)), true
}
