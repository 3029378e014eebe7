package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFileSize_HumanStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"megabytes with space", "1.06 MB", 1111490},
		{"kilobytes with space", "512 KB", 524288},
		{"plain bytes", "1024 B", 1024},
		{"no space before unit", "2MB", 2097152},
		{"lowercase unit", "512 kb", 524288},
		{"fractional kilobytes", "1.5KB", 1536},
		{"bare numeric text", "2048", 2048},
		{"bare float text", "2048.9", 2048},
		{"leading whitespace", "  300 ", 300},
		{"garbage", "garbage", 0},
		{"empty string", "", 0},
		{"unit only", "MB", 0},
		{"negative number", "-500", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFileSize(tt.input))
		})
	}
}

func TestParseFileSize_Numbers(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int64
	}{
		{"int", 2048, 2048},
		{"int64", int64(5_000_000), 5_000_000},
		{"float truncates toward zero", 1024.9, 1024},
		{"negative clamps to zero", -42, 0},
		{"negative float clamps to zero", -0.5, 0},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFileSize(tt.input))
		})
	}
}

func TestParseFileSize_UnusableInput(t *testing.T) {
	// Whatever shows up, the result must be a usable non-negative byte count.
	inputs := []any{nil, true, []string{"1 MB"}, map[string]any{"size": 1}, struct{}{}}

	for _, input := range inputs {
		assert.GreaterOrEqual(t, ParseFileSize(input), int64(0))
		assert.Equal(t, int64(0), ParseFileSize(input))
	}
}

func TestCoercePositiveInt(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   int
		wantOK bool
	}{
		{"int", 1080, 1080, true},
		{"float from json", float64(1920), 1920, true},
		{"numeric string", "1080", 1080, true},
		{"numeric string with spaces", " 720 ", 720, true},
		{"fractional truncates", 99.9, 99, true},
		{"zero", 0, 0, false},
		{"negative", -5, 0, false},
		{"negative string", "-5", 0, false},
		{"non-numeric string", "abc", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coercePositiveInt(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
