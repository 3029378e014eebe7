// Package domain contains the core types of the aspect analysis engine.
//
// This file defines the classification taxonomy and the result object handed
// back to the invoking workflow layer.
package domain

import (
	"fmt"
	"math"
)

// =============================================================================
// Classification
// =============================================================================

// Classification is the orientation category derived from an aspect ratio.
type Classification string

const (
	// ClassificationTall marks ratios taller than the policy threshold.
	ClassificationTall Classification = "tall"

	// ClassificationNotTall is the two-way policy's complement of tall.
	ClassificationNotTall Classification = "not_tall"

	// ClassificationWide marks ratios wider than the three-way upper threshold.
	ClassificationWide Classification = "wide"

	// ClassificationSquare marks ratios between the three-way thresholds.
	ClassificationSquare Classification = "square"

	// ClassificationError marks the structured failure result.
	ClassificationError Classification = "error"
)

// String returns the string representation of the classification.
func (c Classification) String() string {
	return string(c)
}

// IsValid returns true if the classification is a recognized value.
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationTall, ClassificationNotTall, ClassificationWide,
		ClassificationSquare, ClassificationError:
		return true
	}
	return false
}

// =============================================================================
// Ratio Policy
// =============================================================================

// RatioPolicy selects which classification taxonomy applies.
type RatioPolicy string

const (
	// PolicyTwoWay classifies tall vs not_tall against a single threshold.
	// Used for the 2:3 portrait routing test.
	PolicyTwoWay RatioPolicy = "two_way"

	// PolicyThreeWay classifies tall / square / wide against two thresholds.
	PolicyThreeWay RatioPolicy = "three_way"
)

// String returns the string representation of the policy.
func (p RatioPolicy) String() string {
	return string(p)
}

// IsValid returns true if the policy is a recognized value.
func (p RatioPolicy) IsValid() bool {
	return p == PolicyTwoWay || p == PolicyThreeWay
}

// =============================================================================
// Classification Result
// =============================================================================

// DebugInfo carries the raw, unparsed size input alongside the parsed byte
// count so malformed evidence can be diagnosed after the fact.
type DebugInfo struct {
	RawSize    string `json:"raw_size"`
	ParsedSize int64  `json:"parsed_size_bytes"`
}

// ClassificationResult is the fully-populated result object returned to the
// invoking workflow layer.
//
// Field types are a hard contract: a downstream conditional router performs
// strict type-sensitive comparisons on this payload. Integers stay integers,
// the ratio stays a float, booleans stay booleans, and every field is
// populated on every path including the error fallback. The result is
// constructed once per request and never mutated afterwards.
type ClassificationResult struct {
	Success         bool            `json:"success"`
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	AspectRatio     float64         `json:"aspect_ratio"`
	DecimalRatio    float64         `json:"decimal_ratio"`
	RatioText       string          `json:"ratio_text"`
	Classification  Classification  `json:"classification"`
	DetectionMethod DetectionMethod `json:"detection_method"`
	Debug           DebugInfo       `json:"debug_info"`
}

// RoundRatio rounds an aspect ratio to two decimal places for display.
// The unrounded value is always stored alongside it.
func RoundRatio(ratio float64) float64 {
	return math.Round(ratio*100) / 100
}

// RatioText formats a dimension pair as "W:H" for the result payload.
func RatioText(width, height int) string {
	return fmt.Sprintf("%d:%d", width, height)
}
