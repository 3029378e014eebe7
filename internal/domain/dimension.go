// Package domain contains the core types of the aspect analysis engine.
//
// This file defines the resolution context, the resolved dimension pair and
// the detection method taxonomy recorded with every resolution.
package domain

import "fmt"

// =============================================================================
// Detection Method
// =============================================================================

// DetectionMethod records which resolution stage produced a dimension pair.
// Exactly one method is recorded per resolution; it is an audit trail for
// diagnostics, not a retry signal.
type DetectionMethod string

const (
	// DetectionExplicit indicates the caller supplied both dimensions.
	DetectionExplicit DetectionMethod = "explicit"

	// DetectionPixelProbe indicates dimensions were decoded from the image
	// bytes themselves by the optional probe collaborator.
	DetectionPixelProbe DetectionMethod = "pixel_probe"

	// DetectionFilenamePattern indicates a <digits>x<digits> token was found
	// in the file name.
	DetectionFilenamePattern DetectionMethod = "filename_pattern"

	// DetectionFilenameKeyword indicates a keyword table entry matched the
	// lower-cased file name.
	DetectionFilenameKeyword DetectionMethod = "filename_keyword"

	// DetectionFilesizeEstimate indicates dimensions were bucketed from the
	// object's byte size.
	DetectionFilesizeEstimate DetectionMethod = "filesize_estimate"

	// DetectionDefaultFallback indicates no evidence was usable and the fixed
	// default pair was returned.
	DetectionDefaultFallback DetectionMethod = "default_fallback"
)

// String returns the string representation of the method.
func (m DetectionMethod) String() string {
	return string(m)
}

// IsValid returns true if the method is a recognized value.
func (m DetectionMethod) IsValid() bool {
	switch m {
	case DetectionExplicit, DetectionPixelProbe, DetectionFilenamePattern,
		DetectionFilenameKeyword, DetectionFilesizeEstimate, DetectionDefaultFallback:
		return true
	}
	return false
}

// =============================================================================
// Dimension
// =============================================================================

// Dimension is a resolved pixel dimension pair together with the stage that
// produced it.
//
// Invariant: Width and Height are strictly positive whenever a Dimension is
// returned by the resolver. The default fallback stage guarantees this even
// when every detection stage fails.
type Dimension struct {
	Width  int
	Height int
	Method DetectionMethod
}

// IsUsable returns true if both sides of the pair are strictly positive.
func (d Dimension) IsUsable() bool {
	return d.Width > 0 && d.Height > 0
}

// AspectRatio returns width divided by height, or 0 for a degenerate pair.
func (d Dimension) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

// String returns the pair in "WxH" form.
func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// =============================================================================
// Resolution Context
// =============================================================================

// ObjectMeta carries metadata about a retrieved binary object.
//
// Size is deliberately untyped: upstream workflow payloads deliver it as an
// integer byte count, a float, or a human string such as "1.06 MB". The
// resolver's file-size parser normalizes whatever shows up.
type ObjectMeta struct {
	Size        any    // raw size value, representation unknown at parse time
	ContentType string // MIME type if the retrieval layer reported one
}

// ResolutionContext is the immutable evidence bag a single resolution
// operates on. Every field is optional; absence of a field advances the
// fallback chain instead of failing.
type ResolutionContext struct {
	// ExplicitWidth and ExplicitHeight accept numbers or numeric strings.
	// Anything that does not coerce to a positive integer disqualifies the
	// explicit stage without error.
	ExplicitWidth  any
	ExplicitHeight any

	// ProbedWidth and ProbedHeight are exact dimensions decoded from image
	// bytes by the probe collaborator. Zero means no probe result.
	ProbedWidth  int
	ProbedHeight int

	// FileName is the object key or upload name. Empty means no evidence.
	FileName string

	// Meta is metadata about the binary object, if any was retrieved.
	Meta *ObjectMeta
}

// HasSize returns true if binary metadata with a size value is present.
func (c ResolutionContext) HasSize() bool {
	return c.Meta != nil && c.Meta.Size != nil
}
