// Package probe decodes exact pixel dimensions from image bytes.
//
// Probing is the one stage of dimension detection that looks at the object
// itself rather than at names, sizes, or hints. It is optional: deployments
// that cannot afford to download object bodies disable it, and the estimator
// chain carries on without it.
package probe

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Prober extracts pixel dimensions from raw image data.
type Prober interface {
	// Dimensions decodes the image and returns its width and height.
	// Returns an error if the data is not a decodable image; the caller
	// treats that as missing evidence, not a failure.
	Dimensions(data io.Reader) (width, height int, err error)
}

// =============================================================================
// Implementation
// =============================================================================

// imagingProber implements Prober using the imaging library.
type imagingProber struct{}

// NewImagingProber creates a Prober backed by the imaging library's decoder.
// JPEG, PNG, GIF, TIFF and BMP are supported.
func NewImagingProber() Prober {
	return &imagingProber{}
}

// Dimensions decodes the image and returns its bounds.
func (p *imagingProber) Dimensions(data io.Reader) (int, int, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}
