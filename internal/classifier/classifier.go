// Package classifier maps a resolved dimension pair to an orientation
// category under a configurable threshold policy.
//
// Two taxonomies are supported: the two-way 2:3 portrait test (tall vs
// not_tall) and the three-way tall / square / wide split. Both produce the
// same result shape so a downstream conditional router can branch on the
// payload regardless of which policy a deployment picked.
package classifier

import (
	"log/slog"
	"math"

	"github.com/aspectd/aspectd/internal/domain"
)

// Policy thresholds.
const (
	// TwoWayThreshold is the 2:3 boundary of the two-way policy. Ratios
	// strictly below it classify as tall.
	TwoWayThreshold = 2.0 / 3.0

	// ThreeWayTallThreshold is the lower boundary of the three-way policy.
	ThreeWayTallThreshold = 0.75

	// ThreeWayWideThreshold is the upper boundary of the three-way policy.
	ThreeWayWideThreshold = 1.5
)

// Failure fallback pair. A malformed input still yields a well-formed result
// carrying these values so consumer shape assumptions hold.
const (
	fallbackWidth  = 800
	fallbackHeight = 600
)

// Classifier classifies aspect ratios under a fixed policy. It holds no
// state across calls; every invocation is independent and idempotent.
type Classifier struct {
	policy domain.RatioPolicy
	logger *slog.Logger
}

// New creates a Classifier for the given policy. An unrecognized policy
// falls back to the two-way taxonomy.
func New(policy domain.RatioPolicy, logger *slog.Logger) *Classifier {
	if !policy.IsValid() {
		policy = domain.PolicyTwoWay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{policy: policy, logger: logger}
}

// Policy returns the taxonomy this classifier applies.
func (c *Classifier) Policy() domain.RatioPolicy {
	return c.policy
}

// Classify computes the aspect ratio of the pair and maps it to an
// orientation category.
//
// The ratio is stored at full double precision; DecimalRatio carries a
// two-decimal rounding for display. A non-positive or non-finite input does
// not raise: it produces a structured failure result with classification
// "error" and a fixed safe dimension pair, with every field populated.
func (c *Classifier) Classify(width, height int) domain.ClassificationResult {
	if width <= 0 || height <= 0 {
		return c.failureResult(width, height)
	}

	ratio := float64(width) / float64(height)
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return c.failureResult(width, height)
	}

	return domain.ClassificationResult{
		Success:        true,
		Width:          width,
		Height:         height,
		AspectRatio:    ratio,
		DecimalRatio:   domain.RoundRatio(ratio),
		RatioText:      domain.RatioText(width, height),
		Classification: c.classifyRatio(ratio),
	}
}

// ClassifyDimension classifies a resolved dimension pair and stamps the
// detection method that produced it onto the result.
func (c *Classifier) ClassifyDimension(d domain.Dimension) domain.ClassificationResult {
	res := c.Classify(d.Width, d.Height)
	res.DetectionMethod = d.Method
	return res
}

// classifyRatio applies the configured threshold policy.
func (c *Classifier) classifyRatio(ratio float64) domain.Classification {
	if c.policy == domain.PolicyThreeWay {
		switch {
		case ratio < ThreeWayTallThreshold:
			return domain.ClassificationTall
		case ratio > ThreeWayWideThreshold:
			return domain.ClassificationWide
		default:
			return domain.ClassificationSquare
		}
	}

	if ratio < TwoWayThreshold {
		return domain.ClassificationTall
	}
	return domain.ClassificationNotTall
}

// failureResult builds the structured failure payload. The fixed fallback
// pair keeps every numeric field populated with its contracted type.
func (c *Classifier) failureResult(width, height int) domain.ClassificationResult {
	c.logger.Warn("classify called with unusable dimensions",
		"width", width,
		"height", height,
	)

	ratio := float64(fallbackWidth) / float64(fallbackHeight)
	return domain.ClassificationResult{
		Success:        false,
		Width:          fallbackWidth,
		Height:         fallbackHeight,
		AspectRatio:    ratio,
		DecimalRatio:   domain.RoundRatio(ratio),
		RatioText:      domain.RatioText(fallbackWidth, fallbackHeight),
		Classification: domain.ClassificationError,
	}
}
