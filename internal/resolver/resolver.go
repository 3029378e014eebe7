// Package resolver derives pixel dimensions from incomplete, heterogeneous
// evidence: explicit hints, file names, and binary object metadata.
//
// Resolution is a single explicit priority-ordered chain. Each stage either
// produces a usable (strictly positive) pair or hands over to the next stage;
// the final stage is a fixed default that cannot fail. Malformed evidence is
// treated exactly like missing evidence: it is logged for diagnosis and the
// chain advances. Resolve never returns an error and never panics.
package resolver

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/aspectd/aspectd/internal/domain"
)

// dimensionPattern matches a <digits>x<digits> token anywhere in a file name,
// e.g. "photo_1920x1080.jpg".
var dimensionPattern = regexp.MustCompile(`(?i)(\d+)x(\d+)`)

// =============================================================================
// Configuration
// =============================================================================

// KeywordRule maps a set of file name keywords to an assumed dimension pair.
type KeywordRule struct {
	Keywords []string
	Width    int
	Height   int
}

// SizeBucket maps a minimum byte count (exclusive) to an assumed dimension
// pair. Buckets are evaluated in order, so they must be sorted by descending
// MinBytes.
type SizeBucket struct {
	MinBytes int64
	Width    int
	Height   int
}

// Config holds the tunable tables of the resolution chain. All of these are
// deployment configuration rather than hard-coded behavior.
type Config struct {
	// KeywordRules is the ordered keyword table for the filename_keyword
	// stage. The first matching keyword wins; table order is the tie-break.
	KeywordRules []KeywordRule

	// SizeBuckets is the descending threshold table for the
	// filesize_estimate stage.
	SizeBuckets []SizeBucket

	// SizeFallbackWidth/Height is the pair assumed for sizes below every
	// bucket threshold.
	SizeFallbackWidth  int
	SizeFallbackHeight int

	// DefaultWidth/Height is the fixed pair returned when no stage yields
	// usable evidence.
	DefaultWidth  int
	DefaultHeight int
}

// DefaultConfig returns the stock tables used when no deployment overrides
// are supplied.
func DefaultConfig() Config {
	return Config{
		KeywordRules: []KeywordRule{
			{Keywords: []string{"portrait", "mobile", "vertical", "tall"}, Width: 1080, Height: 1920},
			{Keywords: []string{"banner", "header", "landscape", "wide"}, Width: 1920, Height: 1080},
			{Keywords: []string{"square", "icon", "profile", "avatar"}, Width: 500, Height: 500},
			{Keywords: []string{"thumbnail", "thumb"}, Width: 150, Height: 150},
		},
		SizeBuckets: []SizeBucket{
			{MinBytes: 2_000_000, Width: 1920, Height: 1080},
			{MinBytes: 1_000_000, Width: 1024, Height: 768},
			{MinBytes: 500_000, Width: 800, Height: 600},
		},
		SizeFallbackWidth:  500,
		SizeFallbackHeight: 500,
		DefaultWidth:       800,
		DefaultHeight:      600,
	}
}

// =============================================================================
// Resolver
// =============================================================================

// Resolver resolves a dimension pair from a ResolutionContext. It holds no
// mutable state; a single Resolver is safe for concurrent use.
type Resolver struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Resolver with the given tables. Zero-valued default and size
// fallback pairs are replaced by the stock values so the positive-dimension
// invariant holds regardless of configuration mistakes.
func New(cfg Config, logger *slog.Logger) *Resolver {
	stock := DefaultConfig()
	if cfg.DefaultWidth <= 0 || cfg.DefaultHeight <= 0 {
		cfg.DefaultWidth = stock.DefaultWidth
		cfg.DefaultHeight = stock.DefaultHeight
	}
	if cfg.SizeFallbackWidth <= 0 || cfg.SizeFallbackHeight <= 0 {
		cfg.SizeFallbackWidth = stock.SizeFallbackWidth
		cfg.SizeFallbackHeight = stock.SizeFallbackHeight
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cfg: cfg, logger: logger}
}

// Resolve derives a dimension pair from the context using the priority chain:
//
//  1. explicit width/height hints
//  2. probed pixel dimensions (when the probe collaborator ran)
//  3. <digits>x<digits> pattern in the file name
//  4. keyword table match on the lower-cased file name
//  5. byte-size bucket estimate from binary metadata
//  6. fixed default pair
//
// The first stage to produce a strictly positive pair wins. Resolve never
// fails and never returns a non-positive dimension.
func (r *Resolver) Resolve(ctx domain.ResolutionContext) domain.Dimension {
	if d, ok := r.fromExplicit(ctx); ok {
		return d
	}
	if d, ok := r.fromProbe(ctx); ok {
		return d
	}
	if d, ok := r.fromFilenamePattern(ctx.FileName); ok {
		return d
	}
	if d, ok := r.fromFilenameKeyword(ctx.FileName); ok {
		return d
	}
	if d, ok := r.fromFileSize(ctx); ok {
		return d
	}

	r.logger.Debug("no usable dimension evidence, using default",
		"width", r.cfg.DefaultWidth,
		"height", r.cfg.DefaultHeight,
	)
	return domain.Dimension{
		Width:  r.cfg.DefaultWidth,
		Height: r.cfg.DefaultHeight,
		Method: domain.DetectionDefaultFallback,
	}
}

// HasExplicit reports whether both hints coerce to positive integers, i.e.
// whether the explicit stage would resolve without falling through. Callers
// use it to decide whether gathering further evidence is worthwhile.
func HasExplicit(width, height any) bool {
	_, wok := coercePositiveInt(width)
	_, hok := coercePositiveInt(height)
	return wok && hok
}

// fromExplicit uses caller-supplied hints when both coerce to positive
// integers. A non-numeric or non-positive value disqualifies the stage
// entirely rather than erroring.
func (r *Resolver) fromExplicit(ctx domain.ResolutionContext) (domain.Dimension, bool) {
	if ctx.ExplicitWidth == nil || ctx.ExplicitHeight == nil {
		return domain.Dimension{}, false
	}

	width, wok := coercePositiveInt(ctx.ExplicitWidth)
	height, hok := coercePositiveInt(ctx.ExplicitHeight)
	if !wok || !hok {
		r.logger.Debug("explicit dimensions present but unusable",
			"width", ctx.ExplicitWidth,
			"height", ctx.ExplicitHeight,
		)
		return domain.Dimension{}, false
	}

	return domain.Dimension{Width: width, Height: height, Method: domain.DetectionExplicit}, true
}

// fromProbe uses exact dimensions decoded from the image bytes, when the
// probe collaborator supplied them.
func (r *Resolver) fromProbe(ctx domain.ResolutionContext) (domain.Dimension, bool) {
	if ctx.ProbedWidth <= 0 || ctx.ProbedHeight <= 0 {
		return domain.Dimension{}, false
	}
	return domain.Dimension{
		Width:  ctx.ProbedWidth,
		Height: ctx.ProbedHeight,
		Method: domain.DetectionPixelProbe,
	}, true
}

// fromFilenamePattern searches the file name for a WxH token. A match with a
// zero side is not usable and falls through to the keyword stage.
func (r *Resolver) fromFilenamePattern(fileName string) (domain.Dimension, bool) {
	if fileName == "" {
		return domain.Dimension{}, false
	}

	m := dimensionPattern.FindStringSubmatch(fileName)
	if m == nil {
		return domain.Dimension{}, false
	}

	width := parseIntSafe(m[1])
	height := parseIntSafe(m[2])
	if width <= 0 || height <= 0 {
		r.logger.Debug("filename pattern matched but pair not positive",
			"file_name", fileName, "width", width, "height", height)
		return domain.Dimension{}, false
	}

	return domain.Dimension{Width: width, Height: height, Method: domain.DetectionFilenamePattern}, true
}

// fromFilenameKeyword scans the lower-cased file name against the keyword
// table. The first matching keyword wins.
func (r *Resolver) fromFilenameKeyword(fileName string) (domain.Dimension, bool) {
	if fileName == "" {
		return domain.Dimension{}, false
	}

	lower := strings.ToLower(fileName)
	for _, rule := range r.cfg.KeywordRules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, kw) {
				if rule.Width <= 0 || rule.Height <= 0 {
					continue
				}
				return domain.Dimension{
					Width:  rule.Width,
					Height: rule.Height,
					Method: domain.DetectionFilenameKeyword,
				}, true
			}
		}
	}
	return domain.Dimension{}, false
}

// fromFileSize buckets the parsed byte size by descending thresholds. A size
// that parses to zero (including garbage strings) still lands in the smallest
// bucket; only a missing size value skips the stage.
func (r *Resolver) fromFileSize(ctx domain.ResolutionContext) (domain.Dimension, bool) {
	if !ctx.HasSize() {
		return domain.Dimension{}, false
	}

	size := ParseFileSize(ctx.Meta.Size)
	for _, bucket := range r.cfg.SizeBuckets {
		if size > bucket.MinBytes && bucket.Width > 0 && bucket.Height > 0 {
			return domain.Dimension{
				Width:  bucket.Width,
				Height: bucket.Height,
				Method: domain.DetectionFilesizeEstimate,
			}, true
		}
	}

	return domain.Dimension{
		Width:  r.cfg.SizeFallbackWidth,
		Height: r.cfg.SizeFallbackHeight,
		Method: domain.DetectionFilesizeEstimate,
	}, true
}
