// Package service contains the business logic of the aspect analysis engine.
//
// This file implements the analyze orchestration: evidence gathering from
// object storage, dimension resolution, and ratio classification.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aspectd/aspectd/internal/classifier"
	"github.com/aspectd/aspectd/internal/domain"
	"github.com/aspectd/aspectd/internal/metrics"
	"github.com/aspectd/aspectd/internal/probe"
	"github.com/aspectd/aspectd/internal/resolver"
	"github.com/aspectd/aspectd/internal/storage"
	"github.com/google/uuid"
)

// =============================================================================
// Request / Result Types
// =============================================================================

// AnalyzeRequest is the loosely-typed analysis input assembled by the
// transport layer. Every field is optional; missing or malformed values
// advance the resolver's fallback chain instead of failing the request.
type AnalyzeRequest struct {
	Bucket         string // Object storage bucket, empty for the default
	Key            string // Object key; doubles as file name evidence
	FileName       string // Upload file name, when distinct from the key
	ExplicitWidth  any    // Number or numeric string
	ExplicitHeight any    // Number or numeric string
	SizeHint       any    // Size descriptor from the upstream payload
}

// Source identifies the object an analysis was performed against.
type Source struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// AnalyzeResult is the full analysis payload returned to the caller. It
// embeds the type-stable ClassificationResult and adds request bookkeeping.
type AnalyzeResult struct {
	domain.ClassificationResult

	Source     Source    `json:"source"`
	RequestID  string    `json:"request_id"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// =============================================================================
// Interface Definition
// =============================================================================

// AnalyzeService runs the full analysis pipeline for one request.
type AnalyzeService interface {
	// Analyze resolves dimensions for the request and classifies the aspect
	// ratio. It never fails: evidence problems (missing objects, unreadable
	// bytes, malformed hints) degrade the detection method, and even a fully
	// empty request yields a well-formed result.
	Analyze(ctx context.Context, req AnalyzeRequest) AnalyzeResult
}

// =============================================================================
// Implementation
// =============================================================================

// analyzeService implements the AnalyzeService interface.
type analyzeService struct {
	storage    storage.Storage // nil means payload-only mode
	prober     probe.Prober    // nil means pixel probing disabled
	resolver   *resolver.Resolver
	classifier *classifier.Classifier
	logger     *slog.Logger
}

// NewAnalyzeService creates a new AnalyzeService.
//
// store may be nil for deployments that analyze payload evidence only.
// prober may be nil to disable pixel probing; the estimator chain then runs
// on metadata alone.
func NewAnalyzeService(
	store storage.Storage,
	prober probe.Prober,
	res *resolver.Resolver,
	cls *classifier.Classifier,
	logger *slog.Logger,
) AnalyzeService {
	return &analyzeService{
		storage:    store,
		prober:     prober,
		resolver:   res,
		classifier: cls,
		logger:     logger,
	}
}

// Analyze runs resolution and classification for one request.
func (s *analyzeService) Analyze(ctx context.Context, req AnalyzeRequest) AnalyzeResult {
	start := time.Now()
	defer func() {
		metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())
	}()

	rctx := s.buildContext(ctx, req)

	dim := s.resolver.Resolve(rctx)
	result := s.classifier.ClassifyDimension(dim)
	result.Debug = s.debugInfo(rctx)

	metrics.AnalysesTotal.WithLabelValues(dim.Method.String(), result.Classification.String()).Inc()

	s.logger.Info("analysis complete",
		"bucket", req.Bucket,
		"key", req.Key,
		"width", result.Width,
		"height", result.Height,
		"aspect_ratio", result.DecimalRatio,
		"classification", result.Classification.String(),
		"detection_method", dim.Method.String(),
	)

	return AnalyzeResult{
		ClassificationResult: result,
		Source:               Source{Bucket: req.Bucket, Key: req.Key},
		RequestID:            uuid.New().String(),
		AnalyzedAt:           time.Now().UTC(),
	}
}

// buildContext assembles the resolution evidence. Storage is consulted only
// when the caller's explicit hints would not resolve on their own, mirroring
// the priority order of the resolver itself.
func (s *analyzeService) buildContext(ctx context.Context, req AnalyzeRequest) domain.ResolutionContext {
	fileName := req.FileName
	if fileName == "" {
		fileName = req.Key
	}

	rctx := domain.ResolutionContext{
		ExplicitWidth:  req.ExplicitWidth,
		ExplicitHeight: req.ExplicitHeight,
		FileName:       fileName,
	}

	// Storage is consulted whenever the explicit stage cannot win outright,
	// so malformed hints degrade exactly like missing ones.
	hasExplicit := resolver.HasExplicit(req.ExplicitWidth, req.ExplicitHeight)
	if !hasExplicit && s.storage != nil && req.Key != "" {
		s.gatherObjectEvidence(ctx, req, &rctx)
	}

	// A size hint from the payload fills in when storage produced nothing.
	if rctx.Meta == nil && req.SizeHint != nil {
		rctx.Meta = &domain.ObjectMeta{Size: req.SizeHint}
	}

	return rctx
}

// gatherObjectEvidence fetches metadata (and, with probing enabled, bytes)
// for the object. Any storage failure is absorbed: the request proceeds on
// whatever evidence is left.
func (s *analyzeService) gatherObjectEvidence(ctx context.Context, req AnalyzeRequest, rctx *domain.ResolutionContext) {
	if s.prober == nil {
		info, err := s.storage.Head(ctx, req.Bucket, req.Key)
		if err != nil {
			metrics.StorageFetchFailures.WithLabelValues("head").Inc()
			s.logger.Warn("object metadata unavailable, continuing without it",
				"bucket", req.Bucket, "key", req.Key, "error", err)
			return
		}
		rctx.Meta = &domain.ObjectMeta{Size: info.Size, ContentType: info.ContentType}
		return
	}

	body, info, err := s.storage.Get(ctx, req.Bucket, req.Key)
	if err != nil {
		metrics.StorageFetchFailures.WithLabelValues("get").Inc()
		s.logger.Warn("object unavailable, continuing without it",
			"bucket", req.Bucket, "key", req.Key, "error", err)
		return
	}
	defer body.Close()

	rctx.Meta = &domain.ObjectMeta{Size: info.Size, ContentType: info.ContentType}

	// Probing a non-image body would always fail the decoder; skip it when
	// the reported content type rules an image out.
	if info.ContentType != "" && !storage.IsImage(info.ContentType) {
		s.logger.Debug("skipping pixel probe for non-image object",
			"key", req.Key, "content_type", info.ContentType)
		return
	}

	width, height, err := s.prober.Dimensions(body)
	if err != nil {
		metrics.ProbeFailures.Inc()
		s.logger.Debug("pixel probe failed, falling back to estimation",
			"bucket", req.Bucket, "key", req.Key, "error", err)
		return
	}

	rctx.ProbedWidth = width
	rctx.ProbedHeight = height
}

// debugInfo records the raw size evidence next to its parsed byte count.
func (s *analyzeService) debugInfo(rctx domain.ResolutionContext) domain.DebugInfo {
	if !rctx.HasSize() {
		return domain.DebugInfo{}
	}

	raw := fmt.Sprintf("%v", rctx.Meta.Size)
	parsed := resolver.ParseFileSize(rctx.Meta.Size)
	if parsed == 0 && raw != "0" {
		metrics.SizeParseFailures.Inc()
	}

	return domain.DebugInfo{RawSize: raw, ParsedSize: parsed}
}
