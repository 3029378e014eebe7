// Package handler contains the HTTP boundary of the aspect analysis service.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aspectd/aspectd/internal/domain"
	"github.com/aspectd/aspectd/internal/service"
)

// maxAnalyzeBody caps how much JSON an analyze request may carry. Evidence
// payloads are a handful of fields; anything larger is a client error.
const maxAnalyzeBody = 1 << 20 // 1 MiB

// AnalyzeHandler serves the analysis API.
type AnalyzeHandler struct {
	service service.AnalyzeService
	logger  *slog.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(svc service.AnalyzeService, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes registers the analysis routes on the mux.
func (h *AnalyzeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /analyze", h.Analyze)
}

// =============================================================================
// Request Payload
// =============================================================================

// analyzePayload is the wire shape of an analysis request. Workflow engines
// are sloppy about field types, so every evidence field is decoded loosely
// and coerced afterwards; a wrong-typed field counts as absent, never as a
// request failure.
type analyzePayload struct {
	Bucket      any `json:"bucket"`
	Key         any `json:"key"`
	FileKey     any `json:"file_key"`
	Filename    any `json:"filename"`
	Width       any `json:"width"`
	Height      any `json:"height"`
	ImageWidth  any `json:"image_width"`
	ImageHeight any `json:"image_height"`
	Size        any `json:"size"`

	// Binary is the descriptor of an already-downloaded object, as produced
	// by upstream download nodes.
	Binary *binaryDescriptor `json:"binary"`
}

// binaryDescriptor mirrors the upstream binary-object metadata block. Size
// may be an integer, a float, or a human string like "1.06 MB".
type binaryDescriptor struct {
	FileName any `json:"file_name"`
	Size     any `json:"size"`
}

// =============================================================================
// Handler
// =============================================================================

// Analyze handles POST /analyze. The only hard failure is undecodable JSON;
// every field-level problem degrades to weaker evidence and still produces a
// fully-populated result.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	const op = "analyze.decode"

	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBody)

	var payload analyzePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ErrorResponse(w, r, h.logger, domain.Errorf(domain.ETOOLARGE, op,
				"Request body exceeds %d bytes", maxErr.Limit))
			return
		}
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Request body is not valid JSON"))
		return
	}

	result := h.service.Analyze(r.Context(), payload.toRequest())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("failed to encode analyze response", "error", err)
	}
}

// toRequest coerces the loose payload into a service request. Field aliases
// follow upstream conventions: width/image_width, filename/file_key.
func (p *analyzePayload) toRequest() service.AnalyzeRequest {
	req := service.AnalyzeRequest{
		Bucket:         asString(p.Bucket),
		Key:            asString(firstPresent(p.Key, p.FileKey)),
		FileName:       asString(p.Filename),
		ExplicitWidth:  firstPresent(p.Width, p.ImageWidth),
		ExplicitHeight: firstPresent(p.Height, p.ImageHeight),
		SizeHint:       p.Size,
	}

	if p.Binary != nil {
		if req.FileName == "" {
			req.FileName = asString(p.Binary.FileName)
		}
		if req.SizeHint == nil {
			req.SizeHint = p.Binary.Size
		}
	}

	return req
}

// asString returns the value if it is a string, else "".
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// firstPresent returns the first non-nil value.
func firstPresent(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
