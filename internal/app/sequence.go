package app

import (
	"net/http"
	"time"

	"github.com/alexanderramin/buildseq/internal/domain"
)

// SequenceItem is one line item as a caller submits it.
type SequenceItem struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity     float64  `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Unit         string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Phase        string   `json:"phase,omitempty" yaml:"phase,omitempty"`
	DurationDays *float64 `json:"duration_days,omitempty" yaml:"duration_days,omitempty"`
	DependsOn    []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

type ProjectMeta struct {
	SquareFootage float64 `json:"square_footage,omitempty" yaml:"square_footage,omitempty"`
	ProjectType   string  `json:"project_type,omitempty" yaml:"project_type,omitempty"`
	Location      string  `json:"location,omitempty" yaml:"location,omitempty"`
}

// SequenceRequest is the input to one sequencing run. Nil include flags
// mean true; an empty mode means heuristic.
type SequenceRequest struct {
	Items               []SequenceItem `json:"items"`
	FreeTextDescription string         `json:"free_text_description,omitempty"`
	ProjectMeta         *ProjectMeta   `json:"project_meta,omitempty"`
	IncludePermits      *bool          `json:"include_permits,omitempty"`
	IncludeInspections  *bool          `json:"include_inspections,omitempty"`
	CriticalPathMode    string         `json:"critical_path_mode,omitempty"`
}

func NewSequenceRequest(items []SequenceItem) SequenceRequest {
	yes := true
	return SequenceRequest{
		Items:              items,
		IncludePermits:     &yes,
		IncludeInspections: &yes,
		CriticalPathMode:   string(domain.CriticalPathHeuristic),
	}
}

func (r SequenceRequest) PermitsIncluded() bool {
	return domain.BoolFromPtrWithDefault(true, r.IncludePermits)
}

func (r SequenceRequest) InspectionsIncluded() bool {
	return domain.BoolFromPtrWithDefault(true, r.IncludeInspections)
}

// Mode returns the requested critical path mode, defaulting to heuristic.
// Unknown values are returned as-is for the caller to reject.
func (r SequenceRequest) Mode() domain.CriticalPathMode {
	return domain.CriticalPathMode(domain.CoalesceStr(r.CriticalPathMode, string(domain.CriticalPathHeuristic)))
}

type SequenceResponse struct {
	GeneratedAt time.Time `json:"generated_at"`
	// Source is "items" or "free_text".
	Source string `json:"source"`
	domain.SequencingResult
}

type SequenceErrorCode string

const (
	SequenceErrEmptyInput           SequenceErrorCode = "EMPTY_INPUT"
	SequenceErrInvalidInput         SequenceErrorCode = "INVALID_INPUT"
	SequenceErrDescriptionTooLong   SequenceErrorCode = "DESCRIPTION_TOO_LONG"
	SequenceErrClassificationFailed SequenceErrorCode = "CLASSIFICATION_FAILED"
	SequenceErrRateLimited          SequenceErrorCode = "RATE_LIMITED"
	SequenceErrCycleDetected        SequenceErrorCode = "CYCLE_DETECTED"
	SequenceErrInternal             SequenceErrorCode = "INTERNAL_ERROR"
)

// Retryable reports whether the same request may succeed later.
func (c SequenceErrorCode) Retryable() bool {
	return c == SequenceErrClassificationFailed || c == SequenceErrRateLimited
}

// HTTPStatus maps the code to a response status.
func (c SequenceErrorCode) HTTPStatus() int {
	switch c {
	case SequenceErrEmptyInput, SequenceErrInvalidInput:
		return http.StatusBadRequest
	case SequenceErrDescriptionTooLong:
		return http.StatusRequestEntityTooLarge
	case SequenceErrClassificationFailed:
		return http.StatusBadGateway
	case SequenceErrRateLimited:
		return http.StatusTooManyRequests
	case SequenceErrCycleDetected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type SequenceError struct {
	Code    SequenceErrorCode
	Message string
	Err     error
}

func (e *SequenceError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *SequenceError) Unwrap() error { return e.Err }

func (e *SequenceError) Retryable() bool { return e.Code.Retryable() }
