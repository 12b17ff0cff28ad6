package contract

import "github.com/alexanderramin/buildseq/internal/app"

type SequenceItem = app.SequenceItem

type ProjectMeta = app.ProjectMeta

type SequenceRequest = app.SequenceRequest

func NewSequenceRequest(items []SequenceItem) SequenceRequest {
	return app.NewSequenceRequest(items)
}

type SequenceResponse = app.SequenceResponse

type SequenceErrorCode = app.SequenceErrorCode

const (
	ErrEmptyInput           SequenceErrorCode = app.SequenceErrEmptyInput
	ErrInvalidInput         SequenceErrorCode = app.SequenceErrInvalidInput
	ErrDescriptionTooLong   SequenceErrorCode = app.SequenceErrDescriptionTooLong
	ErrClassificationFailed SequenceErrorCode = app.SequenceErrClassificationFailed
	ErrRateLimited          SequenceErrorCode = app.SequenceErrRateLimited
	ErrCycleDetected        SequenceErrorCode = app.SequenceErrCycleDetected
	ErrInternalError        SequenceErrorCode = app.SequenceErrInternal
)

type SequenceError = app.SequenceError
