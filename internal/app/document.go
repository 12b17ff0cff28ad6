package app

import "github.com/alexanderramin/buildseq/internal/domain"

type ImportResult struct {
	Document      *domain.Document
	LineItemCount int
}

type ConvertResult struct {
	Source   *domain.Document
	Document *domain.Document
	// Schedule is set when the new document is a work order.
	Schedule *domain.Schedule
}

type DocumentView struct {
	Document  *domain.Document
	LineItems []*domain.LineItem
	// Schedule is the latest saved schedule, if any.
	Schedule *domain.Schedule
}

type DocumentErrorCode string

const (
	DocumentErrNotFound          DocumentErrorCode = "NOT_FOUND"
	DocumentErrInvalidTransition DocumentErrorCode = "INVALID_TRANSITION"
	DocumentErrNoLineItems       DocumentErrorCode = "NO_LINE_ITEMS"
)

type DocumentError struct {
	Code    DocumentErrorCode
	Message string
}

func (e *DocumentError) Error() string {
	return string(e.Code) + ": " + e.Message
}
