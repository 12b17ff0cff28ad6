package contract

import "github.com/alexanderramin/buildseq/internal/app"

type ImportResult = app.ImportResult

type ConvertResult = app.ConvertResult

type DocumentView = app.DocumentView

type DocumentErrorCode = app.DocumentErrorCode

const (
	DocumentErrNotFound          DocumentErrorCode = app.DocumentErrNotFound
	DocumentErrInvalidTransition DocumentErrorCode = app.DocumentErrInvalidTransition
	DocumentErrNoLineItems       DocumentErrorCode = app.DocumentErrNoLineItems
)

type DocumentError = app.DocumentError
