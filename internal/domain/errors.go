package domain

import "errors"

var (
	ErrMissingBoundary       = errors.New("multipart boundary missing from content type")
	ErrMissingFile           = errors.New("no file part in request")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrFileTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrTextTooShort          = errors.New("extracted text too short to analyze")
	ErrNoAnalysis            = errors.New("no financial analysis available")
	ErrArtifactNotFound      = errors.New("extraction artifact not found")
	ErrCompletionUnavailable = errors.New("no completion provider configured")
)
