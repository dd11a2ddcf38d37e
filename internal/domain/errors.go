package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrDocumentNotParsed   = errors.New("document has not been parsed yet")
	ErrDocumentProcessing  = errors.New("document is being parsed")
	ErrInvalidExportFormat = errors.New("invalid export format")
)
