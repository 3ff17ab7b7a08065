package source

import "errors"

var (
	// ErrUnsupportedType is returned for files that cannot be turned into text
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrFileTooLarge is returned when a document exceeds the configured size limit
	ErrFileTooLarge = errors.New("file too large")
	// ErrOutsideDirectory is returned for paths escaping the document directory
	ErrOutsideDirectory = errors.New("path is outside configured directory")
)
