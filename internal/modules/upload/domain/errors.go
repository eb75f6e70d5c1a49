package domain

import "errors"

var (
	ErrEmptySelection      = errors.New("no file selected")
	ErrInputNotFound       = errors.New("file input element not found")
	ErrUnsupportedRef      = errors.New("unsupported file reference")
	ErrSourceNotConfigured = errors.New("file source not configured")
	ErrNotAFile            = errors.New("reference is not a regular file")
)
