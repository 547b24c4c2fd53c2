package model

import (
	"errors"

	"rag-console/pkg/apierror"
)

var (
	// Session related errors
	ErrUnauthorized    = apierror.ErrUnauthorized
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenMissing    = errors.New("no token stored")

	// Document related errors
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
