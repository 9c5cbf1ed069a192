package store

import "errors"

var (
	ErrUnreachable       = errors.New("qdrant server unreachable")
	ErrNotReady          = errors.New("vector index not initialized")
	ErrEmptyQuery        = errors.New("search query is empty")
	ErrCourseNotFound    = errors.New("course not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
