package domain

import "errors"

// Sentinel errors shared across layers.
var (
	// ErrEmptyQuestion signals a blank question rejected before retrieval.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrNoteNotFound signals a missing note.
	ErrNoteNotFound = errors.New("note not found")
	// ErrEmbeddingProviderError signals a remote embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidNote signals a note that fails validation on write.
	ErrInvalidNote = errors.New("invalid note")
)
