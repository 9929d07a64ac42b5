package domain

import "errors"

var (
	// ErrNoRelevantDocuments signals that vector search returned no candidates.
	ErrNoRelevantDocuments = errors.New("no relevant documents found")
	// ErrNoAnswer signals that extraction declined to produce a grounded answer.
	ErrNoAnswer = errors.New("no answer generated")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNoteTooShort signals a note below the minimum length for summarization.
	ErrNoteTooShort = errors.New("note too short")
	// ErrInvalidTopK signals a top_k value outside the allowed range.
	ErrInvalidTopK = errors.New("top_k must be between 1 and 10")
	// ErrEmptyQuery signals a blank question.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrEmbeddingProviderError signals an embedding provider failure after retries.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrExtractionProviderError signals an extraction provider failure after retries.
	ErrExtractionProviderError = errors.New("extraction provider error")
)
