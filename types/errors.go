package types

import (
	"errors"
	"fmt"
)

// Error taxonomy for the retrieval and conversation paths. Retrieval errors
// degrade the turn (sentinel context), model errors force the busy/close
// flow, validation errors are rejected before any external call.
var (
	ErrEmbedding        = errors.New("embedding provider failed")
	ErrVectorStore      = errors.New("vector store query failed")
	ErrDocumentFetch    = errors.New("full document fetch failed")
	ErrModelUnavailable = errors.New("generative model unavailable")
	ErrMalformedTurn    = errors.New("last message must be a non-empty user message")
	ErrFunctionExec     = errors.New("function execution failed")
)

func EmbeddingError(err error) error {
	return fmt.Errorf("%w: %v", ErrEmbedding, err)
}

func VectorStoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrVectorStore, err)
}

func DocumentFetchError(url string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDocumentFetch, url, err)
}

func ModelUnavailableError(err error) error {
	return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
}

func FunctionExecutionError(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrFunctionExec, name, err)
}
