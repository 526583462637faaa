package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTextTooShort means the input was too short to embed meaningfully.
	ErrTextTooShort = errors.New("text too short for embedding")
	// ErrDimensionMismatch means two vectors of different length were compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrEmbeddingUnavailable means the embedding provider failed or returned
	// a malformed payload. Orchestrators treat this as the signal to fall back
	// to keyword matching; it must never reach an API caller.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrInsufficientProfile means an assessment result carried neither skill
	// gaps nor career clusters, so no profile text could be assembled.
	ErrInsufficientProfile = errors.New("insufficient assessment profile")
)

// DatabaseError wraps a corpus or persistence failure with the operation that
// produced it.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("database error in %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("database error: %v", e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func NewDatabaseError(op string, err error) *DatabaseError {
	return &DatabaseError{Op: op, Err: err}
}

// IsDatabaseError reports whether err carries a DatabaseError anywhere in its
// chain.
func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}
