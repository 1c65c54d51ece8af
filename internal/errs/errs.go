package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks bad or empty input the caller can correct.
	ErrValidation = errors.New("validation error")

	// ErrAuth marks a missing, invalid or expired credential.
	ErrAuth = errors.New("auth error")

	// ErrConflict marks an entity that already exists.
	ErrConflict = errors.New("conflict")

	// ErrEmbedding marks a failed call to the embedding model.
	ErrEmbedding = errors.New("embedding error")

	// ErrGeneration marks a failed call to the generative model.
	ErrGeneration = errors.New("generation error")

	// ErrIndex marks an unavailable vector index or a dimension mismatch.
	ErrIndex = errors.New("index error")

	// ErrStore marks a metadata write that failed after the vector write succeeded.
	ErrStore = errors.New("store error")

	// ErrTimeout marks an outbound call that ran past its deadline.
	ErrTimeout = errors.New("timeout")
)

// Wrap tags err with kind so that errors.Is matches both the kind and the
// original cause. Deadline overruns are additionally tagged with ErrTimeout.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%s: %w: %w: %w", op, kind, ErrTimeout, err)
	}

	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Validation builds a validation error with a human readable message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Status maps an error onto the HTTP status reported to callers.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
