package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	commonerrors "github.com/AlibekovAA/rhythmix/backend/internal/common/errors"
)

// errRequestEnded marks a store error observed after the request context
// ended. The store breaker excludes it from its failure count.
var errRequestEnded = errors.New("request ended before the store answered")

func isRequestEnded(err error) bool {
	return errors.Is(err, errRequestEnded)
}

// storeError tags err with errRequestEnded when ctx is already done, so a
// slow or aborted caller is never reported as a storage outage.
func storeError(ctx context.Context, err error) error {
	if err == nil || ctx.Err() == nil {
		return err
	}
	return fmt.Errorf("%w: %w", errRequestEnded, err)
}

func requestTimeout(ctx context.Context) error {
	cause := ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	return ErrRequestTimeout.WithCause(cause)
}

// classifyStoreError maps a store call failure to the error returned to
// callers: ErrRequestTimeout when the request itself ended, otherwise
// ErrStorageUnavailable.
func classifyStoreError(ctx context.Context, err error) error {
	if isRequestEnded(err) {
		return requestTimeout(ctx)
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return ErrStorageUnavailable.WithCause(err)
}

func newInternalError(code, message string, cause error) commonerrors.DomainError {
	err := commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}
