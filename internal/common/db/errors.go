package db

import (
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/rhythmix/backend/internal/observability/metrics"
)

const UniqueViolationCode = "23505"

func HandleQueryError(err error, notFoundErr error, operation, table string, startTime time.Time) error {
	MeasureQueryDuration(operation, table, startTime)

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	metrics.UserStoreQueryErrors.WithLabelValues(operation, table, fmt.Sprintf("%T", err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func HandleExecError(err error, operation, table string, startTime time.Time) error {
	MeasureQueryDuration(operation, table, startTime)

	if err == nil {
		return nil
	}
	metrics.UserStoreQueryErrors.WithLabelValues(operation, table, fmt.Sprintf("%T", err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func MeasureQueryDuration(operation, table string, startTime time.Time) {
	metrics.UserStoreQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())
}
