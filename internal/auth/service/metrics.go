package service

import (
	"time"

	"github.com/AlibekovAA/rhythmix/backend/internal/observability/metrics"
)

const (
	resultSuccess         = "success"
	resultValidationError = "validation_error"
	resultDuplicate       = "duplicate"
	resultStorageError    = "storage_error"
	resultInternalError   = "internal_error"
	resultAbandoned       = "abandoned"
)

func recordRegistration(result string) {
	metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	if result == resultSuccess {
		metrics.RegisteredUsers.Inc()
	}
}

func observeHashDuration(start time.Time) {
	metrics.PasswordHashDurationSeconds.Observe(time.Since(start).Seconds())
}

func observeHashWait(start time.Time) {
	metrics.PasswordHashWaitSeconds.Observe(time.Since(start).Seconds())
}
