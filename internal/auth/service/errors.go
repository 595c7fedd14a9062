package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/rhythmix/backend/internal/common/errors"
)

// User-facing messages are part of the public contract and must not change.
var (
	ErrMissingFields = commonerrors.NewDomainError(
		"MISSING_REQUIRED_FIELDS",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Missing required fields",
	)

	ErrInvalidUsername = commonerrors.NewDomainError(
		"INVALID_USERNAME",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Invalid username. Use 3-20 characters (letters, numbers, underscores only).",
	)

	ErrInvalidEmail = commonerrors.NewDomainError(
		"INVALID_EMAIL",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Invalid email address.",
	)

	ErrInvalidPassword = commonerrors.NewDomainError(
		"INVALID_PASSWORD",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Password must be at least 8 characters long, include uppercase, lowercase, number, and special character.",
	)

	ErrUserExists = commonerrors.NewDomainError(
		"USER_ALREADY_EXISTS",
		commonerrors.CategoryConflict,
		http.StatusBadRequest,
		"User already exists",
	)

	ErrStorageUnavailable = commonerrors.NewDomainError(
		"STORAGE_UNAVAILABLE",
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"Storage temporarily unavailable",
	)

	// ErrRequestTimeout reports that the caller's context ended (cancelled or
	// past its deadline) before registration finished. Nothing is stored.
	ErrRequestTimeout = commonerrors.NewDomainError(
		"REQUEST_TIMEOUT",
		commonerrors.CategoryExternal,
		http.StatusGatewayTimeout,
		"Request timed out",
	)
)
