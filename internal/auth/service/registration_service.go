package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/semaphore"

	authdto "github.com/AlibekovAA/rhythmix/backend/internal/auth/service/dto"
	"github.com/AlibekovAA/rhythmix/backend/internal/auth/service/mapper"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/rhythmix/backend/internal/common/crypto"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/logger"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/resilience"
	userdomain "github.com/AlibekovAA/rhythmix/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/rhythmix/backend/internal/user/repository"
)

const storeBreakerName = "user_store"

type RegistrationServiceDeps struct {
	Repo        userrepo.Repository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

type RegistrationServiceConfig struct {
	HashConcurrency         int
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

type requiredFields struct {
	Email    string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"notblank"`
}

type RegistrationService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
	validate    *validator.Validate
	hashSlots   *semaphore.Weighted
	breaker     *resilience.CircuitBreaker
}

func NewRegistrationService(deps RegistrationServiceDeps, cfg RegistrationServiceConfig) *RegistrationService {
	validate := validator.New()
	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}

	slots := cfg.HashConcurrency
	if slots < 1 {
		slots = 1
	}

	c := deps.Clock
	if c == nil {
		c = clock.NewRealClock()
	}

	return &RegistrationService{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		clock:       c,
		log:         deps.Log,
		validate:    validate,
		hashSlots:   semaphore.NewWeighted(int64(slots)),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  cfg.CircuitBreakerThreshold,
			Timeout:    cfg.CircuitBreakerTimeout,
			ResetAfter: cfg.CircuitBreakerReset,
			Name:       storeBreakerName,
			Logger:     deps.Log,
			Now:        c.Now,
			Exclude:    isRequestEnded,
		}),
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimFunc(fl.Field().String(), isSpace) != ""
}

// Register normalizes and validates the input, then stores a new credential
// record. Checks run in a fixed order (required fields, username, email,
// password, uniqueness) and the first failure is returned.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (authdto.User, error) {
	email := Normalize(input.Email, true)
	username := Normalize(input.Username, false)
	password := input.Password

	entry := s.log.WithFields(ctx, logger.Fields{"email": email})
	entry.With(logger.Fields{
		"username": username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := s.validateInput(email, username, password); err != nil {
		entry.With(logger.Fields{"action": "register_validation_failed"}).Warnf("register validation failed: %v", err)
		recordRegistration(resultValidationError)
		return authdto.User{}, err
	}

	_, found, err := s.findByEmail(ctx, email)
	if err != nil {
		if isRequestEnded(err) {
			return authdto.User{}, s.abandon(ctx, entry, "lookup")
		}
		entry.With(logger.Fields{"action": "register_lookup_failed"}).Errorf("register failed: store lookup error: %v", err)
		recordRegistration(resultStorageError)
		return authdto.User{}, classifyStoreError(ctx, err)
	}
	if found {
		entry.With(logger.Fields{"action": "register_email_exists"}).Warn("register failed: already exists")
		recordRegistration(resultDuplicate)
		return authdto.User{}, ErrUserExists
	}

	hash, err := s.hashPassword(ctx, password)
	if err != nil {
		if ctx.Err() != nil {
			return authdto.User{}, s.abandon(ctx, entry, "hash")
		}
		entry.With(logger.Fields{"action": "register_hash_failed"}).Errorf("register failed: password hash error: %v", err)
		recordRegistration(resultInternalError)
		return authdto.User{}, newInternalError("PASSWORD_HASH_FAILED", "failed to process password", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		entry.With(logger.Fields{"action": "register_id_generation_failed"}).Errorf("register failed: id generation error: %v", err)
		recordRegistration(resultInternalError)
		return authdto.User{}, newInternalError("ID_GENERATION_FAILED", "failed to create user", err)
	}

	now := s.clock.Now()
	user := userdomain.User{
		ID:           userdomain.ID(id),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	stored, err := s.insert(ctx, user)
	if err != nil {
		if errors.Is(err, userrepo.ErrEmailAlreadyExists) {
			entry.With(logger.Fields{"action": "register_email_exists"}).Warn("register failed: lost insert race, already exists")
			recordRegistration(resultDuplicate)
			return authdto.User{}, ErrUserExists
		}
		if isRequestEnded(err) {
			return authdto.User{}, s.abandon(ctx, entry, "insert")
		}
		entry.With(logger.Fields{"action": "register_insert_failed"}).Errorf("register failed: %v", err)
		recordRegistration(resultStorageError)
		return authdto.User{}, classifyStoreError(ctx, err)
	}

	entry.With(logger.Fields{
		"user_id": string(stored.ID),
		"action":  "register_success",
	}).Info("register success")
	recordRegistration(resultSuccess)

	return mapper.UserToDTO(stored), nil
}

// ListUsers returns a snapshot of every registered user in registration order.
func (s *RegistrationService) ListUsers(ctx context.Context) ([]authdto.User, error) {
	var users []userdomain.User
	err := s.breaker.Call(ctx, func(callCtx context.Context) error {
		list, err := s.repo.ListAll(callCtx)
		if err != nil {
			return storeError(ctx, err)
		}
		users = list
		return nil
	})
	if err != nil {
		entry := s.log.WithFields(ctx, logger.Fields{"action": "list_users_failed"})
		if isRequestEnded(err) {
			entry.Warnf("list users abandoned: %v", err)
		} else {
			entry.Errorf("list users failed: %v", err)
		}
		return nil, classifyStoreError(ctx, err)
	}

	return mapper.UsersToDTO(users), nil
}

// abandon records a registration that stopped because the caller's context
// ended during the given stage.
func (s *RegistrationService) abandon(ctx context.Context, entry *logger.Entry, stage string) error {
	entry.With(logger.Fields{
		"action": "register_abandoned",
		"stage":  stage,
	}).Warnf("register abandoned: %v", ctx.Err())
	recordRegistration(resultAbandoned)
	return requestTimeout(ctx)
}

func (s *RegistrationService) validateInput(email, username, password string) error {
	if err := s.validate.Struct(requiredFields{
		Email:    email,
		Username: username,
		Password: password,
	}); err != nil {
		return ErrMissingFields
	}

	if !IsValidUsername(username) {
		return ErrInvalidUsername
	}

	if !IsValidEmail(email) {
		return ErrInvalidEmail
	}

	if !IsValidPassword(password) {
		return ErrInvalidPassword
	}

	return nil
}

func (s *RegistrationService) findByEmail(ctx context.Context, email string) (userdomain.User, bool, error) {
	var (
		user  userdomain.User
		found bool
	)
	err := s.breaker.Call(ctx, func(callCtx context.Context) error {
		u, err := s.repo.FindByEmail(callCtx, email)
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return storeError(ctx, err)
		}
		user, found = u, true
		return nil
	})
	return user, found, err
}

// insert reports a uniqueness conflict as userrepo.ErrEmailAlreadyExists
// without counting it as a store failure.
func (s *RegistrationService) insert(ctx context.Context, user userdomain.User) (userdomain.User, error) {
	var (
		stored    userdomain.User
		duplicate bool
	)
	err := s.breaker.Call(ctx, func(callCtx context.Context) error {
		u, err := s.repo.Insert(callCtx, user)
		if errors.Is(err, userrepo.ErrEmailAlreadyExists) {
			duplicate = true
			return nil
		}
		if err != nil {
			return storeError(ctx, err)
		}
		stored = u
		return nil
	})
	if err != nil {
		return userdomain.User{}, err
	}
	if duplicate {
		return userdomain.User{}, userrepo.ErrEmailAlreadyExists
	}
	return stored, nil
}

// hashPassword runs outside any store critical section. The semaphore caps
// concurrent bcrypt work; waiting for a slot honours ctx.
func (s *RegistrationService) hashPassword(ctx context.Context, password string) (string, error) {
	waitStart := time.Now()
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hashing slot: %w", err)
	}
	defer s.hashSlots.Release(1)
	observeHashWait(waitStart)

	start := time.Now()
	hash, err := s.hasher.Hash(password)
	observeHashDuration(start)
	if err != nil {
		return "", err
	}
	return hash, nil
}
