package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/rhythmix/backend/internal/common/db"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/logger"
	"github.com/AlibekovAA/rhythmix/backend/internal/user/domain"
)

const usersTable = "users"

// querier is the subset of *pgxpool.Pool the repository uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type PgRepository struct {
	pool  querier
	log   *logger.Logger
	retry db.RetryConfig
}

func NewPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRepository {
	return newPgRepository(pool, log, db.DefaultRetryConfig)
}

func newPgRepository(q querier, log *logger.Logger, retry db.RetryConfig) *PgRepository {
	return &PgRepository{pool: q, log: log, retry: retry}
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := db.RetryWithBackoff(ctx, r.log, r.retry, func() error {
		start := time.Now()
		row := r.pool.QueryRow(
			ctx,
			`SELECT id, email, username, password_hash, created_at, updated_at FROM users WHERE email = $1`,
			email,
		)
		err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
		return db.HandleQueryError(err, ErrUserNotFound, "find user by email", usersTable, start)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Insert relies on the UNIQUE constraint on email; ON CONFLICT DO NOTHING
// returns no row when another writer already holds the address.
func (r *PgRepository) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (id, email, username, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id`,
		string(user.ID),
		user.Email,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	var id string
	err := row.Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == db.UniqueViolationCode {
			db.MeasureQueryDuration("insert user", usersTable, start)
			return domain.User{}, ErrEmailAlreadyExists
		}
		if errors.Is(err, pgx.ErrNoRows) {
			db.MeasureQueryDuration("insert user", usersTable, start)
			return domain.User{}, ErrEmailAlreadyExists
		}
		return domain.User{}, db.HandleExecError(err, "insert user", usersTable, start)
	}

	db.MeasureQueryDuration("insert user", usersTable, start)
	return user, nil
}

func (r *PgRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := db.RetryWithBackoff(ctx, r.log, r.retry, func() error {
		start := time.Now()
		rows, err := r.pool.Query(
			ctx,
			`SELECT id, email, username, password_hash, created_at, updated_at
			 FROM users
			 ORDER BY seq ASC`,
		)
		if err != nil {
			return db.HandleExecError(err, "list users", usersTable, start)
		}
		defer rows.Close()

		users = users[:0]
		for rows.Next() {
			var u domain.User
			if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
				return db.HandleExecError(err, "scan user", usersTable, start)
			}
			users = append(users, u)
		}

		return db.HandleExecError(rows.Err(), "list users", usersTable, start)
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
