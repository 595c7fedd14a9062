package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/rhythmix/backend/internal/common/db"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/logger"
	"github.com/AlibekovAA/rhythmix/backend/internal/user/domain"
)

var fastRetry = db.RetryConfig{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     time.Millisecond,
	Multiplier:   1,
}

type fakeQuerier struct {
	queryRowFunc func(ctx context.Context, sql string, args ...interface{}) pgx.Row
	queryFunc    func(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return f.queryRowFunc(ctx, sql, args...)
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return f.queryFunc(ctx, sql, args...)
}

type fakeRow struct {
	values []interface{}
	err    error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

// fakeRows serves users in order and reports err once they are exhausted.
type fakeRows struct {
	pgx.Rows
	users  []domain.User
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.users) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	return assign(dest, userValues(r.users[r.pos-1]))
}

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) Close() { r.closed = true }

func userValues(u domain.User) []interface{} {
	return []interface{}{u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt}
}

func assign(dest, values []interface{}) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *domain.ID:
			*p = values[i].(domain.ID)
		case *string:
			switch v := values[i].(type) {
			case domain.ID:
				*p = string(v)
			default:
				*p = v.(string)
			}
		case *time.Time:
			*p = values[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewWithWriter(io.Discard, "", "test", "debug")
	require.NoError(t, err)
	return log
}

func sampleUser(id, email string) domain.User {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return domain.User{
		ID:           domain.ID(id),
		Email:        email,
		Username:     "user_" + id,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPgInsert_Success(t *testing.T) {
	user := sampleUser("id-1", "a@example.com")

	var gotSQL string
	var gotArgs []interface{}
	q := &fakeQuerier{queryRowFunc: func(_ context.Context, sql string, args ...interface{}) pgx.Row {
		gotSQL, gotArgs = sql, args
		return fakeRow{values: []interface{}{"id-1"}}
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	stored, err := repo.Insert(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, user, stored)
	assert.Contains(t, gotSQL, "ON CONFLICT (email) DO NOTHING")
	assert.Equal(t, []interface{}{"id-1", "a@example.com", "user_id-1", "hash", user.CreatedAt, user.UpdatedAt}, gotArgs)
}

func TestPgInsert_ConflictYieldsNoRow(t *testing.T) {
	q := &fakeQuerier{queryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
		return fakeRow{err: pgx.ErrNoRows}
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	_, err := repo.Insert(context.Background(), sampleUser("id-1", "a@example.com"))
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestPgInsert_UniqueViolation(t *testing.T) {
	q := &fakeQuerier{queryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
		return fakeRow{err: &pgconn.PgError{Code: db.UniqueViolationCode, ConstraintName: "users_email_key"}}
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	_, err := repo.Insert(context.Background(), sampleUser("id-1", "a@example.com"))
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestPgInsert_OtherErrorsAreWrapped(t *testing.T) {
	cause := &pgconn.PgError{Code: "08006"}
	calls := 0
	q := &fakeQuerier{queryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
		calls++
		return fakeRow{err: cause}
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	_, err := repo.Insert(context.Background(), sampleUser("id-1", "a@example.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Equal(t, 1, calls, "inserts are not retried")
}

func TestPgFindByEmail_Found(t *testing.T) {
	user := sampleUser("id-1", "a@example.com")
	q := &fakeQuerier{queryRowFunc: func(_ context.Context, _ string, args ...interface{}) pgx.Row {
		assert.Equal(t, []interface{}{"a@example.com"}, args)
		return fakeRow{values: userValues(user)}
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	got, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestPgFindByEmail_NotFound(t *testing.T) {
	q := &fakeQuerier{queryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
		return fakeRow{err: pgx.ErrNoRows}
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPgFindByEmail_RetriesTransientFailure(t *testing.T) {
	user := sampleUser("id-1", "a@example.com")
	calls := 0
	q := &fakeQuerier{queryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
		calls++
		if calls == 1 {
			return fakeRow{err: &pgconn.PgError{Code: "40001"}}
		}
		return fakeRow{values: userValues(user)}
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	got, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.Equal(t, 2, calls)
}

func TestPgFindByEmail_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	q := &fakeQuerier{queryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
		calls++
		return fakeRow{err: &pgconn.PgError{Code: "40P01"}}
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	_, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, fastRetry.MaxAttempts, calls)
}

func TestPgListAll_EmptyIsNotNil(t *testing.T) {
	rows := &fakeRows{}
	q := &fakeQuerier{queryFunc: func(context.Context, string, ...interface{}) (pgx.Rows, error) {
		return rows, nil
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	users, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
	assert.True(t, rows.closed)
}

func TestPgListAll_KeepsRowOrderAndSortsBySeq(t *testing.T) {
	want := []domain.User{
		sampleUser("id-3", "c@example.com"),
		sampleUser("id-1", "a@example.com"),
		sampleUser("id-2", "b@example.com"),
	}

	var gotSQL string
	q := &fakeQuerier{queryFunc: func(_ context.Context, sql string, _ ...interface{}) (pgx.Rows, error) {
		gotSQL = sql
		return &fakeRows{users: want}, nil
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	users, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, users)
	assert.Contains(t, strings.Join(strings.Fields(gotSQL), " "), "ORDER BY seq ASC")
}

func TestPgListAll_RetryDiscardsPartialRows(t *testing.T) {
	want := []domain.User{
		sampleUser("id-1", "a@example.com"),
		sampleUser("id-2", "b@example.com"),
	}

	calls := 0
	q := &fakeQuerier{queryFunc: func(context.Context, string, ...interface{}) (pgx.Rows, error) {
		calls++
		switch calls {
		case 1:
			return nil, &pgconn.PgError{Code: "08006"}
		case 2:
			return &fakeRows{users: want[:1], err: &pgconn.PgError{Code: "40001"}}, nil
		default:
			return &fakeRows{users: want}, nil
		}
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	users, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, users)
	assert.Equal(t, 3, calls)
}

func TestPgListAll_NonRetryableError(t *testing.T) {
	cause := errors.New("syntax error")
	calls := 0
	q := &fakeQuerier{queryFunc: func(context.Context, string, ...interface{}) (pgx.Rows, error) {
		calls++
		return nil, cause
	}}
	repo := newPgRepository(q, testLogger(t), fastRetry)

	users, err := repo.ListAll(context.Background())
	assert.Nil(t, users)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}
