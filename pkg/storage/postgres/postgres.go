// Package postgres provides a PostgreSQL implementation of users.Repository.
// It uses pgx/v5 for connection pooling.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/portier/pkg/storage"
	"github.com/rhuss/portier/pkg/users"
)

// DB is the subset of *pgxpool.Pool used by the store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store is a PostgreSQL-backed user repository.
type Store struct {
	db  DB
	now func() time.Time
}

// Ensure Store implements users.Repository at compile time.
var _ users.Repository = (*Store)(nil)

// filterColumns maps filter keys to columns. Only these keys may appear
// in a WHERE clause.
var filterColumns = map[string]string{
	users.FieldID:           "id",
	users.FieldEmail:        "email",
	users.FieldSessionToken: "session_token",
	users.FieldResetToken:   "reset_token",
}

const selectUsers = `
		SELECT id, email, hashed_password, session_token, reset_token,
		       created_at, updated_at
		FROM users`

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := NewFromDB(pool)

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// NewFromDB wraps an existing pool. The caller is responsible for the schema.
func NewFromDB(db DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Search returns users matching every filter entry, oldest first.
func (s *Store) Search(ctx context.Context, filter users.Filter) ([]*users.User, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, selectUsers+where+" ORDER BY created_at, id", args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	result := []*users.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return result, nil
}

// Get returns the user with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*users.User, error) {
	row := s.db.QueryRow(ctx, selectUsers+" WHERE id = $1", id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// Create inserts a new user. An empty ID is replaced with a fresh UUID.
func (s *Store) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := s.now()

	_, err := s.db.Exec(ctx, `
		INSERT INTO users (
			id, email, hashed_password, session_token, reset_token,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		user.ID, user.Email, user.HashedPassword, user.SessionToken, user.ResetToken,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// Update replaces the mutable fields of an existing user.
func (s *Store) Update(ctx context.Context, user *users.User) error {
	now := s.now()

	var createdAt time.Time
	err := s.db.QueryRow(ctx, `
		UPDATE users
		SET email = $2, hashed_password = $3, session_token = $4,
		    reset_token = $5, updated_at = $6
		WHERE id = $1
		RETURNING created_at
	`,
		user.ID, user.Email, user.HashedPassword, user.SessionToken, user.ResetToken, now,
	).Scan(&createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	user.CreatedAt = createdAt
	user.UpdatedAt = now
	return nil
}

// Delete removes a user.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the number of stored users.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// buildWhere turns a filter into a WHERE clause with positional args.
// Keys are sorted so the generated SQL is stable.
func buildWhere(filter users.Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		if _, ok := filterColumns[k]; !ok {
			return "", nil, fmt.Errorf("%w: %q", storage.ErrInvalidFilter, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", filterColumns[k], i+1))
		args = append(args, filter[k])
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var u users.User
	err := row.Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.SessionToken, &u.ResetToken,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
