// Package postgres implements repositories.Store on PostgreSQL through
// database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"inkpost/app/repositories"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
)

const (
	driverName          = "postgres"
	defaultPingTimeout  = 5 * time.Second
	defaultConnMaxIdle  = 2 * time.Minute
	defaultConnMaxLife  = 30 * time.Minute
	defaultMaxIdleConns = 5
	defaultMaxOpenConns = 25

	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the PostgreSQL backed repositories.Store.
type Store struct {
	db       *sql.DB
	users    *UserRepository
	posts    *PostRepository
	comments *CommentRepository
	sessions *SessionRepository
}

// Open connects to dsn, tunes the pool and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	db.SetConnMaxIdleTime(defaultConnMaxIdle)
	db.SetConnMaxLifetime(defaultConnMaxLife)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetMaxOpenConns(defaultMaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return New(db), nil
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{
		db:       db,
		users:    &UserRepository{db: db},
		posts:    &PostRepository{db: db},
		comments: &CommentRepository{db: db},
		sessions: &SessionRepository{db: db, now: time.Now},
	}
}

// Migrate applies every pending up migration embedded in the binary.
// Running it against an up to date schema is a no-op.
func Migrate(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migrate up failed: %w", err)
	}
	return nil
}

func (s *Store) Users() repositories.UserRepository       { return s.users }
func (s *Store) Posts() repositories.PostRepository       { return s.posts }
func (s *Store) Comments() repositories.CommentRepository { return s.comments }
func (s *Store) Sessions() repositories.SessionRepository { return s.sessions }

// DB exposes the handle for maintenance commands.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PruneSessions deletes expired sessions and returns how many were removed.
func (s *Store) PruneSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

// Clear truncates every table and restarts the id sequences.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`TRUNCATE sessions, comments, blog_posts, users RESTART IDENTITY CASCADE`)
	return err
}

// mapError translates driver errors into the repositories sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repositories.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return repositories.ErrDuplicate
		case codeForeignKeyViolation:
			return repositories.ErrNotFound
		}
	}
	return err
}

// requireAffected returns ErrNotFound when a write touched no rows.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
