package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// BadgerStore is the embedded Store backed by a single Badger database.
type BadgerStore struct {
	db       *badger.DB
	users    *BadgerUserRepository
	posts    *BadgerPostRepository
	comments *BadgerCommentRepository
	sessions *BadgerSessionRepository
}

// OpenBadger opens (or creates) the database and ensures its schema marker.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	path := opts.Path
	if opts.InMemory {
		path = ""
	}
	bopts := badger.DefaultOptions(path).
		WithInMemory(opts.InMemory).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	if opts.Logger != nil {
		bopts = bopts.WithLogger(badgerLogger{log: opts.Logger})
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}

	store := NewBadgerStore(db)
	if err := store.EnsureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewBadgerStore wraps an already opened database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{
		db:       db,
		users:    NewBadgerUserRepository(db),
		posts:    NewBadgerPostRepository(db),
		comments: NewBadgerCommentRepository(db),
		sessions: NewBadgerSessionRepository(db),
	}
}

// EnsureSchema writes the schema marker if the database is new. It is safe
// to call on every startup.
func (s *BadgerStore) EnsureSchema() error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(SchemaKey))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set([]byte(SchemaKey), encodeID(SchemaVersion))
	})
}

func (s *BadgerStore) Users() UserRepository       { return s.users }
func (s *BadgerStore) Posts() PostRepository       { return s.posts }
func (s *BadgerStore) Comments() CommentRepository { return s.comments }
func (s *BadgerStore) Sessions() SessionRepository { return s.sessions }

// DB exposes the underlying database for maintenance commands.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

// Ping reports whether the database is still usable.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(SchemaKey))
		return err
	})
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Clear drops every key, including sequences.
func (s *BadgerStore) Clear() error {
	if err := s.db.DropAll(); err != nil {
		return err
	}
	return s.EnsureSchema()
}

// badgerLogger routes badger's internal logging into slog.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}
