package repositories

import (
	"context"
	"time"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerSessionRepository stores sessions as TTL entries, so expired
// sessions disappear without a cleanup job.
type BadgerSessionRepository struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerSessionRepository creates a new BadgerSessionRepository
func NewBadgerSessionRepository(db *badger.DB) *BadgerSessionRepository {
	return &BadgerSessionRepository{db: db, now: time.Now}
}

// Create stores the session until its ExpiresAt.
func (r *BadgerSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := marshalEntity(session)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sessionKey(session.ID), data)
		if !session.ExpiresAt.IsZero() {
			ttl := session.ExpiresAt.Sub(r.now())
			if ttl <= 0 {
				return nil
			}
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Get returns the session, or ErrNotFound when it is unknown or expired.
func (r *BadgerSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var session models.Session
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, sessionKey(id), &session)
	})
	if err != nil {
		return nil, err
	}
	// TTLs have second granularity; the stored expiry is authoritative.
	if session.Expired(r.now()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

// Delete removes the session. Deleting an unknown session is not an error.
func (r *BadgerSessionRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(id))
	})
}
