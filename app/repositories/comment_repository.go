package repositories

import (
	"context"
	"errors"
	"fmt"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		// The parent post must exist in this transaction's view.
		if _, err := txn.Get(postKey(comment.PostID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		// Save comment with post ID in key for efficient listing
		return setEntity(txn, commentKey(comment.PostID, comment.ID), comment)
	})
}

// ListByPost retrieves all comments for a post
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	return r.list(ctx, commentPostPrefix(postID), func(*models.Comment) bool { return true })
}

// ListByAuthor retrieves all comments written by authorID
func (r *BadgerCommentRepository) ListByAuthor(ctx context.Context, authorID int) ([]*models.Comment, error) {
	return r.list(ctx, []byte(CommentKeyPrefix), func(c *models.Comment) bool { return c.AuthorID == authorID })
}

func (r *BadgerCommentRepository) list(ctx context.Context, prefix []byte, keep func(*models.Comment) bool) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, prefix, func(val []byte) error {
			var comment models.Comment
			if err := unmarshalEntity(val, &comment); err != nil {
				return fmt.Errorf("failed to unmarshal comment: %w", err)
			}
			if keep(&comment) {
				comments = append(comments, &comment)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}
