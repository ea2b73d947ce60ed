package repositories

import (
	"context"
	"errors"
	"fmt"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := claimTitle(txn, post.Title, 0); err != nil {
			return err
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		if err := setEntity(txn, postKey(post.ID), post); err != nil {
			return err
		}
		return txn.Set(titleIndexKey(post.Title), encodeID(post.ID))
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves all posts in insertion order
func (r *BadgerPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.list(ctx, func(*models.Post) bool { return true })
}

// ListByAuthor retrieves the posts written by authorID
func (r *BadgerPostRepository) ListByAuthor(ctx context.Context, authorID int) ([]*models.Post, error) {
	return r.list(ctx, func(p *models.Post) bool { return p.AuthorID == authorID })
}

func (r *BadgerPostRepository) list(ctx context.Context, keep func(*models.Post) bool) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, []byte(PostKeyPrefix), func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if keep(&post) {
				posts = append(posts, &post)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update overwrites an existing post, moving its title index entry when the
// title changes.
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, postKey(post.ID), &existing); err != nil {
			return err
		}

		if existing.Title != post.Title {
			if err := claimTitle(txn, post.Title, post.ID); err != nil {
				return err
			}
			if err := txn.Delete(titleIndexKey(existing.Title)); err != nil {
				return err
			}
			if err := txn.Set(titleIndexKey(post.Title), encodeID(post.ID)); err != nil {
				return err
			}
		}

		return setEntity(txn, postKey(post.ID), post)
	})
}

// Delete deletes a post by ID together with its comments and title index
func (r *BadgerPostRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, postKey(id), &existing); err != nil {
			return err
		}

		if err := deleteCommentsOfPost(txn, id); err != nil {
			return err
		}
		if err := txn.Delete(titleIndexKey(existing.Title)); err != nil {
			return err
		}
		return txn.Delete(postKey(id))
	})
}

// claimTitle fails with ErrDuplicate when title is indexed to a post other
// than ownerID.
func claimTitle(txn *badger.Txn, title string, ownerID int) error {
	id, err := lookupIndex(txn, titleIndexKey(title))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if id != ownerID {
		return ErrDuplicate
	}
	return nil
}

func deleteCommentsOfPost(txn *badger.Txn, postID int) error {
	prefix := commentPostPrefix(postID)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
