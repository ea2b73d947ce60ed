package postgres

import (
	"context"
	"database/sql"

	"inkpost/app/models"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *sql.DB
}

// Create inserts the comment. A missing post surfaces as a foreign key
// violation and is reported as ErrNotFound.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	const query = `
		INSERT INTO comments (text, author_id, post_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		comment.Text,
		comment.AuthorID,
		comment.PostID,
		comment.CreatedAt,
	).Scan(&comment.ID)
	return mapError(err)
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	const query = `
		SELECT id, text, author_id, post_id, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY id`
	return r.query(ctx, query, postID)
}

func (r *CommentRepository) ListByAuthor(ctx context.Context, authorID int) ([]*models.Comment, error) {
	const query = `
		SELECT id, text, author_id, post_id, created_at
		FROM comments
		WHERE author_id = $1
		ORDER BY id`
	return r.query(ctx, query, authorID)
}

func (r *CommentRepository) query(ctx context.Context, query string, arg interface{}) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.AuthorID, &c.PostID, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
