package postgres

import (
	"context"
	"database/sql"

	"inkpost/app/models"
)

const postColumns = `id, author_id, title, subtitle, date, body, img_url, created_at`

// PostRepository handles persistence for blog posts.
type PostRepository struct {
	db *sql.DB
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	const query = `
		INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		post.AuthorID,
		post.Title,
		post.Subtitle,
		post.Date,
		post.Body,
		post.ImgURL,
		post.CreatedAt,
	).Scan(&post.ID)
	return mapError(err)
}

func (r *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE id = $1`
	var post models.Post
	if err := scanPost(r.db.QueryRowContext(ctx, query, id), &post); err != nil {
		return nil, mapError(err)
	}
	return &post, nil
}

func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts ORDER BY id`
	return r.query(ctx, query)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE author_id = $1 ORDER BY id`
	return r.query(ctx, query, authorID)
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	const query = `
		UPDATE blog_posts
		SET author_id = $1,
			title = $2,
			subtitle = $3,
			date = $4,
			body = $5,
			img_url = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		post.AuthorID,
		post.Title,
		post.Subtitle,
		post.Date,
		post.Body,
		post.ImgURL,
		post.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// Delete removes the post. Its comments go with it through ON DELETE CASCADE.
func (r *PostRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *PostRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		var post models.Post
		if err := scanPost(rows, &post); err != nil {
			return nil, err
		}
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row scanner, post *models.Post) error {
	return row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Subtitle,
		&post.Date,
		&post.Body,
		&post.ImgURL,
		&post.CreatedAt,
	)
}
