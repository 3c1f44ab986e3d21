package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
)

// PostRepository handles persistence for posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `id, author, title, description, code, language, attachment_key, attachment_name, attachment_size, created_at`

func scanPost(row interface{ Scan(...any) error }) (types.Post, error) {
	var post types.Post
	var key, name sql.NullString
	var size sql.NullInt64
	err := row.Scan(
		&post.ID,
		&post.Author,
		&post.Title,
		&post.Description,
		&post.Code,
		&post.Language,
		&key,
		&name,
		&size,
		&post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	if key.Valid {
		post.Attachment = &types.Attachment{
			Key:          key.String,
			OriginalName: name.String,
			Size:         size.Int64,
		}
	}
	return post, nil
}

func collectPosts(rows *sql.Rows, capacity int) ([]types.Post, error) {
	posts := make([]types.Post, 0, capacity)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	post.CreatedAt = time.Now()

	var key, name sql.NullString
	var size sql.NullInt64
	if post.Attachment != nil {
		key = sql.NullString{String: post.Attachment.Key, Valid: true}
		name = sql.NullString{String: post.Attachment.OriginalName, Valid: true}
		size = sql.NullInt64{Int64: post.Attachment.Size, Valid: true}
	}

	const query = `
		INSERT INTO posts (author, title, description, code, language, attachment_key, attachment_name, attachment_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.Author,
		post.Title,
		post.Description,
		post.Code,
		post.Language,
		key,
		name,
		size,
		post.CreatedAt,
	).Scan(&post.ID); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRowContext(ctx, query, id))
}

// Search returns posts newest-first. A non-empty query is matched
// case-insensitively as a substring of title, description or language;
// a non-empty language narrows to an exact case-insensitive language
// match. Both empty returns all posts.
func (r *PostRepository) Search(ctx context.Context, query, language string) ([]types.Post, error) {
	const listQuery = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' OR language ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR lower(language) = lower($2))
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, listQuery, query, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows, 0)
}

// ListByAuthor returns a page of the author's posts, newest-first,
// with the total count for pagination.
func (r *PostRepository) ListByAuthor(ctx context.Context, author string, offset, limit int) ([]types.Post, int, error) {
	const countQuery = `SELECT COUNT(1) FROM posts WHERE author = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, author).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE author = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, author, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := collectPosts(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Feed returns a page of posts authored by accounts the user follows,
// newest-first, with the total count.
func (r *PostRepository) Feed(ctx context.Context, username string, offset, limit int) ([]types.Post, int, error) {
	const countQuery = `
		SELECT COUNT(1)
		FROM posts
		WHERE author IN (SELECT followee FROM follows WHERE follower = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, username).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE author IN (SELECT followee FROM follows WHERE follower = $1)
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, username, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := collectPosts(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// CountByAuthor feeds the profile stats.
func (r *PostRepository) CountByAuthor(ctx context.Context, author string) (int, error) {
	const query = `SELECT COUNT(1) FROM posts WHERE author = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, author).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
