package database

import (
	"context"
	"fmt"
)

// PostRepository handles database operations for normalized posts
type PostRepository struct {
	db *DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// UpsertPost records a written post. The file name is the key, so rewriting
// the same post updates the existing row.
func (r *PostRepository) UpsertPost(ctx context.Context, post Post) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (file_name, source, title, date, original_link, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (file_name) DO UPDATE SET
			source = excluded.source,
			title = excluded.title,
			date = excluded.date,
			original_link = excluded.original_link,
			updated_at = excluded.updated_at
	`, post.FileName, post.Source, post.Title, post.Date, post.OriginalLink, toMillis(post.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	return nil
}

// GetPosts returns posts newest first. An empty source matches every source.
func (r *PostRepository) GetPosts(ctx context.Context, source string, limit int) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT file_name, source, title, date, original_link, updated_at
		FROM posts
		WHERE ? = '' OR source = ?
		ORDER BY date DESC, file_name
		LIMIT ?
	`, source, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		var updatedAt int64
		if err := rows.Scan(&post.FileName, &post.Source, &post.Title, &post.Date, &post.OriginalLink, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.UpdatedAt = fromMillis(updatedAt)
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// GetPostCount returns the number of known posts
func (r *PostRepository) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}

	return count, nil
}
