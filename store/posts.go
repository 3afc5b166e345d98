package store

import (
	"context"
	"database/sql"
	"fmt"

	"friendcircle/models"
)

type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// Create stores content as given; empty posts are allowed.
func (s *PostStore) Create(ctx context.Context, authorID int64, content string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO posts (user_id, content) VALUES (?, ?)",
		authorID, content,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return result.LastInsertId()
}

func (s *PostStore) ListByAuthor(ctx context.Context, authorID int64) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, u.username, p.content, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ?
		ORDER BY p.id
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
