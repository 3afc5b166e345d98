package store

import (
	"context"
	"database/sql"
	"fmt"

	"friendcircle/models"
)

type FeedStore struct {
	db *sql.DB
}

func NewFeedStore(db *sql.DB) *FeedStore {
	return &FeedStore{db: db}
}

// VisiblePosts returns the viewer's own posts and the posts of every user
// joined to the viewer by an accepted edge in either direction, in insertion
// order.
func (s *FeedStore) VisiblePosts(ctx context.Context, viewerID int64) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, u.username, p.content, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ?
		   OR p.user_id IN (
			SELECT friend_id FROM friends WHERE user_id = ? AND status = 'accepted'
		   )
		   OR p.user_id IN (
			SELECT user_id FROM friends WHERE friend_id = ? AND status = 'accepted'
		   )
		ORDER BY p.id
	`, viewerID, viewerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("select feed: %w", err)
	}
	return scanPosts(rows)
}
