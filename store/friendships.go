package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"friendcircle/models"
)

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type FriendshipStore struct {
	db *sql.DB
}

func NewFriendshipStore(db *sql.DB) *FriendshipStore {
	return &FriendshipStore{db: db}
}

// SendRequest records a pending edge from requesterID to the named user.
// Only the exact (requester, target) pair is checked, through uk_friend_pair,
// so a rejected request cannot be repeated and an edge in the opposite
// direction does not block this one.
func (s *FriendshipStore) SendRequest(ctx context.Context, requesterID int64, targetUsername string) (*models.Friendship, error) {
	var targetID int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", targetUsername).Scan(&targetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve username: %w", err)
	}

	if targetID == requesterID {
		return nil, ErrSelfRequest
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO friends (user_id, friend_id, status) VALUES (?, ?, 'pending')",
		requesterID, targetID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrAlreadyRequestedOrFriends
		}
		return nil, fmt.Errorf("insert friend request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	f := &models.Friendship{
		ID:       id,
		UserID:   requesterID,
		FriendID: targetID,
		Status:   models.FriendshipPending,
	}
	if err := loadTimestamps(ctx, s.db, f); err != nil {
		return nil, err
	}
	return f, nil
}

// loadTimestamps fills in the times MySQL assigned to the row.
func loadTimestamps(ctx context.Context, q rowQuerier, f *models.Friendship) error {
	err := q.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM friends WHERE id = ?", f.ID,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("load friendship timestamps: %w", err)
	}
	return nil
}

func (s *FriendshipStore) ListPendingFor(ctx context.Context, userID int64) ([]models.PendingRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.user_id, u.username, f.created_at
		FROM friends f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id = ? AND f.status = 'pending'
		ORDER BY f.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	defer rows.Close()

	requests := []models.PendingRequest{}
	for rows.Next() {
		var r models.PendingRequest
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.RequesterUsername, &r.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// Respond resolves a pending request addressed to responderID. Accepting
// flips the request and upserts the reciprocal accepted edge in the same
// transaction, so a friendship is always two accepted rows.
func (s *FriendshipStore) Respond(ctx context.Context, requestID, responderID int64, action models.FriendAction) (*models.Friendship, error) {
	if !action.Valid() {
		return nil, ErrInvalidAction
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var f models.Friendship
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, friend_id, status
		FROM friends
		WHERE id = ? AND friend_id = ? AND status = 'pending'
		FOR UPDATE
	`, requestID, responderID).Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidRequest
	}
	if err != nil {
		return nil, fmt.Errorf("select friend request: %w", err)
	}

	switch action {
	case models.ActionAccept:
		if _, err := tx.ExecContext(ctx,
			"UPDATE friends SET status = 'accepted' WHERE id = ?", f.ID,
		); err != nil {
			return nil, fmt.Errorf("accept friend request: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO friends (user_id, friend_id, status) VALUES (?, ?, 'accepted')
			ON DUPLICATE KEY UPDATE status = 'accepted'
		`, f.FriendID, f.UserID); err != nil {
			return nil, fmt.Errorf("insert reciprocal friendship: %w", err)
		}
		f.Status = models.FriendshipAccepted
	case models.ActionReject:
		if _, err := tx.ExecContext(ctx,
			"UPDATE friends SET status = 'rejected' WHERE id = ?", f.ID,
		); err != nil {
			return nil, fmt.Errorf("reject friend request: %w", err)
		}
		f.Status = models.FriendshipRejected
	}

	if err := loadTimestamps(ctx, tx, &f); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &f, nil
}

// IsAccepted reports whether a and b are friends, looking at both directions.
func (s *FriendshipStore) IsAccepted(ctx context.Context, a, b int64) (bool, error) {
	var accepted bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM friends
			WHERE status = 'accepted'
			  AND ((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?))
		)
	`, a, b, b, a).Scan(&accepted)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return accepted, nil
}

func (s *FriendshipStore) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.created_at
		FROM users u
		WHERE u.id IN (SELECT friend_id FROM friends WHERE user_id = ? AND status = 'accepted')
		   OR u.id IN (SELECT user_id FROM friends WHERE friend_id = ? AND status = 'accepted')
		ORDER BY u.username
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	friends := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, err
		}
		friends = append(friends, u)
	}
	return friends, rows.Err()
}
