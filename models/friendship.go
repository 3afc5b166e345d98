package models

import "time"

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

type FriendAction string

const (
	ActionAccept FriendAction = "accept"
	ActionReject FriendAction = "reject"
)

func (a FriendAction) Valid() bool {
	return a == ActionAccept || a == ActionReject
}

// Friendship is one directed edge: UserID asked FriendID.
type Friendship struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	FriendID  int64            `json:"friend_id"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type PendingRequest struct {
	ID                int64     `json:"id"`
	RequesterID       int64     `json:"requester_id"`
	RequesterUsername string    `json:"requester_username"`
	CreatedAt         time.Time `json:"created_at"`
}
