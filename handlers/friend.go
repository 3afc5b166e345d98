package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendcircle/middleware"
	"friendcircle/models"
	"friendcircle/store"
	"friendcircle/utils"
)

type AddFriendRequest struct {
	FriendUsername string `form:"friend_username" json:"friend_username" binding:"required,max=64"`
}

type RespondFriendRequestURI struct {
	ID     int64  `uri:"id" binding:"required,min=1"`
	Action string `uri:"action" binding:"required,oneof=accept reject"`
}

func (h *Handler) ListFriends(c *gin.Context) {
	friends, err := h.Friends.ListFriends(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.internalError(c, "list friends", err)
		return
	}
	utils.Success(c, toResponses(friends))
}

func (h *Handler) AddFriend(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req AddFriendRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, utils.ValidationMessage(err))
		return
	}

	friendship, err := h.Friends.SendRequest(c.Request.Context(), userID, req.FriendUsername)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		utils.NotFound(c, "User not found.")
		return
	case errors.Is(err, store.ErrSelfRequest):
		utils.BadRequest(c, "You cannot add yourself as a friend.")
		return
	case errors.Is(err, store.ErrAlreadyRequestedOrFriends):
		utils.Conflict(c, fmt.Sprintf("Friend request to %s is already pending or accepted.", req.FriendUsername))
		return
	case err != nil:
		h.internalError(c, "send friend request", err)
		return
	}

	h.notify(c, friendship.FriendID, "friend_request", gin.H{
		"request_id":   friendship.ID,
		"requester_id": userID,
	})
	utils.Notice(c, http.StatusCreated, fmt.Sprintf("Friend request sent to %s!", req.FriendUsername), friendship)
}

func (h *Handler) FriendRequests(c *gin.Context) {
	requests, err := h.Friends.ListPendingFor(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.internalError(c, "list friend requests", err)
		return
	}
	utils.Success(c, requests)
}

func (h *Handler) RespondFriendRequest(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var uri RespondFriendRequestURI
	if err := c.ShouldBindUri(&uri); err != nil {
		utils.BadRequest(c, utils.ValidationMessage(err))
		return
	}

	friendship, err := h.Friends.Respond(c.Request.Context(), uri.ID, userID, models.FriendAction(uri.Action))
	switch {
	case errors.Is(err, store.ErrInvalidRequest):
		utils.NotFound(c, "Invalid friend request.")
		return
	case errors.Is(err, store.ErrInvalidAction):
		utils.BadRequest(c, "action must be one of: accept reject")
		return
	case err != nil:
		h.internalError(c, "respond to friend request", err)
		return
	}

	event, message := "friend_request_rejected", "Friend request rejected."
	if friendship.Status == models.FriendshipAccepted {
		event, message = "friend_request_accepted", "Friend request accepted!"
	}
	h.notify(c, friendship.UserID, event, gin.H{
		"request_id":   friendship.ID,
		"responder_id": userID,
	})
	utils.Notice(c, http.StatusOK, message, friendship)
}
