package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"friendcircle/middleware"
	"friendcircle/models"
	"friendcircle/store"
	"friendcircle/utils"
)

// Me returns the caller's account and own posts.
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if errors.Is(err, store.ErrUserNotFound) {
		utils.NotFound(c, "user not found")
		return
	}
	if err != nil {
		h.internalError(c, "load user", err)
		return
	}

	posts, err := h.Posts.ListByAuthor(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, "load own posts", err)
		return
	}

	utils.Success(c, gin.H{"user": user.ToResponse(), "posts": posts})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.internalError(c, "list users", err)
		return
	}
	utils.Success(c, toResponses(users))
}

func (h *Handler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.BadRequest(c, "search query is required")
		return
	}

	users, err := h.Users.Search(c.Request.Context(), query, middleware.GetUserID(c))
	if err != nil {
		h.internalError(c, "search users", err)
		return
	}
	utils.Success(c, toResponses(users))
}

func toResponses(users []models.User) []models.UserResponse {
	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *users[i].ToResponse())
	}
	return out
}
