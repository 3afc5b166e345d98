package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"friendcircle/middleware"
	"friendcircle/models"
	"friendcircle/utils"
)

type CreatePostRequest struct {
	Content string `form:"content" json:"content"`
}

// Index serves the caller's feed.
func (h *Handler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)

	posts, err := h.Feed.VisiblePosts(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, "load feed", err)
		return
	}
	utils.Success(c, posts)
}

func (h *Handler) CreatePost(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, utils.ValidationMessage(err))
		return
	}

	id, err := h.Posts.Create(c.Request.Context(), userID, req.Content)
	if err != nil {
		h.internalError(c, "create post", err)
		return
	}

	friends, err := h.Friends.ListFriends(c.Request.Context(), userID)
	if err != nil {
		h.Logger.WarnContext(c.Request.Context(), "skip new post notifications", "post_id", id, "error", err)
	}
	for _, friend := range friends {
		h.notify(c, friend.ID, "new_post", models.Post{ID: id, UserID: userID, Content: req.Content})
	}

	utils.Notice(c, http.StatusCreated, "Post published!", gin.H{"id": id})
}
