package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"friendcircle/models"
	"friendcircle/session"
	"friendcircle/utils"
)

type UserService interface {
	Register(ctx context.Context, username, password string) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, excludeID int64) ([]models.User, error)
	Search(ctx context.Context, query string, excludeID int64) ([]models.User, error)
}

type PostService interface {
	Create(ctx context.Context, authorID int64, content string) (int64, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]models.Post, error)
}

type FriendService interface {
	SendRequest(ctx context.Context, requesterID int64, targetUsername string) (*models.Friendship, error)
	ListPendingFor(ctx context.Context, userID int64) ([]models.PendingRequest, error)
	Respond(ctx context.Context, requestID, responderID int64, action models.FriendAction) (*models.Friendship, error)
	ListFriends(ctx context.Context, userID int64) ([]models.User, error)
}

type FeedService interface {
	VisiblePosts(ctx context.Context, viewerID int64) ([]models.Post, error)
}

type SessionService interface {
	Login(ctx context.Context, username, password string) (*session.Session, error)
	Authenticate(ctx context.Context, token string) (int64, error)
	Logout(ctx context.Context, token string) error
	TTL() time.Duration
}

type Notifier interface {
	Notify(ctx context.Context, userID int64, event string, data any)
}

type Handler struct {
	Users        UserService
	Posts        PostService
	Friends      FriendService
	Feed         FeedService
	Sessions     SessionService
	Notifier     Notifier
	Logger       *slog.Logger
	SecureCookie bool
}

// RegisterRoutes mounts the public and session-protected endpoints. The
// websocket endpoint is optional and mounted behind auth when given.
func RegisterRoutes(r gin.IRouter, h *Handler, auth gin.HandlerFunc, ws gin.HandlerFunc) {
	utils.RegisterValidatorTags()

	r.GET("/health", func(c *gin.Context) {
		utils.Success(c, gin.H{"status": "ok"})
	})

	r.POST("/register", h.Register)
	r.GET("/login", h.LoginStatus)
	r.POST("/login", h.Login)

	protected := r.Group("/")
	protected.Use(auth)
	{
		protected.GET("/logout", h.Logout)
		protected.GET("/", h.Index)
		protected.POST("/post", h.CreatePost)
		protected.GET("/me", h.Me)
		protected.GET("/users", h.ListUsers)
		protected.GET("/users/search", h.SearchUsers)
		protected.GET("/friends", h.ListFriends)
		protected.POST("/add_friend", h.AddFriend)
		protected.GET("/friend_requests", h.FriendRequests)
		protected.GET("/respond_friend_request/:id/:action", h.RespondFriendRequest)
		if ws != nil {
			protected.GET("/ws", ws)
		}
	}
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.Logger.ErrorContext(c.Request.Context(), msg, "path", c.Request.URL.Path, "error", err)
	utils.InternalError(c, "something went wrong, please try again")
}

func (h *Handler) notify(c *gin.Context, userID int64, event string, data any) {
	if h.Notifier == nil {
		return
	}
	h.Notifier.Notify(c.Request.Context(), userID, event, data)
}
