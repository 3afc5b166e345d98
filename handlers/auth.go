package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendcircle/middleware"
	"friendcircle/models"
	"friendcircle/session"
	"friendcircle/store"
	"friendcircle/utils"
)

// max counts characters; the byte limit bcrypt imposes is checked on register.
type CredentialsRequest struct {
	Username string `form:"username" json:"username" binding:"required,max=64"`
	Password string `form:"password" json:"password" binding:"required,max=72"`
}

type LoginResponse struct {
	Token string               `json:"token"`
	User  *models.UserResponse `json:"user"`
}

func (h *Handler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, utils.ValidationMessage(err))
		return
	}

	id, err := h.Users.Register(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, store.ErrDuplicateUsername) {
		utils.Conflict(c, "Username already taken.")
		return
	}
	if errors.Is(err, store.ErrPasswordTooLong) {
		utils.BadRequest(c, "password must be at most 72 bytes")
		return
	}
	if err != nil {
		h.internalError(c, "register user", err)
		return
	}

	h.Logger.InfoContext(c.Request.Context(), "user registered", "user_id", id, "username", req.Username)
	utils.Notice(c, http.StatusCreated, "Registration successful!", gin.H{"id": id, "username": req.Username})
}

func (h *Handler) LoginStatus(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	if token == "" {
		utils.Success(c, gin.H{"authenticated": false})
		return
	}
	userID, err := h.Sessions.Authenticate(c.Request.Context(), token)
	if err != nil {
		utils.Success(c, gin.H{"authenticated": false})
		return
	}
	utils.Success(c, gin.H{"authenticated": true, "user_id": userID})
}

func (h *Handler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, utils.ValidationMessage(err))
		return
	}

	sess, err := h.Sessions.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		utils.Unauthorized(c, "Login failed. Check your credentials.")
		return
	}
	if err != nil {
		h.internalError(c, "login", err)
		return
	}

	h.setSessionCookie(c, sess.Token, int(h.Sessions.TTL().Seconds()))
	utils.Success(c, LoginResponse{
		Token: sess.Token,
		User:  sess.User.ToResponse(),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		h.internalError(c, "logout", err)
		return
	}

	h.setSessionCookie(c, "", -1)
	utils.Notice(c, http.StatusOK, "You have been logged out.", nil)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.SecureCookie, true)
}
