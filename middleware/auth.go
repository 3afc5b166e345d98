package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"friendcircle/session"
	"friendcircle/utils"
)

const (
	SessionCookie = "session"

	userIDKey = "user_id"
	tokenKey  = "session_token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// AuthMiddleware rejects requests without a live session and stores the
// session's user id and token on the context for the handlers.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			utils.Unauthorized(c, "login required")
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrUnauthorized) {
				slog.ErrorContext(c.Request.Context(), "session lookup failed", "error", err)
			}
			utils.Unauthorized(c, "login required")
			return
		}

		c.Set(userIDKey, userID)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// TokenFromRequest looks at the session cookie, then a bearer header, then
// the token query parameter used by websocket clients.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}

	return c.Query("token")
}

func GetUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
