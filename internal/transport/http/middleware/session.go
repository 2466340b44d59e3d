package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enrollhub/internal/config"
	"enrollhub/internal/pkg/sessiontoken"
	"enrollhub/internal/session"
)

const (
	ContextUserIDKey    = "user_id"
	ContextSessionIDKey = "session_id"
	ContextLastLoginKey = "last_login"
)

// RequireSession guards protected pages. A missing, tampered, or expired
// session never yields an error status: the visitor is sent to the login
// page instead.
func RequireSession(cfg config.SessionConfig, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cfg.CookieName)
		if err != nil || raw == "" {
			redirectToLogin(c)
			return
		}

		sessionID, err := sessiontoken.Parse(cfg.CookieSecret, raw)
		if err != nil {
			redirectToLogin(c)
			return
		}

		data, err := sessions.Get(c.Request.Context(), sessionID)
		if err != nil || data == nil {
			redirectToLogin(c)
			return
		}

		c.Set(ContextUserIDKey, data.UserID)
		c.Set(ContextSessionIDKey, sessionID)
		c.Set(ContextLastLoginKey, data.LastLogin)
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/login")
	c.Abort()
}
