package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"enrollhub/internal/app"
	"enrollhub/internal/config"
	"enrollhub/internal/pkg/sessiontoken"
	"enrollhub/internal/session"
	"enrollhub/internal/transport/http/flash"
	"enrollhub/internal/transport/http/middleware"
)

type AuthHandler struct {
	authService *app.AuthService
	sessions    session.Store
	sessionCfg  config.SessionConfig
}

type RegisterForm struct {
	Email    string `form:"email" binding:"required,email,max=128"`
	Password string `form:"password" binding:"required,min=6,max=128"`
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email,max=128"`
	Password string `form:"password" binding:"required,max=128"`
}

func NewAuthHandler(authService *app.AuthService, sessions session.Store, sessionCfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		sessionCfg:  sessionCfg,
	}
}

func (h *AuthHandler) Index(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"Flash": flash.Take(c)})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "register.html", gin.H{
			"Error": "Please provide a valid email and a password of at least 6 characters.",
		})
		return
	}

	_, err := h.authService.Register(app.RegisterInput{
		Email:    form.Email,
		Password: form.Password,
	})
	switch {
	case err == nil:
		flash.Set(c, flash.LevelSuccess, "Registration successful! Please login.")
		c.Redirect(http.StatusSeeOther, "/login")
	case errors.Is(err, app.ErrDuplicateEmail):
		flash.Set(c, flash.LevelDanger, "Email already registered. Please login.")
		c.Redirect(http.StatusSeeOther, "/login")
	case errors.Is(err, app.ErrInvalidInput):
		c.HTML(http.StatusOK, "register.html", gin.H{
			"Error": "Please provide a valid email and a password of at least 6 characters.",
		})
	default:
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"Error": "Registration failed. Please try again.",
		})
	}
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Flash": flash.Take(c)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Error": "Please provide your email and password.",
		})
		return
	}

	user, err := h.authService.Authenticate(app.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	})
	switch {
	case err == nil:
		if err := h.openSession(c, user.ID); err != nil {
			c.HTML(http.StatusInternalServerError, "login.html", gin.H{
				"Error": "Login failed. Please try again.",
			})
			return
		}
		flash.Set(c, flash.LevelSuccess, "Login successful!")
		c.Redirect(http.StatusSeeOther, "/home")
	case errors.Is(err, app.ErrUnknownUser):
		flash.Set(c, flash.LevelWarning, "No account found. Please register first.")
		c.Redirect(http.StatusSeeOther, "/register")
	default:
		// Covers bad passwords and malformed input alike.
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Error": "Invalid email or password.",
		})
	}
}

func (h *AuthHandler) Home(c *gin.Context) {
	lastLogin := ""
	if v, ok := c.Get(middleware.ContextLastLoginKey); ok {
		if t, ok := v.(time.Time); ok {
			lastLogin = t.Format("2006-01-02 15:04:05")
		}
	}
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Flash":     flash.Take(c),
		"LastLogin": lastLogin,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if v, ok := c.Get(middleware.ContextSessionIDKey); ok {
		if sessionID, ok := v.(string); ok {
			_ = h.sessions.Delete(c.Request.Context(), sessionID)
		}
	}
	c.SetCookie(h.sessionCfg.CookieName, "", -1, "/", "", h.sessionCfg.SecureCookie, true)
	flash.Set(c, flash.LevelInfo, "You have been logged out.")
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) openSession(c *gin.Context, userID uint) error {
	sessionID, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		return err
	}

	ttl := time.Duration(h.sessionCfg.TTLMinute) * time.Minute
	token, err := sessiontoken.Generate(h.sessionCfg.CookieSecret, ttl, sessionID)
	if err != nil {
		return err
	}

	c.SetCookie(
		h.sessionCfg.CookieName,
		token,
		int(ttl.Seconds()),
		"/",
		"",
		h.sessionCfg.SecureCookie,
		true,
	)
	return nil
}
