// Package flash implements one-shot notices carried in a short-lived cookie:
// set on a redirect, read and cleared by the next rendered page.
package flash

import (
	"encoding/base64"
	"strings"

	"github.com/gin-gonic/gin"
)

const cookieName = "enrollhub_flash"

const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

type Message struct {
	Level string
	Text  string
}

func Set(c *gin.Context, level, text string) {
	value := base64.URLEncoding.EncodeToString([]byte(level + "|" + text))
	c.SetCookie(cookieName, value, 60, "/", "", false, true)
}

// Take returns the pending message, clearing it so it renders exactly once.
func Take(c *gin.Context) *Message {
	raw, err := c.Cookie(cookieName)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(cookieName, "", -1, "/", "", false, true)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil
	}
	return &Message{Level: parts[0], Text: parts[1]}
}
