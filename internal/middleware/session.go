package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finlens/internal/session"
)

const (
	// SessionHeader carries the session id for API clients.
	SessionHeader = "X-Session-ID"
	// SessionCookie carries the session id for browsers.
	SessionCookie = "finlens_session"

	sessionKey = "session_id"
)

// Session resolves the caller's session id from the X-Session-ID header or
// the finlens_session cookie, issuing a new one when neither holds a valid id.
// The id is echoed in the response header and refreshed in the cookie.
func Session(maxAgeSecs int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if !session.Valid(id) {
			id, _ = c.Cookie(SessionCookie)
		}
		if !session.Valid(id) {
			id = session.NewID()
		}

		c.Set(sessionKey, id)
		c.Header(SessionHeader, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, maxAgeSecs, "/", "", secure, true)
		c.Next()
	}
}

// GetSessionID returns the session id set by Session, or "".
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
