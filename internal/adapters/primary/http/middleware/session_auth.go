package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

const (
	// SessionTokenHeader carries the token issued by C10 at login
	// completion (spec.md §3 Session record, §6 endpoint table).
	SessionTokenHeader = "X-Session-Token"
	// SessionIDHeader is accepted as an alias, matching wallet clients
	// that already call it that in their proof-of-authorization flows.
	SessionIDHeader = "X-Session-ID"

	// sessionKey is the context key for the authenticated session.
	sessionKey = "session"
)

// SessionStore is the subset of auth.SessionStore this middleware needs.
type SessionStore interface {
	Get(ctx context.Context, token string) (*entity.Session, error)
}

// SessionAuth validates the session token carried in X-Session-Token (or
// X-Session-ID) against sessions, rejecting missing or expired sessions
// per spec.md §7 (401 on missing/invalid/expired, §3 4-hour TTL).
func SessionAuth(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := c.GetHeader(SessionTokenHeader)
		if token == "" {
			token = c.GetHeader(SessionIDHeader)
		}
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, entity.ErrMissingSessionToken)
			return
		}

		sess, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, entity.ErrSessionNotFound) {
				abortWithError(c, http.StatusUnauthorized, entity.ErrUnauthorized)
				return
			}
			abortWithError(c, http.StatusUnauthorized, err)
			return
		}

		if sess.Expired(time.Now()) {
			abortWithError(c, http.StatusUnauthorized, entity.ErrSessionExpired)
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// GetSession retrieves the authenticated session from the Gin context.
func GetSession(c *gin.Context) (*entity.Session, bool) {
	if val, exists := c.Get(sessionKey); exists {
		if sess, ok := val.(*entity.Session); ok {
			return sess, true
		}
	}
	return nil, false
}

// abortWithError aborts the request with a JSON error response.
func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
	})
}
