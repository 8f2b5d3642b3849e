package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	ContextSession = "session"
	ContextToken   = "session_token"
)

// SessionResolver turns a token into its session. A nil session with a nil
// error means the token names no live session.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*model.Session, error)
}

type AuthMiddleware struct {
	sessions   SessionResolver
	cookieName string
}

func NewAuthMiddleware(sessions SessionResolver, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, cookieName: cookieName}
}

// Authenticate resolves the session from the session cookie or a bearer
// token and stores it in the context. Requests without one pass through;
// RequireSession rejects them.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.token(c)
		if token == "" {
			c.Next()
			return
		}

		sess, err := m.sessions.GetSession(c.Request.Context(), token)
		if err != nil {
			httputil.AbortWithError(c, err)
			return
		}
		if sess != nil {
			c.Set(ContextSession, sess)
			c.Set(ContextToken, token)
		}
		c.Next()
	}
}

// RequireSession aborts with 401 unless Authenticate found a session.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Session(c) == nil {
			httputil.AbortWithError(c, apperrors.Unauthorized(nil))
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) token(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Session returns the caller's session, or nil when there is none.
func Session(c *gin.Context) *model.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*model.Session)
	return sess
}

// Token returns the raw token the session was resolved from.
func Token(c *gin.Context) string {
	return c.GetString(ContextToken)
}
