package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/service"
	"github.com/holuwadafe/maglo-finance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	AccessTokenCookie = "access_token"

	userIDKey    = "userID"
	sessionIDKey = "sessionID"
)

// Authenticator resolves an access token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (service.Principal, error)
}

// CookieOptions controls how the access token cookie is written.
// Secure switches to SameSite=None for cross-origin frontends.
type CookieOptions struct {
	Secure bool
	TTL    time.Duration
}

func (o CookieOptions) sameSite() http.SameSite {
	if o.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// SetTokenCookie stores the access token as an HttpOnly cookie
func SetTokenCookie(c *gin.Context, opts CookieOptions, token string) {
	c.SetSameSite(opts.sameSite())
	c.SetCookie(AccessTokenCookie, token, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
}

// ClearTokenCookie removes the access token cookie
func ClearTokenCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(opts.sameSite())
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", opts.Secure, true)
}

// RequireAuth validates the access token and stores the caller's user and session IDs in the context
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie(AccessTokenCookie)
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		principal, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid or expired session"))
			return
		}

		c.Set(userIDKey, principal.UserID)
		c.Set(sessionIDKey, principal.SessionID)

		c.Next()
	}
}

// UserID returns the authenticated user set by RequireAuth
func UserID(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, userIDKey)
}

// SessionID returns the session the request was authenticated with
func SessionID(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, sessionIDKey)
}

func uuidFromContext(c *gin.Context, key string) (uuid.UUID, bool) {
	v, ok := c.Get(key)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
