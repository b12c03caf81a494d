package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-site-api/internal/models"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
	"github.com/noah-isme/faculty-site-api/pkg/response"
)

// ContextUserKey is the gin context key storing the resolved admin user.
const ContextUserKey = "currentUser"

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.CurrentUser, error)
}

// SessionGuard protects API routes. The token comes from the Authorization
// bearer header or, failing that, the session cookie; the session behind it
// must still be open.
func SessionGuard(resolver sessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFromRequest(c, cookieName)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// PageGuard protects HTML admin pages, redirecting to loginPath instead of
// answering 401.
func PageGuard(resolver sessionResolver, cookieName, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFromRequest(c, cookieName)
		if err == nil {
			var user *models.CurrentUser
			if user, err = resolver.Resolve(c.Request.Context(), token); err == nil {
				c.Set(ContextUserKey, user)
				c.Next()
				return
			}
		}

		target := loginPath
		if c.Request.Method == http.MethodGet {
			target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		}
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
	}
}

// CurrentUser returns the user resolved by the guard.
func CurrentUser(c *gin.Context) (*models.CurrentUser, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.CurrentUser)
	return user, ok && user != nil
}

func tokenFromRequest(c *gin.Context, cookieName string) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	return "", appErrors.ErrUnauthorized
}
