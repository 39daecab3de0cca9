package middleware

import (
	"strings"

	"forms-service/internal/auth"
	"forms-service/internal/models"
	"forms-service/internal/services"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const userContextKey = "user"

type AuthMiddleware struct {
	auth         *services.AuthService
	cookieSecret string
}

func NewAuthMiddleware(authService *services.AuthService, cookieSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		auth:         authService,
		cookieSecret: cookieSecret,
	}
}

// token reads the bearer header, then the signed jwt cookie.
func (am *AuthMiddleware) token(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Request.Cookie(auth.CookieName); err == nil {
		if value, ok := auth.UnsignCookie(auth.UnescapeCookie(cookie.Value), am.cookieSecret); ok {
			return value
		}
	}
	return ""
}

// Protect rejects requests without a valid token for an active user.
func (am *AuthMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := am.token(c)
		if token == "" {
			response.Error(c, services.ErrNotAuthenticated)
			return
		}

		user, err := am.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and treats everyone else as a guest.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := am.token(c); token != "" {
			if user, err := am.auth.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(userContextKey, user)
			}
		}
		c.Next()
	}
}

// RestrictTo must run after Protect.
func (am *AuthMiddleware) RestrictTo(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !lo.Contains(roles, user.Role) {
			response.Error(c, services.ErrNoPermission)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for guests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
