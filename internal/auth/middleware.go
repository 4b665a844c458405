package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"classcheck/internal/user"
)

// CookieName is where the browser keeps the session token.
const CookieName = "token"

const contextUserKey = "authUser"

// UserSource loads the account a token points at. A nil user means the
// account is gone and the session is dead.
type UserSource interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// SessionAuth enforces a valid session token, from the cookie or a
// bearer header, and puts the loaded user on the context.
func SessionAuth(signingKey, issuer string, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		u, err := users.Get(c.Request.Context(), claims.UserID)
		if err != nil || u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.Set(contextUserKey, u)
		c.Next()
	}
}

// RequireRole aborts unless the session user has the role; admins always
// pass.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || (u.Role != role && u.Role != user.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "ไม่มีสิทธิ์ดำเนินการ"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user SessionAuth stashed on the context, nil
// outside an authenticated route.
func CurrentUser(c *gin.Context) *user.User {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*user.User)
	return u
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}
	authz := c.GetHeader("Authorization")
	if authz != "" && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}
