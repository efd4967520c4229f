package middleware

import (
	"strings"

	"mixshare/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContextUserID  = "userID"
	ContextIsAdmin = "isAdmin"
)

// AuthMiddleware requires a valid access token and puts the caller's
// identity on the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromRequest(c, jwtSecret)
		if !ok {
			util.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			util.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is
// present and stays silent otherwise. Used on public endpoints whose
// response varies for signed-in callers.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromRequest(c, jwtSecret); ok {
			if userID, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
				c.Set(ContextUserID, userID)
				c.Set(ContextIsAdmin, claims.IsAdmin)
			}
		}
		c.Next()
	}
}

// AdminMiddleware gates admin routes. It runs after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			util.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, jwtSecret string) (*util.Claims, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil, false
	}

	claims, err := util.ValidateToken(strings.TrimPrefix(auth, "Bearer "), jwtSecret)
	if err != nil || claims.Type != util.TokenTypeAccess {
		return nil, false
	}
	return claims, true
}

// UserID returns the authenticated caller's ID from the context.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}

// IsAdmin reports whether the caller carries the admin claim.
func IsAdmin(c *gin.Context) bool {
	v, ok := c.Get(ContextIsAdmin)
	if !ok {
		return false
	}
	admin, ok := v.(bool)
	return ok && admin
}
