package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kassa/internal/cache"
	"kassa/internal/logger"
	"kassa/internal/models"
	"kassa/internal/repository"
)

// Ctx keys and helpers for the authenticated identity.
// Unexported key type avoids collisions.

type ctxKey string

const (
	userIDKey ctxKey = "user_id"
	roleKey   ctxKey = "user_role"
)

func ContextWithIdentity(ctx context.Context, userID int64, role models.UserRole) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func RoleFromContext(ctx context.Context) (models.UserRole, bool) {
	role, ok := ctx.Value(roleKey).(models.UserRole)
	return role, ok
}

// UserID reads the authenticated user id set by BasicAuth.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(string(userIDKey))
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// IsAdmin reports whether the authenticated user carries the admin role.
func IsAdmin(c *gin.Context) bool {
	v, ok := c.Get(string(roleKey))
	if !ok {
		return false
	}
	role, ok := v.(models.UserRole)
	return ok && role == models.RoleAdmin
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// Logger emits one structured line per request, error level for 4xx/5xx.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		userID, hasUser := c.Get(string(userIDKey))

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if hasUser {
			logFields = append(logFields, "user_id", userID)
		}

		if c.Writer.Status() >= 400 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			logger.Get().Error("Request completed with error", logFields...)
		} else {
			logger.Get().Debug("Request completed", logFields...)
		}
	}
}

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Get().Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}

// BasicAuth authenticates against the users table by email and SHA-256
// password hash, consulting the auth cache first when one is configured.
func BasicAuth(userRepo *repository.UserRepository, authCache *cache.AuthCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", "Basic realm=\"Restricted\"")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ctx := c.Request.Context()
		hash := sha256.Sum256([]byte(password))
		passwordHash := fmt.Sprintf("%x", hash)

		if authCache != nil {
			if identity, err := authCache.GetIdentity(ctx, email, passwordHash); err == nil {
				authorize(c, identity.UserID, identity.Role)
				c.Next()
				return
			}
		}

		user, err := userRepo.GetByEmail(ctx, email)
		if err != nil || user == nil || !user.IsActive || user.PasswordHash != passwordHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if authCache != nil {
			if err := authCache.StoreIdentity(ctx, email, passwordHash,
				cache.Identity{UserID: user.ID, Role: user.Role}); err != nil {
				logger.WithContext(ctx).Warn("Failed to cache credentials", "error", err)
			}
		}

		authorize(c, user.ID, user.Role)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after BasicAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func authorize(c *gin.Context, userID int64, role models.UserRole) {
	c.Set(string(userIDKey), userID)
	c.Set(string(roleKey), role)
	c.Request = c.Request.WithContext(ContextWithIdentity(c.Request.Context(), userID, role))
}
