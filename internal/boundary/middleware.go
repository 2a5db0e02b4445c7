package boundary

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/waveradio/internal/auth"
)

// securityHeaders adds standard hardening headers to every response.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// authRequired enforces JWT authentication via Authorization: Bearer.
// Only the admin routes use this; submission and the streaming boundary
// stay open to unauthenticated callers.
func authRequired(a *auth.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(401, gin.H{"status": "error", "error": "authentication required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(401, gin.H{"status": "error", "error": "authentication required"})
			return
		}

		if _, err := a.ValidateToken(strings.TrimSpace(parts[1])); err != nil {
			c.AbortWithStatusJSON(401, gin.H{"status": "error", "error": "invalid or expired token"})
			return
		}

		c.Next()
	}
}
