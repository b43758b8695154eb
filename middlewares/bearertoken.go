package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"TeleClinic/utils"

	"github.com/gin-gonic/gin"
)

// AdminUserID is the subject recorded for requests authenticated by the admin key.
const AdminUserID = "admin"

// ValidateBearerToken validates the static admin key in the Authorization header and
// marks the request as made by an admin.
func ValidateBearerToken(expectedBearerToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing", "code": "UNAUTHORIZED"})
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format", "code": "UNAUTHORIZED"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if expectedBearerToken == "" || !secureCompare(token, expectedBearerToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Bearer Token", "code": "UNAUTHORIZED"})
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), AdminUserID, utils.RoleAdmin))
		c.Next()
	}
}

// secureCompare performs a constant-time comparison of two strings to mitigate timing attacks.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
