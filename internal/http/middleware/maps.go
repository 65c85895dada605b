// README: Gate for endpoints that need a maps provider credential.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireMapsConfigured answers 503 before the handler runs when no maps
// credential is set, so nothing reaches the provider.
func RequireMapsConfigured(configured bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !configured {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "configuration required"})
			return
		}
		c.Next()
	}
}
