package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "subtracker/internal/errors"
)

// AdminKeyMiddleware guards maintenance endpoints, such as changes to the
// shared category list, with the X-API-Key header. With no key configured the
// endpoints are disabled.
func AdminKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, apperrors.ErrAdminNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
