package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gymgate/internal/config"
	"gymgate/internal/httpapi"
)

// APIKeyMiddleware guards the kiosk-facing endpoints. Keys are static,
// configured per deployment; the token itself is opaque to this layer.
type APIKeyMiddleware struct {
	config *config.Config
}

func NewAPIKeyMiddleware(config *config.Config) *APIKeyMiddleware {
	return &APIKeyMiddleware{config: config}
}

func (m *APIKeyMiddleware) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.APIKeyRequired {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-API-Key")

		if apiKey == "" {
			apiKey = c.Query("api_key")
		}

		if apiKey == "" {
			httpapi.AbortError(c, http.StatusUnauthorized, "API key required")
			return
		}

		validKey := false
		for _, key := range m.config.APIKeys {
			if apiKey == key {
				validKey = true
				break
			}
		}

		if !validKey {
			httpapi.AbortError(c, http.StatusUnauthorized, "invalid API key")
			return
		}

		c.Next()
	}
}
