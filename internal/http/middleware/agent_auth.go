package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const agentIDKey = "agent_id"

// AgentAuth parses an optional Bearer token and stores the agent id in
// the context. Requests without a token pass through as ordinary
// passengers; a present-but-invalid token is rejected.
func AgentAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "format Authorization harus Bearer"})
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token tidak valid"})
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token tidak valid"})
			return
		}
		if id, ok := claims[agentIDKey].(float64); ok && id > 0 {
			c.Set(agentIDKey, int64(id))
		}
		c.Next()
	}
}

// GetAgentID returns the authenticated agent id, 0 for ordinary users.
func GetAgentID(c *gin.Context) int64 {
	if c == nil {
		return 0
	}
	if v, ok := c.Get(agentIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
