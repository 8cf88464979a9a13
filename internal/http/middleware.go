package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parking-gate-service/internal/auth"
)

const operatorKey = "operator_id"

// OperatorAuth extracts the operator identity from a badge token so
// committed admissions can be attributed in the ledger. It performs no
// authorization beyond requiring a valid token.
func OperatorAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("operator token required"))
			return
		}

		operatorID, err := auth.ParseOperatorToken(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("invalid operator token"))
			return
		}

		c.Set(operatorKey, operatorID)
		c.Next()
	}
}
