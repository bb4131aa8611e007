package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// exemptPaths never require a bearer token: /sys/version and the
// /sys/healthz readiness probe.
var exemptPaths = map[string]bool{
	"/sys/version": true,
	"/sys/healthz": true,
}

// bearerAuth rejects requests missing a matching "Authorization:
// Bearer <token>" header. A blank expected token disables the
// middleware entirely, since an operator who never configured one
// hasn't opted into authorization.
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || exemptPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		provided := strings.TrimPrefix(header, "Bearer ")
		if header == "" || provided == header || provided != token {
			sendError(c, http.StatusUnauthorized, "missing or invalid bearer token")
			c.Abort()
			return
		}

		c.Next()
	}
}
