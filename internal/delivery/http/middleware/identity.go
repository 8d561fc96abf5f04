package middleware

import (
	"net/http"
	"strconv"

	"go-matching-backend/internal/delivery/http/response"
	"go-matching-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// Identity resolves the calling user from the X-User-Id header set by the
// edge proxy after verification. Requests without a usable id are rejected
// before any handler runs.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-Id")
		if raw == "" {
			response.Error(c, http.StatusUnauthorized, "Missing X-User-Id header", nil)
			c.Abort()
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusUnauthorized, "Invalid X-User-Id header", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), id)
		c.Next()
	}
}

// UserID reads the id placed on the context by Identity. The bool is false
// on routes that skipped the middleware.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(string(domain.KeyUserID))
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
