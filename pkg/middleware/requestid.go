package middleware

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const RequestIDKey = "request_id"

// RequestID stamps every request with a snowflake id so log lines from one
// poll cycle can be correlated. An inbound X-Request-Id wins over a minted one.
func RequestID(node *snowflake.Node) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = node.Generate().String()
		}

		c.Set(RequestIDKey, id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}
