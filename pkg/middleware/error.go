package middleware

import (
	"errors"
	"net/http"

	"campaignplane/pkg/errutil"

	"github.com/gin-gonic/gin"
)

// Error renders the last error pushed onto the gin context. BaseError values
// carry their own status mapping; anything else is an internal error with the
// underlying message passed through for operator diagnosis.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil || c.Writer.Written() {
			return
		}

		var base errutil.BaseError
		if errors.As(err.Err, &base) {
			c.JSON(base.Code.HTTPStatus(), gin.H{"error": renderMessage(base)})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// renderMessage keeps the raw underlying error visible in the response body.
// This is an internal dashboard; operator debuggability wins over API hygiene.
func renderMessage(base errutil.BaseError) string {
	if base.Err != nil {
		return base.Message + ": " + base.Err.Error()
	}
	return base.Message
}
