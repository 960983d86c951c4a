package middleware

import (
	"net/http"

	"restaurant-api/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponder turns the last error recorded by a handler into the HTTP
// response. It must be registered before every handler that calls c.Error.
func ErrorResponder(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperrors.StatusOf(err)

		message := err.Error()
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			if message == "" {
				message = "Failed to process request"
			}
		}
		c.AbortWithStatusJSON(status, gin.H{"message": message})
	}
}
