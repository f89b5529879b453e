package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calldeck/backend/internal/http/response"
	"github.com/calldeck/backend/internal/platform/apierr"
	"github.com/calldeck/backend/internal/platform/logger"
)

// Errors is the single place any propagated error becomes a client-visible
// JSON body. Handlers attach errors with c.Error and return; the status comes
// from the error's apierr shape, defaulting to 500. Validation errors travel
// through here unmodified from the store.
func Errors(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := apierr.StatusOf(err)
		if status >= http.StatusInternalServerError && log != nil {
			log.Error("request failed",
				"path", c.Request.URL.Path,
				"status", status,
				"error", err.Error(),
			)
		}
		response.RespondError(c, status, err)
	}
}

// Recovery converts handler panics into the same JSON error shape instead of
// gin's default empty 500.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if log != nil {
			log.Error("handler panic", "path", c.Request.URL.Path, "panic", recovered)
		}
		response.RespondError(c, http.StatusInternalServerError, nil)
		c.Abort()
	})
}
