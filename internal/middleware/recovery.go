package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/xboot/internal/domain"
	"github.com/simp-lee/xboot/internal/pkg"
)

// Recovery turns a panic in a handler into a logged error and a 500
// envelope. Panics after the response was written only get logged.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			pkg.Error(c, domain.NewAppError(domain.CodeInternalServerError, "internal error", fmt.Errorf("panic: %v", rec)))
			c.Abort()
		}()
		c.Next()
	}
}
