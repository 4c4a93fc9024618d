package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/pkg/errors"
	"github.com/vwmedia/siteutil/pkg/logger"
	"github.com/vwmedia/siteutil/pkg/response"
)

// Recovery turns a handler panic into a 500 envelope. The panic value and
// stack go to the log only.
func Recovery() gin.HandlerFunc {
	log := logger.WithModule("http")
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}

			log.Error("handler panicked",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			if !c.Writer.Written() {
				response.Error(c, errors.ErrInternalServer)
			}
			c.Abort()
		}()
		c.Next()
	}
}

// NotFoundHandler returns a JSON 404 envelope for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.ErrNotFound.WithInternal(fmt.Errorf("route %s not found", c.Request.URL.Path)))
}
