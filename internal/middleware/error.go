package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/frontdesk/pkg/errors"
	"github.com/jwalitptl/frontdesk/pkg/httputil"
)

// ErrorHandler logs errors attached to the context and renders the last one
// when the handler did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		l := requestLogger(c)
		for _, e := range c.Errors {
			event := l.Warn()
			if code := errors.CodeOf(e.Err); code == 0 || code == errors.ErrInternal || code == errors.ErrCollaborator {
				event = l.Error()
			}
			event.
				Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("request failed")
		}

		if c.Writer.Written() {
			return
		}
		httputil.RenderError(c, c.Errors.Last().Err)
	}
}
