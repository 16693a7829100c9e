package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/lessons-api/internal/errs"
	"github.com/harentsoaR/lessons-api/internal/store"
)

// NotFoundBody is the plain-text body for unmatched routes.
const NotFoundBody = "404 page not found"

// ErrorHandler renders the last error a handler pushed with c.Error.
// *errs.HTTPError values keep their status and message; store lookup
// errors are mapped to their client class; everything else becomes a
// generic 500 and only the log sees the detail.
func ErrorHandler(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		httpErr := classify(err)

		e := log.Warn()
		if httpErr.Status >= http.StatusInternalServerError {
			e = log.Error().Stack()
		}
		e.Err(err).
			Str("request_id", GetRequestID(c)).
			Int("status", httpErr.Status).
			Str("error_code", httpErr.Code).
			Str("path", c.Request.URL.Path).
			Msg(httpErr.Message)

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(httpErr.Status, gin.H{"error": httpErr.Message})
		}
	}
}

func classify(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, store.ErrInvalidCollectionName):
		return errs.NewValidationError("Invalid collection name")
	case errors.Is(err, store.ErrUnknownCollection):
		return errs.NewNotFoundError("Collection not found")
	default:
		return errs.NewInternalServerError()
	}
}

// Recovery turns a panic into the same generic 500 body.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().
			Interface("panic", recovered).
			Str("request_id", GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errs.GenericMessage})
	})
}

func NoRoute(c *gin.Context) {
	c.String(http.StatusNotFound, NotFoundBody)
}
