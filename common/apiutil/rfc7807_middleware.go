package apiutil

import (
	"github.com/Aidin1998/sanctions_matcher/pkg/errors"
	"github.com/gin-gonic/gin"
)

// RFC7807ErrorMiddleware renders the last error attached to the context as an
// application/problem+json response.
func RFC7807ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RFC7807ErrorResponse(c, ProblemFor(c.Errors.Last().Err, c.Request.URL.Path))
		c.Abort()
	}
}

// ProblemFor converts err to problem details. Errors carrying a kind keep
// their status and message; anything else is reported as an opaque 500.
func ProblemFor(err error, instance string) *errors.ProblemDetails {
	var (
		problem *errors.ProblemDetails
		kinded  *errors.Error
	)
	switch {
	case errors.As(err, &problem):
		return problem
	case errors.As(err, &kinded):
		return kinded.ToProblemDetails(instance)
	default:
		return errors.NewInternalError("An unexpected error occurred", instance)
	}
}

// GetTraceID extracts the request or trace ID from the context
func GetTraceID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Trace-ID")
}

// RFC7807ErrorResponse writes an RFC 7807 compliant error response
func RFC7807ErrorResponse(c *gin.Context, problemDetails *errors.ProblemDetails) {
	if traceID := GetTraceID(c); traceID != "" {
		problemDetails.WithTraceID(traceID)
	}

	c.Header("Content-Type", "application/problem+json")
	c.JSON(problemDetails.Status, problemDetails)
}

// RFC7807ValidationErrorResponse writes a 400 problem for a malformed request
func RFC7807ValidationErrorResponse(c *gin.Context, detail string, fields ...errors.FieldError) {
	problemDetails := errors.NewValidationError(detail, c.Request.URL.Path)
	problemDetails.Errors = fields
	RFC7807ErrorResponse(c, problemDetails)
}
