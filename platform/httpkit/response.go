// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"intake_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const genericInternalMessage = "Something went wrong. Please try again later."

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// HandleError maps domain errors to HTTP responses.
// Typed *apperr.Error values use their Kind for the status code. Anything else
// is an internal error: the body is generic unless internal errors are exposed
// for the request (development mode), and always carries the request ID.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) && domainErr.Kind != apperr.KindInternal && domainErr.Kind != apperr.KindUnknown {
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.Message,
			Message: domainErr.Detail,
			Code:    domainErr.Code,
			Details: domainErr.Details,
		})
		return true
	}

	InternalError(c, err)
	return true
}

// InternalError writes the generic 500 body and records err on the gin context
// so the access logger can report it.
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)

	message := genericInternalMessage
	if c.GetBool(ContextExposeErrorsKey) && err != nil {
		message = err.Error()
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:     "Internal server error",
		Message:   message,
		RequestID: RequestID(c),
	})
}
