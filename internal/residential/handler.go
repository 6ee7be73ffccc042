package residential

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"intake_backend/internal/assessment/validation"
	"intake_backend/platform/apperr"
	"intake_backend/platform/httpkit"
	"intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	maxBodyBytes     = 1 << 20
	msgAccepted      = "Residential inquiry submitted successfully"
	msgInternalError = "Please try again later"
)

// SubmitResponse is returned for an accepted inquiry.
type SubmitResponse struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId"`
	Message      string `json:"message"`
}

// FailureResponse is returned for rejected or failed inquiries.
type FailureResponse struct {
	Success   bool                   `json:"success"`
	Errors    []validator.FieldError `json:"errors,omitempty"`
	Message   string                 `json:"message,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
}

// Handler handles residential HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new residential handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleSubmit processes POST /api/submit-residential.
func (h *Handler) HandleSubmit(c *gin.Context) {
	req, fieldErrs := parseRequest(c.Request.Body)
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, FailureResponse{Success: false, Errors: fieldErrs})
		return
	}

	inq, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindValidation {
			details, _ := appErr.Details.([]validator.FieldError)
			c.JSON(http.StatusBadRequest, FailureResponse{Success: false, Errors: details})
			return
		}

		_ = c.Error(err)
		message := msgInternalError
		if c.GetBool(httpkit.ContextExposeErrorsKey) {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, FailureResponse{
			Success:   false,
			Message:   message,
			RequestID: httpkit.RequestID(c),
		})
		return
	}

	c.JSON(http.StatusOK, SubmitResponse{
		Success:      true,
		SubmissionID: inq.ID.String(),
		Message:      msgAccepted,
	})
}

// parseRequest decodes body, rejecting empty bodies and script-injection
// markup before the typed decode.
func parseRequest(body io.Reader) (Request, []validator.FieldError) {
	var data []byte
	if body != nil {
		var err error
		data, err = io.ReadAll(io.LimitReader(body, maxBodyBytes+1))
		if err != nil || len(data) > maxBodyBytes {
			return Request{}, []validator.FieldError{{Field: "body", Message: "could not be read"}}
		}
	}

	var raw map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Request{}, []validator.FieldError{{Field: "body", Message: "must be a valid JSON object"}}
		}
	}
	if len(raw) == 0 {
		return Request{}, []validator.FieldError{{Field: "body", Message: "must not be empty"}}
	}
	if errs := validation.Screen(raw); len(errs) > 0 {
		return Request{}, errs
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Request{}, []validator.FieldError{{Field: typeErr.Field, Message: "has the wrong type"}}
		}
		return Request{}, []validator.FieldError{{Field: "body", Message: "must be a valid JSON object"}}
	}
	return req, nil
}
