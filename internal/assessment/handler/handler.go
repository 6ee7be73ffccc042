package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"intake_backend/internal/assessment/service"
	"intake_backend/internal/assessment/transport"
	"intake_backend/platform/httpkit"
	"intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxBodyBytes bounds the raw request body before decoding.
const MaxBodyBytes = 1 << 20

const (
	msgInvalidRequest   = "Invalid request"
	msgValidationFailed = "Validation failed"
	msgEmptyBody        = "Empty request body"
)

var errEmptyBody = errors.New("empty body")

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SubmitAssessment handles POST /api/submit-assessment.
func (h *Handler) SubmitAssessment(c *gin.Context) {
	raw, ok := decodeBody(c)
	if !ok {
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), raw, httpkit.ClientIP(c))
	if err != nil {
		var cooldown *service.CooldownError
		if errors.As(err, &cooldown) {
			httpkit.JSON(c, http.StatusTooManyRequests, transport.CooldownResponse{
				Success:      false,
				Error:        "Assessment already completed",
				Message:      "You have already completed an assessment recently. Our team will be in touch soon.",
				CompletedAt:  cooldown.CompletedAt,
				PreviousTier: string(cooldown.PreviousTier),
			})
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, resp)
}

// ScorePreview handles POST /api/score-preview.
func (h *Handler) ScorePreview(c *gin.Context) {
	raw, ok := decodeBody(c)
	if !ok {
		return
	}
	httpkit.OK(c, h.svc.Preview(raw))
}

// GetByID handles GET /api/v1/admin/assessments/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	sub, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, sub)
}

// List handles GET /api/v1/admin/assessments?email=.
func (h *Handler) List(c *gin.Context) {
	var query transport.ListSubmissionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	list, err := h.svc.ListByEmail(c.Request.Context(), query.Email)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, list)
}

// decodeBody reads a JSON object body. Empty bodies and empty objects are
// rejected before any processing.
func decodeBody(c *gin.Context) (map[string]any, bool) {
	raw, err := readObject(c.Request.Body)
	switch {
	case errors.Is(err, errEmptyBody):
		c.JSON(http.StatusBadRequest, httpkit.ErrorResponse{
			Error:   msgEmptyBody,
			Message: "Request body must contain assessment data",
		})
		return nil, false
	case err != nil:
		c.JSON(http.StatusBadRequest, httpkit.ErrorResponse{
			Error:   msgInvalidRequest,
			Message: "Request body must be a valid JSON object",
		})
		return nil, false
	}
	return raw, true
}

func readObject(body io.Reader) (map[string]any, error) {
	if body == nil {
		return nil, errEmptyBody
	}
	data, err := io.ReadAll(io.LimitReader(body, MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBodyBytes {
		return nil, errors.New("body too large")
	}
	if len(data) == 0 {
		return nil, errEmptyBody
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errEmptyBody
	}
	return raw, nil
}
