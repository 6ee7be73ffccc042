// Package assessment provides the B2B assessment intake bounded context:
// scoring, tiering, tagging and storing partnership assessments.
package assessment

import (
	"intake_backend/internal/assessment/handler"
	"intake_backend/internal/assessment/service"
	apphttp "intake_backend/internal/http"
	"intake_backend/platform/httpkit"
	"intake_backend/platform/validator"
)

// Module is the assessment bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the assessment handler on top of svc.
func NewModule(svc *service.Service, val *validator.Validator) *Module {
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "assessment"
}

// Service returns the orchestrator, used by main to drain deliveries on shutdown.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public form endpoints and the admin read API.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	submit := ctx.API.Group("", httpkit.RequireJSON())
	if ctx.SubmissionRateLimiter != nil {
		submit.Use(ctx.SubmissionRateLimiter.RateLimit())
	}
	submit.POST("/submit-assessment", m.handler.SubmitAssessment)

	// Called on every form change; only the global limiter applies.
	ctx.API.POST("/score-preview", httpkit.RequireJSON(), m.handler.ScorePreview)

	admin := ctx.Admin.Group("/assessments")
	admin.GET("", m.handler.List)
	admin.GET("/:id", m.handler.GetByID)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
