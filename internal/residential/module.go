package residential

import (
	"intake_backend/internal/crm"
	"intake_backend/internal/events"
	apphttp "intake_backend/internal/http"
	"intake_backend/platform/httpkit"
	"intake_backend/platform/logger"
	"intake_backend/platform/metrics"
	"intake_backend/platform/validator"
)

// Module is the residential intake module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule wires the residential service and handler.
func NewModule(store Store, val *validator.Validator, dispatcher crm.Dispatcher, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Module {
	service := NewService(store, val, dispatcher, bus, m, log)
	return &Module{handler: NewHandler(service), service: service}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "residential"
}

// Service exposes the service so the composition root can drain deliveries.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the residential form endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.API.Group("", httpkit.RequireJSON())
	if ctx.SubmissionRateLimiter != nil {
		group.Use(ctx.SubmissionRateLimiter.RateLimit())
	}
	group.POST("/submit-residential", m.handler.HandleSubmit)
}

var _ apphttp.Module = (*Module)(nil)
