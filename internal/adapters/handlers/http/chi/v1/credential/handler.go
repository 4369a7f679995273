package credential

import (
	"log/slog"
	"mask-drawing/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 credential routes
type HandlerV1 struct {
	credentialService port.CredentialService
	logger            *slog.Logger
}

// NewCredentialHandlerV1 creates HandlerV1
func NewCredentialHandlerV1(service port.CredentialService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		credentialService: service,
		logger:            logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", h.IssueCredentialV1)

	return router
}
