package transport

import (
	"net/http"

	"catalog-api/internal/middleware"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateClientRequest represents the client creation request payload
type CreateClientRequest struct {
	RedirectURI string `json:"redirect-uri" validate:"required"`
	GrantType   string `json:"grant-type" validate:"required"`
}

// ClientCredentials is returned once at client creation; the secret is not
// recoverable afterwards.
type ClientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// SecurityHandler handles OAuth client bootstrapping
type SecurityHandler struct {
	clientService service.ClientService
	logger        *zap.Logger
}

// NewSecurityHandler creates a new SecurityHandler
func NewSecurityHandler(clientService service.ClientService, logger *zap.Logger) *SecurityHandler {
	return &SecurityHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// RegisterRoutes registers the security routes
func (h *SecurityHandler) RegisterRoutes(r chi.Router) {
	r.Post("/create-client", h.CreateClient)
}

// CreateClient handles issuing new OAuth client credentials
func (h *SecurityHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Missing redirect-uri or grant-type from POST content", zap.Error(err))
		middleware.RespondFail(w, http.StatusBadRequest, "Missing redirect-uri or grant-type from POST content.")
		return
	}

	client, secret, err := h.clientService.CreateClient(r.Context(), req.RedirectURI, req.GrantType)
	if err != nil {
		h.logger.Error("Failed to create client", zap.Error(err))
		middleware.RespondError(w, http.StatusInternalServerError, "failed to create client")
		return
	}

	h.logger.Info("Client created", zap.String("client_id", client.ClientID))
	middleware.RespondSuccess(w, http.StatusOK, ClientCredentials{
		ClientID:     client.ClientID,
		ClientSecret: secret,
	})
}
