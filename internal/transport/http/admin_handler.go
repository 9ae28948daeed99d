package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "licensegate/internal/errors"
	"licensegate/internal/services"
	"licensegate/pkg/contracts/domain"
)

// AdminHandler serves the operator surface: clients, configurations and
// license lifecycle. The router mounting it applies bearer auth.
type AdminHandler struct {
	service  services.LicenseService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(service services.LicenseService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With(slog.String("handler", "admin")),
	}
}

// Routes returns the chi router for the admin surface.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/clients", h.CreateClient)
	r.Post("/configurations", h.CreateConfiguration)

	r.Route("/licenses", func(r chi.Router) {
		r.Post("/", h.CreateLicense)
		r.Get("/", h.ListLicenses)
		r.Route("/{licenseKey}", func(r chi.Router) {
			r.Get("/", h.GetLicense)
			r.Post("/deactivate", h.DeactivateLicense)
			r.Put("/configuration", h.AssignConfiguration)
		})
	})

	return r
}

// CreateClient handles POST /api/admin/clients.
func (h *AdminHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if !h.decode(w, r, &req) {
		return
	}

	client, err := h.service.CreateClient(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"success":   true,
		"client_id": client.ID,
		"name":      client.FullName(),
	})
}

// CreateConfiguration handles POST /api/admin/configurations.
func (h *AdminHandler) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateConfigurationRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.service.CreateConfiguration(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"success":          true,
		"configuration_id": id,
	})
}

// CreateLicense handles POST /api/admin/licenses. The response carries
// the full key exactly once; every later view masks it.
func (h *AdminHandler) CreateLicense(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLicenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.service.CreateLicense(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"success": true,
		"license": view,
	})
}

// ListLicenses handles GET /api/admin/licenses.
func (h *AdminHandler) ListLicenses(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListLicenses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"success":  true,
		"licenses": views,
		"count":    len(views),
	})
}

// GetLicense handles GET /api/admin/licenses/{licenseKey}.
func (h *AdminHandler) GetLicense(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "licenseKey")

	view, err := h.service.GetLicense(r.Context(), key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"success": true,
		"license": view,
	})
}

// DeactivateLicense handles POST /api/admin/licenses/{licenseKey}/deactivate.
// This is the kill switch; binding state survives so reactivating in the
// database restores the previous machine.
func (h *AdminHandler) DeactivateLicense(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "licenseKey")

	if err := h.service.DeactivateLicense(r.Context(), key); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "license deactivated via admin api", maskedKey(key))
	render.JSON(w, r, map[string]any{"success": true})
}

// AssignConfiguration handles PUT /api/admin/licenses/{licenseKey}/configuration.
func (h *AdminHandler) AssignConfiguration(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "licenseKey")

	var req domain.AssignConfigurationRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.AssignConfiguration(r.Context(), key, req.ConfigurationID); err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"success": true})
}

// decode parses and validates the body, writing the error response
// itself on failure.
func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		h.renderError(w, r, apierrors.InvalidRequestWithError(err))
		return false
	}
	if err := h.validate.StructCtx(r.Context(), req); err != nil {
		h.renderError(w, r, apierrors.FromValidationError(err))
		return false
	}
	return true
}

func (h *AdminHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierrors.FromDomain(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "admin request failed",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}
	h.renderError(w, r, apiErr)
}

func (h *AdminHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	render.Status(r, apiErr.StatusCode)
	render.JSON(w, r, apierrors.NewErrorResponse(apiErr))
}
