package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apierrors "licensegate/internal/errors"
	"licensegate/internal/license"
	"licensegate/internal/middleware"
	"licensegate/internal/services"
	"licensegate/pkg/contracts/domain"
)

// ValidationHandler serves the bot-facing validation endpoint.
type ValidationHandler struct {
	service  services.LicenseService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidationHandler creates the validation handler.
func NewValidationHandler(service services.LicenseService, logger *slog.Logger) *ValidationHandler {
	return &ValidationHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With(slog.String("handler", "validation")),
	}
}

// Routes returns the chi router for the validation endpoint.
func (h *ValidationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Validate)
	return r
}

// Validate handles POST /api/validate. The license key in the body is
// the only credential; failure responses deliberately reveal nothing
// about stored binding state.
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("validation-handler")
	start := time.Now()

	ctx, span := tracer.Start(ctx, "validation_handler.validate",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", "/api/validate"),
			attribute.String("request_id", middleware.GetRequestID(ctx)),
		),
	)
	defer span.End()

	var req domain.ValidationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		span.SetAttributes(attribute.String("validation.result", "malformed_body"))
		h.writeError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.StructCtx(ctx, &req); err != nil {
		span.SetAttributes(attribute.String("validation.result", "invalid_fields"))
		h.writeError(w, r, apierrors.FromValidationError(err))
		return
	}

	resp, err := h.service.Validate(ctx, req)
	latency := time.Since(start)
	span.SetAttributes(
		attribute.Int64("request.latency_ms", latency.Milliseconds()),
		attribute.Bool("request.success", err == nil),
	)

	if err != nil {
		apiErr := apierrors.FromDomain(err)
		span.SetAttributes(attribute.String("validation.result", apiErr.ErrorCode))
		h.writeError(w, r, apiErr)
		return
	}

	span.SetAttributes(attribute.String("validation.result", "success"))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func (h *ValidationHandler) writeError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "validation request failed",
			slog.String("error_code", apiErr.ErrorCode),
			slog.String("path", r.URL.Path),
		)
	}
	render.Status(r, apiErr.StatusCode)
	render.JSON(w, r, apierrors.NewErrorResponse(apiErr))
}

// maskedKey is a logging helper shared by the handlers.
func maskedKey(key string) slog.Attr {
	return slog.String("license_key_masked", license.MaskKey(key))
}
