package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"licensegate/internal/license"
	"licensegate/internal/store"
)

// FromDomain maps a domain error to its wire representation. Status codes
// follow the validation contract: unknown key is 401, policy rejections
// are 403, trade mode conflicts are 409, a missing configuration is 503
// because the server, not the bot, is misconfigured.
func FromDomain(err error) *APIError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, license.ErrLicenseNotFound):
		return New(http.StatusUnauthorized, license.ErrCodeInvalidLicense, "Invalid license key")
	case errors.Is(err, license.ErrLicenseInactive):
		return New(http.StatusForbidden, license.ErrCodeLicenseInactive, "License is inactive")
	case errors.Is(err, license.ErrLicenseExpired):
		return New(http.StatusForbidden, license.ErrCodeLicenseExpired, "License has expired")
	case errors.Is(err, license.ErrSystemMismatch), errors.Is(err, license.ErrSystemHashInUse):
		return New(http.StatusForbidden, license.ErrCodeSystemMismatch, "License is bound to a different system")
	case errors.Is(err, license.ErrTradeModeMismatch):
		return New(http.StatusConflict, license.ErrCodeTradeModeMismatch, "Account trade mode does not match the bound trade mode")
	case errors.Is(err, license.ErrNoConfiguration):
		return New(http.StatusServiceUnavailable, license.ErrCodeNoConfiguration, "No trading configuration assigned to this license")
	case errors.Is(err, store.ErrClientNotFound):
		return New(http.StatusNotFound, "NOT_FOUND", "Client not found")
	case errors.Is(err, store.ErrClientExists):
		return New(http.StatusConflict, "CONFLICT", "A client with this name and country already exists")
	case errors.Is(err, store.ErrConfigurationExists):
		return New(http.StatusConflict, "CONFLICT", "A configuration with this name already exists")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return New(http.StatusGatewayTimeout, "TIMEOUT", "The request took too long to process")
	default:
		return ErrInternalServer
	}
}

// FromValidationError converts validator failures to field-level detail.
// Any other error becomes a plain INVALID_REQUEST.
func FromValidationError(err error) *APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return InvalidRequestWithError(err)
	}
	fields := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return NewValidationErrors(fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "is below the minimum of " + fe.Param()
	case "max":
		return "exceeds the maximum of " + fe.Param()
	case "email":
		return "is not a valid email address"
	default:
		return "failed validation rule " + fe.Tag()
	}
}
