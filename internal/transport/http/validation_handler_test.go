package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"licensegate/internal/license"
	"licensegate/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validBody() map[string]any {
	return map[string]any{
		"license_key":        "abcdef1234567890abcdef1234567890",
		"system_hash":        "machine-hash",
		"account_trade_mode": 0,
		"broker_server":      "demo.broker.com",
	}
}

func postValidate(t *testing.T, h *ValidationHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, string) {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	code := ""
	if body.Error != nil {
		code = body.Error.Code
	}
	return body.Success, code
}

func TestValidateSuccess(t *testing.T) {
	svc := new(MockLicenseService)
	svc.On("Validate", mock.Anything, mock.MatchedBy(func(req domain.ValidationRequest) bool {
		return req.SystemHash == "machine-hash" && *req.AccountTradeMode == 0
	})).Return(&domain.ValidationResponse{
		Success:   true,
		Message:   "License validated successfully",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Configuration: &domain.ConfigurationPayload{
			SchemaVersion: 1,
			AllowedSymbol: "US30",
		},
		LicenseInfo: domain.UsageInfo{UsageCount: 1, DailyUsage: 1, FirstTimeUse: true},
	}, nil)

	h := NewValidationHandler(svc, testLogger())
	rec := postValidate(t, h, validBody())

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.LicenseInfo.FirstTimeUse)
	require.NotNil(t, resp.Configuration)
	assert.Equal(t, "US30", resp.Configuration.AllowedSymbol)
	svc.AssertExpectations(t)
}

func TestValidateDomainErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown key", license.ErrLicenseNotFound, http.StatusUnauthorized, "INVALID_LICENSE"},
		{"inactive", license.ErrLicenseInactive, http.StatusForbidden, "LICENSE_INACTIVE"},
		{"expired", license.ErrLicenseExpired, http.StatusForbidden, "LICENSE_EXPIRED"},
		{"system mismatch", license.ErrSystemMismatch, http.StatusForbidden, "SYSTEM_MISMATCH"},
		{"trade mode mismatch", license.ErrTradeModeMismatch, http.StatusConflict, "TRADE_MODE_MISMATCH"},
		{"no configuration", license.ErrNoConfiguration, http.StatusServiceUnavailable, "NO_CONFIGURATION"},
		{"internal", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockLicenseService)
			svc.On("Validate", mock.Anything, mock.Anything).Return(nil, tt.err)

			h := NewValidationHandler(svc, testLogger())
			rec := postValidate(t, h, validBody())

			assert.Equal(t, tt.wantStatus, rec.Code)
			success, code := decodeEnvelope(t, rec)
			assert.False(t, success)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestValidateMalformedBody(t *testing.T) {
	svc := new(MockLicenseService)
	h := NewValidationHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	success, code := decodeEnvelope(t, rec)
	assert.False(t, success)
	assert.Equal(t, "INVALID_REQUEST", code)
	svc.AssertNotCalled(t, "Validate")
}

func TestValidateFieldValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing license key", func(b map[string]any) { delete(b, "license_key") }},
		{"short license key", func(b map[string]any) { b["license_key"] = "short" }},
		{"missing system hash", func(b map[string]any) { delete(b, "system_hash") }},
		{"missing trade mode", func(b map[string]any) { delete(b, "account_trade_mode") }},
		{"trade mode out of range", func(b map[string]any) { b["account_trade_mode"] = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockLicenseService)
			h := NewValidationHandler(svc, testLogger())

			body := validBody()
			tt.mutate(body)
			rec := postValidate(t, h, body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			success, code := decodeEnvelope(t, rec)
			assert.False(t, success)
			assert.Equal(t, "INVALID_REQUEST", code)
			svc.AssertNotCalled(t, "Validate")
		})
	}
}

func TestValidateTradeModeZeroAccepted(t *testing.T) {
	// Mode 0 is a real value, not an absent field. A pointer carries the
	// distinction through JSON decoding.
	svc := new(MockLicenseService)
	svc.On("Validate", mock.Anything, mock.MatchedBy(func(req domain.ValidationRequest) bool {
		return req.AccountTradeMode != nil && *req.AccountTradeMode == 0
	})).Return(&domain.ValidationResponse{Success: true}, nil)

	h := NewValidationHandler(svc, testLogger())
	rec := postValidate(t, h, validBody())

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestValidateErrorBodyRevealsNoBindingState(t *testing.T) {
	svc := new(MockLicenseService)
	svc.On("Validate", mock.Anything, mock.Anything).Return(nil, license.ErrSystemMismatch)

	h := NewValidationHandler(svc, testLogger())
	rec := postValidate(t, h, validBody())

	assert.NotContains(t, rec.Body.String(), "machine-hash")
}
