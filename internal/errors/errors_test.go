package errors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensegate/internal/license"
	"licensegate/internal/store"
)

func TestFromDomainMapping(t *testing.T) {
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
		{"hash taken elsewhere", license.ErrSystemHashInUse, http.StatusForbidden, "SYSTEM_MISMATCH"},
		{"trade mode", license.ErrTradeModeMismatch, http.StatusConflict, "TRADE_MODE_MISMATCH"},
		{"no configuration", license.ErrNoConfiguration, http.StatusServiceUnavailable, "NO_CONFIGURATION"},
		{"client missing", store.ErrClientNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"client duplicate", store.ErrClientExists, http.StatusConflict, "CONFLICT"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
		{"anything else", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromDomain(tt.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestFromDomainNil(t *testing.T) {
	assert.Nil(t, FromDomain(nil))
}

func TestFromDomainMessagesOmitStoredState(t *testing.T) {
	apiErr := FromDomain(license.ErrSystemMismatch)
	assert.Equal(t, "License is bound to a different system", apiErr.Message)
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, FromDomain(license.ErrLicenseExpired))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "LICENSE_EXPIRED", body.Error.Code)
	assert.Equal(t, "License has expired", body.Error.Message)
}

func TestEnvelopeHidesStatusCode(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse(ErrRateLimitExceeded))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "status_code")
	assert.Contains(t, string(raw), `"code":"RATE_LIMIT_EXCEEDED"`)
}
