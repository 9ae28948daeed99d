package license

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// Error codes for the validation protocol. The code, not the message, is
// the stable contract with the bot.
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidLicense    = "INVALID_LICENSE"
	ErrCodeLicenseExpired    = "LICENSE_EXPIRED"
	ErrCodeLicenseInactive   = "LICENSE_INACTIVE"
	ErrCodeNoConfiguration   = "NO_CONFIGURATION"
	ErrCodeSystemMismatch    = "SYSTEM_MISMATCH"
	ErrCodeTradeModeMismatch = "TRADE_MODE_MISMATCH"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// Sentinel errors for every terminal validation outcome. Each check in the
// protocol fails with exactly one of these; nothing is retried and nothing
// is persisted on failure.
var (
	// ErrLicenseNotFound deliberately leaks nothing about whether the key
	// was ever valid.
	ErrLicenseNotFound = errors.New("license not found")

	// ErrLicenseInactive means the operator kill switch is engaged.
	ErrLicenseInactive = errors.New("license is inactive")

	// ErrLicenseExpired means now is past the expiry timestamp.
	ErrLicenseExpired = errors.New("license is expired")

	// ErrNoConfiguration is a server-side misconfiguration: the license has
	// no usable trading configuration. Distinct from client errors so
	// operators can tell "your license is fine, our setup is broken" apart.
	ErrNoConfiguration = errors.New("license has no trading configuration")

	// ErrSystemMismatch is the anti-hijacking failure: once bound, only the
	// original trading account may ever validate again.
	ErrSystemMismatch = errors.New("license is bound to a different trading account")

	// ErrSystemHashInUse means the presented trading account is already
	// bound to another license. Raised by the store's global uniqueness
	// constraint when two licenses race for the same account.
	ErrSystemHashInUse = errors.New("trading account is already bound to another license")

	// ErrTradeModeMismatch means a bound license was used with a trade mode
	// other than the authoritative one recorded at first bind.
	ErrTradeModeMismatch = errors.New("account trade mode does not match the bound mode")
)

// CodeFor maps a validation error to its protocol error code.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrLicenseNotFound):
		return ErrCodeInvalidLicense
	case errors.Is(err, ErrLicenseInactive):
		return ErrCodeLicenseInactive
	case errors.Is(err, ErrLicenseExpired):
		return ErrCodeLicenseExpired
	case errors.Is(err, ErrNoConfiguration):
		return ErrCodeNoConfiguration
	case errors.Is(err, ErrSystemMismatch), errors.Is(err, ErrSystemHashInUse):
		return ErrCodeSystemMismatch
	case errors.Is(err, ErrTradeModeMismatch):
		return ErrCodeTradeModeMismatch
	default:
		return ErrCodeInternal
	}
}

// MaskKey truncates a license key for log output. Full keys never appear in
// logs or response bodies.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// MaskHash redacts a system or account hash to an 8-character prefix for
// server-side audit logs.
func MaskHash(hash string) string {
	if hash == "" {
		return ""
	}
	if len(hash) <= 8 {
		return "****"
	}
	return hash[:8] + "..."
}

// HashKeyForAudit derives a short stable digest of a license key so audit
// log lines can be correlated without storing the key itself.
func HashKeyForAudit(key string) string {
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", sum)[:16]
}
