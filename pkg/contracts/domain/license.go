// Package domain contains the wire-level contract types for the license
// server. These types serve as the Single Source of Truth (SSOT) for the
// validation API and the admin surface.
package domain

import (
	"time"
)

// ValidationRequest is the body a trading bot posts to /api/validate.
// The license key is the credential; there is no other authentication on
// the endpoint. Timestamp is informational and takes no part in the
// validation logic.
type ValidationRequest struct {
	LicenseKey       string `json:"license_key" validate:"required,min=10,max=64"`
	SystemHash       string `json:"system_hash" validate:"required,max=128"`
	AccountTradeMode *int   `json:"account_trade_mode" validate:"required,min=0,max=2"`
	BrokerServer     string `json:"broker_server,omitempty" validate:"omitempty,max=100"`
	AccountHash      string `json:"account_hash,omitempty" validate:"omitempty,max=128"`
	Timestamp        string `json:"timestamp,omitempty"`
}

// UsageInfo is the usage metadata block in a successful validation response.
type UsageInfo struct {
	UsageCount          uint64 `json:"usage_count"`
	DailyUsage          uint64 `json:"daily_usage"`
	FirstTimeUse        bool   `json:"first_time_use"`
	AccountLoginChanged bool   `json:"account_login_changed"`
}

// ValidationResponse is returned for a successful validation. The
// configuration payload is opaque to the protocol; the bot receives
// whatever the configuration lookup resolved.
type ValidationResponse struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message"`
	Configuration *ConfigurationPayload `json:"configuration"`
	ExpiresAt     time.Time             `json:"expires_at"`
	LicenseInfo   UsageInfo             `json:"license_info"`
}

// HistoryEntryView is a redacted account-login history entry for the
// admin detail view. Hashes are truncated; full values never leave the
// server.
type HistoryEntryView struct {
	AccountHash string    `json:"account_hash"`
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
}

// LicenseView is the operator-facing projection of a license.
type LicenseView struct {
	LicenseKey       string             `json:"license_key"`
	ClientName       string             `json:"client_name"`
	ConfigurationID  *int64             `json:"configuration_id"`
	Status           string             `json:"status"`
	AccountTradeMode int                `json:"account_trade_mode"`
	BrokerServer     string             `json:"broker_server,omitempty"`
	IsBound          bool               `json:"is_bound"`
	HasLogin         bool               `json:"has_login"`
	ExpiresAt        time.Time          `json:"expires_at"`
	IsActive         bool               `json:"is_active"`
	FirstUsedAt      *time.Time         `json:"first_used_at,omitempty"`
	LastUsedAt       *time.Time         `json:"last_used_at,omitempty"`
	UsageCount       uint64             `json:"usage_count"`
	DailyUsageCount  uint64             `json:"daily_usage_count"`
	History          []HistoryEntryView `json:"account_hash_history,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// CreateClientRequest creates a client through the admin surface.
// First name, last name and country form the uniqueness tuple.
type CreateClientRequest struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Country   string `json:"country" validate:"required,max=100"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// CreateLicenseRequest issues a license for an existing client. When
// ConfigurationID is omitted the license is issued unassigned and is not
// usable for trading until one is assigned.
type CreateLicenseRequest struct {
	ClientID         int64      `json:"client_id" validate:"required"`
	ConfigurationID  *int64     `json:"configuration_id,omitempty"`
	AccountTradeMode int        `json:"account_trade_mode" validate:"min=0,max=2"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

// AssignConfigurationRequest assigns or reassigns the configuration of a
// license. Binding state is never touched.
type AssignConfigurationRequest struct {
	ConfigurationID int64 `json:"configuration_id" validate:"required"`
}
