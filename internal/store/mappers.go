package store

import (
	"strings"

	"licensegate/internal/license"
	"licensegate/pkg/contracts"
	"licensegate/pkg/contracts/domain"
)

func toDomainLicense(rec licenseModel, history []historyModel) *license.License {
	lic := &license.License{
		ID:               rec.ID,
		Key:              rec.LicenseKey,
		ClientID:         rec.ClientID,
		ConfigurationID:  rec.ConfigurationID,
		SystemHash:       rec.SystemHash,
		AccountHash:      rec.AccountHash,
		BrokerServer:     rec.BrokerServer,
		AccountTradeMode: license.TradeMode(rec.AccountTradeMode),
		ExpiresAt:        rec.ExpiresAt,
		IsActive:         rec.IsActive,
		FirstUsedAt:      rec.FirstUsedAt,
		LastUsedAt:       rec.LastUsedAt,
		UsageCount:       rec.UsageCount,
		DailyUsageCount:  rec.DailyUsageCount,
		LastResetDate:    rec.LastResetDate,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	for _, h := range history {
		lic.History = append(lic.History, license.HistoryEntry{
			AccountHash: h.AccountHash,
			Timestamp:   h.RecordedAt,
			Action:      license.HistoryAction(h.Action),
		})
	}
	return lic
}

func toLicenseModel(lic *license.License) licenseModel {
	return licenseModel{
		ID:               lic.ID,
		LicenseKey:       lic.Key,
		ClientID:         lic.ClientID,
		ConfigurationID:  lic.ConfigurationID,
		SystemHash:       lic.SystemHash,
		AccountHash:      lic.AccountHash,
		BrokerServer:     lic.BrokerServer,
		AccountTradeMode: int(lic.AccountTradeMode),
		ExpiresAt:        lic.ExpiresAt,
		IsActive:         lic.IsActive,
		FirstUsedAt:      lic.FirstUsedAt,
		LastUsedAt:       lic.LastUsedAt,
		UsageCount:       lic.UsageCount,
		DailyUsageCount:  lic.DailyUsageCount,
		LastResetDate:    lic.LastResetDate,
		CreatedAt:        lic.CreatedAt,
		UpdatedAt:        lic.UpdatedAt,
		CreatedBy:        "",
	}
}

func toDomainClient(rec clientModel) *license.Client {
	c := &license.Client{
		ID:        rec.ID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Country:   rec.Country,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		CreatedBy: rec.CreatedBy,
	}
	if rec.Email != nil {
		c.Email = *rec.Email
	}
	if rec.Phone != nil {
		c.Phone = *rec.Phone
	}
	return c
}

func toConfigurationPayload(rec configurationModel) *domain.ConfigurationPayload {
	return &domain.ConfigurationPayload{
		SchemaVersion:     contracts.ConfigurationSchemaVersion,
		Name:              rec.Name,
		AllowedSymbol:     rec.AllowedSymbol,
		StrictSymbolCheck: rec.StrictSymbolCheck,
		SessionStart:      rec.SessionStart,
		SessionEnd:        rec.SessionEnd,
		FibLevels: domain.FibonacciLevels{
			Level11:       rec.FibLevel11,
			Level105:      rec.FibLevel105,
			Level10:       rec.FibLevel10,
			Level00:       rec.FibLevel00,
			LevelNeg05:    rec.FibLevelNeg05,
			LevelNeg1:     rec.FibLevelNeg1,
			PrimaryBuySL:  rec.FibPrimaryBuySL,
			PrimarySellSL: rec.FibPrimarySellSL,
			HedgeBuy:      rec.FibHedgeBuy,
			HedgeSell:     rec.FibHedgeSell,
			HedgeBuySL:    rec.FibHedgeBuySL,
			HedgeSellSL:   rec.FibHedgeSellSL,
			HedgeBuyTP:    rec.FibHedgeBuyTP,
			HedgeSellTP:   rec.FibHedgeSellTP,
		},
		Timeouts: domain.TimeoutSettings{
			PrimaryPending:  rec.PrimaryPendingTimeout,
			PrimaryPosition: rec.PrimaryPositionTimeout,
			HedgingPending:  rec.HedgingPendingTimeout,
			HedgingPosition: rec.HedgingPositionTimeout,
		},
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
