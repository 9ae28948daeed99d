package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"licensegate/pkg/contracts/domain"
)

// ConfigurationRepository is the configuration-lookup collaborator. The
// validation protocol only ever reads through Resolve; writes come from
// the admin surface.
type ConfigurationRepository struct {
	db *gorm.DB
}

// NewConfigurationRepository returns a repository backed by the given
// connection.
func NewConfigurationRepository(db *gorm.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

// Resolve returns the versioned payload for a configuration reference.
func (r *ConfigurationRepository) Resolve(ctx context.Context, id int64) (*domain.ConfigurationPayload, error) {
	var rec configurationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigurationNotFound
		}
		return nil, fmt.Errorf("resolve configuration: %w", err)
	}
	return toConfigurationPayload(rec), nil
}

// Create persists a named configuration bundle and returns its id.
func (r *ConfigurationRepository) Create(ctx context.Context, req domain.CreateConfigurationRequest, now time.Time) (int64, error) {
	rec := configurationModel{
		Name:                   req.Name,
		AllowedSymbol:          req.AllowedSymbol,
		StrictSymbolCheck:      req.StrictSymbolCheck,
		SessionStart:           req.SessionStart,
		SessionEnd:             req.SessionEnd,
		FibLevel11:             req.FibLevels.Level11,
		FibLevel105:            req.FibLevels.Level105,
		FibLevel10:             req.FibLevels.Level10,
		FibLevel00:             req.FibLevels.Level00,
		FibLevelNeg05:          req.FibLevels.LevelNeg05,
		FibLevelNeg1:           req.FibLevels.LevelNeg1,
		FibPrimaryBuySL:        req.FibLevels.PrimaryBuySL,
		FibPrimarySellSL:       req.FibLevels.PrimarySellSL,
		FibHedgeBuy:            req.FibLevels.HedgeBuy,
		FibHedgeSell:           req.FibLevels.HedgeSell,
		FibHedgeBuySL:          req.FibLevels.HedgeBuySL,
		FibHedgeSellSL:         req.FibLevels.HedgeSellSL,
		FibHedgeBuyTP:          req.FibLevels.HedgeBuyTP,
		FibHedgeSellTP:         req.FibLevels.HedgeSellTP,
		PrimaryPendingTimeout:  req.Timeouts.PrimaryPending,
		PrimaryPositionTimeout: req.Timeouts.PrimaryPosition,
		HedgingPendingTimeout:  req.Timeouts.HedgingPending,
		HedgingPositionTimeout: req.Timeouts.HedgingPosition,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConfigurationExists
		}
		return 0, fmt.Errorf("create configuration: %w", err)
	}
	return rec.ID, nil
}
