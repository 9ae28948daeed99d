package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"licensegate/internal/license"
	"licensegate/pkg/contracts/domain"
)

// BindResult is everything a successful validate-and-bind produced: the
// mutated license, what the mutation did, and the resolved configuration
// payload.
type BindResult struct {
	License       *license.License
	Outcome       license.BindOutcome
	Configuration *domain.ConfigurationPayload
}

// LicenseRepository persists licenses and runs the validation protocol's
// critical section against Postgres.
type LicenseRepository struct {
	db *gorm.DB
}

// NewLicenseRepository returns a repository backed by the given connection.
func NewLicenseRepository(db *gorm.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

// Ping reports whether the database is reachable. Used by readiness.
func (r *LicenseRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ValidateAndBind executes the whole read-check-mutate-write sequence for
// one validation call inside a single transaction, with the license row
// locked FOR UPDATE. Concurrent calls for the same key serialize on the
// row lock, so two racing first-use binds can never both observe an
// unbound record: the loser re-reads the bound state and fails with
// SystemMismatch. Nothing is persisted on any failure path.
func (r *LicenseRepository) ValidateAndBind(ctx context.Context, key string, now time.Time, params license.BindParams) (*BindResult, error) {
	var result *BindResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec licenseModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("license_key = ?", key).
			Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return license.ErrLicenseNotFound
			}
			return fmt.Errorf("load license: %w", err)
		}

		lic := toDomainLicense(rec, nil)
		if err := lic.Authorize(now, params); err != nil {
			return err
		}

		outcome := lic.Bind(now, params)

		updated := toLicenseModel(lic)
		updated.CreatedBy = rec.CreatedBy
		if err := tx.Model(&licenseModel{}).
			Where("id = ?", rec.ID).
			Updates(map[string]any{
				"system_hash":        updated.SystemHash,
				"account_hash":       updated.AccountHash,
				"broker_server":      updated.BrokerServer,
				"account_trade_mode": updated.AccountTradeMode,
				"first_used_at":      updated.FirstUsedAt,
				"last_used_at":       updated.LastUsedAt,
				"usage_count":        updated.UsageCount,
				"daily_usage_count":  updated.DailyUsageCount,
				"last_reset_date":    updated.LastResetDate,
				"updated_at":         updated.UpdatedAt,
			}).Error; err != nil {
			if isUniqueViolation(err) {
				// The global system_hash uniqueness constraint fired: the
				// presented trading account is already bound to another
				// license. Fail closed.
				return license.ErrSystemHashInUse
			}
			return fmt.Errorf("persist license: %w", err)
		}

		for _, entry := range outcome.AppendedHistory {
			h := historyModel{
				LicenseID:   rec.ID,
				AccountHash: entry.AccountHash,
				RecordedAt:  entry.Timestamp,
				Action:      string(entry.Action),
			}
			if err := tx.Create(&h).Error; err != nil {
				return fmt.Errorf("append history: %w", err)
			}
		}

		// Resolve the configuration inside the same transaction. Authorize
		// already required the reference, but the target may have vanished
		// between issue time and now.
		var cfg configurationModel
		if err := tx.Where("id = ?", *lic.ConfigurationID).Take(&cfg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return license.ErrNoConfiguration
			}
			return fmt.Errorf("resolve configuration: %w", err)
		}

		result = &BindResult{
			License:       lic,
			Outcome:       outcome,
			Configuration: toConfigurationPayload(cfg),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Create persists a freshly issued license.
func (r *LicenseRepository) Create(ctx context.Context, lic *license.License) error {
	rec := toLicenseModel(lic)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("license key collision: %w", err)
		}
		return fmt.Errorf("create license: %w", err)
	}
	lic.ID = rec.ID
	return nil
}

// GetByKey loads a license with its complete account hash history, in
// insertion order.
func (r *LicenseRepository) GetByKey(ctx context.Context, key string) (*license.License, error) {
	var rec licenseModel
	if err := r.db.WithContext(ctx).Where("license_key = ?", key).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, license.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("load license: %w", err)
	}
	var history []historyModel
	if err := r.db.WithContext(ctx).
		Where("license_id = ?", rec.ID).
		Order("id ASC").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return toDomainLicense(rec, history), nil
}

// List returns all licenses, newest first, without history.
func (r *LicenseRepository) List(ctx context.Context) ([]*license.License, error) {
	var recs []licenseModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	out := make([]*license.License, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDomainLicense(rec, nil))
	}
	return out, nil
}

// Deactivate engages the operator kill switch. Binding state and history
// are left untouched so a revoked license remains auditable.
func (r *LicenseRepository) Deactivate(ctx context.Context, key string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("license_key = ?", key).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("deactivate license: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return license.ErrLicenseNotFound
	}
	return nil
}

// AssignConfiguration points the license at a (possibly different)
// configuration bundle. Allowed at any time, bound or not.
func (r *LicenseRepository) AssignConfiguration(ctx context.Context, key string, configurationID int64, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg configurationModel
		if err := tx.Where("id = ?", configurationID).Take(&cfg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return license.ErrNoConfiguration
			}
			return fmt.Errorf("load configuration: %w", err)
		}
		res := tx.Model(&licenseModel{}).
			Where("license_key = ?", key).
			Updates(map[string]any{
				"configuration_id": configurationID,
				"updated_at":       at,
			})
		if res.Error != nil {
			return fmt.Errorf("assign configuration: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return license.ErrLicenseNotFound
		}
		return nil
	})
}

// GetClient loads a client by id.
func (r *LicenseRepository) GetClient(ctx context.Context, id int64) (*license.Client, error) {
	var rec clientModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("load client: %w", err)
	}
	return toDomainClient(rec), nil
}

// CreateClient persists a new client. The (first name, last name, country)
// tuple is unique.
func (r *LicenseRepository) CreateClient(ctx context.Context, c *license.Client) error {
	rec := clientModel{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Country:   c.Country,
		Email:     nullableString(c.Email),
		Phone:     nullableString(c.Phone),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		CreatedBy: c.CreatedBy,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrClientExists
		}
		return fmt.Errorf("create client: %w", err)
	}
	c.ID = rec.ID
	return nil
}

// Sentinel errors owned by the store.
var (
	ErrClientNotFound        = errors.New("client not found")
	ErrClientExists          = errors.New("client already exists")
	ErrConfigurationExists   = errors.New("configuration name already exists")
	ErrConfigurationNotFound = license.ErrNoConfiguration
)

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
