package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"licensegate/internal/license"
	"licensegate/internal/store"
	"licensegate/pkg/contracts/domain"
)

// adminOperator is recorded as the creating operator for records made
// through the admin API, which authenticates with a single shared
// credential rather than per-operator identities.
const adminOperator = "admin-api"

// LicenseStore is the slice of the record store the service depends on.
// Implemented by store.LicenseRepository; tests substitute a fake.
type LicenseStore interface {
	ValidateAndBind(ctx context.Context, key string, now time.Time, params license.BindParams) (*store.BindResult, error)
	Create(ctx context.Context, lic *license.License) error
	GetByKey(ctx context.Context, key string) (*license.License, error)
	List(ctx context.Context) ([]*license.License, error)
	Deactivate(ctx context.Context, key string, at time.Time) error
	AssignConfiguration(ctx context.Context, key string, configurationID int64, at time.Time) error
	GetClient(ctx context.Context, id int64) (*license.Client, error)
	CreateClient(ctx context.Context, c *license.Client) error
}

// ConfigurationStore is the configuration-lookup collaborator contract.
type ConfigurationStore interface {
	Resolve(ctx context.Context, id int64) (*domain.ConfigurationPayload, error)
	Create(ctx context.Context, req domain.CreateConfigurationRequest, now time.Time) (int64, error)
}

// LicenseService provides the bot-facing validation operation and the
// operator-facing license administration operations.
type LicenseService interface {
	Validate(ctx context.Context, req domain.ValidationRequest) (*domain.ValidationResponse, error)

	CreateClient(ctx context.Context, req domain.CreateClientRequest) (*license.Client, error)
	CreateConfiguration(ctx context.Context, req domain.CreateConfigurationRequest) (int64, error)
	CreateLicense(ctx context.Context, req domain.CreateLicenseRequest) (*domain.LicenseView, error)
	GetLicense(ctx context.Context, key string) (*domain.LicenseView, error)
	ListLicenses(ctx context.Context) ([]domain.LicenseView, error)
	DeactivateLicense(ctx context.Context, key string) error
	AssignConfiguration(ctx context.Context, key string, configurationID int64) error
}

type licenseService struct {
	licenses LicenseStore
	configs  ConfigurationStore
	metrics  *ValidationMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewLicenseService creates the service. A nil metrics value disables
// metric recording; the now function defaults to time.Now.
func NewLicenseService(licenses LicenseStore, configs ConfigurationStore, metrics *ValidationMetrics, logger *slog.Logger) LicenseService {
	return &licenseService{
		licenses: licenses,
		configs:  configs,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "license_service")),
		now:      time.Now,
	}
}

// Validate runs one bot validation call through the state machine. Every
// failure is terminal and persists nothing; success persists the bind or
// usage update atomically and returns the resolved configuration.
func (s *licenseService) Validate(ctx context.Context, req domain.ValidationRequest) (*domain.ValidationResponse, error) {
	tracer := otel.Tracer("license-service")
	start := s.now()

	ctx, span := tracer.Start(ctx, "license_service.validate",
		trace.WithAttributes(
			attribute.String("license.key_prefix", license.MaskKey(req.LicenseKey)),
			attribute.String("license.key_hash", license.HashKeyForAudit(req.LicenseKey)),
			attribute.Int("license.trade_mode", derefTradeMode(req.AccountTradeMode)),
		),
	)
	defer span.End()

	mode := license.TradeMode(derefTradeMode(req.AccountTradeMode))
	if !mode.Valid() {
		// The handler validates the enum; this is the fail-closed backstop.
		err := fmt.Errorf("invalid account trade mode %d", int(mode))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	params := license.BindParams{
		SystemHash:   req.SystemHash,
		TradeMode:    mode,
		BrokerServer: req.BrokerServer,
		AccountHash:  req.AccountHash,
	}

	result, err := s.licenses.ValidateAndBind(ctx, req.LicenseKey, start, params)
	duration := s.now().Sub(start)
	s.metrics.RecordValidation(ctx, duration, err)

	if err != nil {
		span.SetAttributes(attribute.String("license.result", license.CodeFor(err)))
		s.logValidationFailure(ctx, req, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("license.result", "success"),
		attribute.Bool("license.first_time_use", result.Outcome.FirstTimeUse),
		attribute.Bool("license.login_changed", result.Outcome.AccountLoginChanged),
	)
	if result.Outcome.FirstTimeUse {
		s.metrics.RecordBind(ctx)
	}

	s.logger.InfoContext(ctx, "license validated",
		slog.String("license_key_masked", license.MaskKey(req.LicenseKey)),
		slog.String("license_key_hash", license.HashKeyForAudit(req.LicenseKey)),
		slog.Bool("first_time_use", result.Outcome.FirstTimeUse),
		slog.Bool("account_login_changed", result.Outcome.AccountLoginChanged),
		slog.Uint64("usage_count", result.License.UsageCount),
		slog.Duration("duration", duration),
	)

	return &domain.ValidationResponse{
		Success:       true,
		Message:       "License validated successfully",
		Configuration: result.Configuration,
		ExpiresAt:     result.License.ExpiresAt,
		LicenseInfo: domain.UsageInfo{
			UsageCount:          result.License.UsageCount,
			DailyUsage:          result.License.DailyUsageCount,
			FirstTimeUse:        result.Outcome.FirstTimeUse,
			AccountLoginChanged: result.Outcome.AccountLoginChanged,
		},
	}, nil
}

// logValidationFailure keeps the server-side audit trail. A system
// mismatch is security relevant and is logged with both hashes in
// truncated form; they never reach the response body.
func (s *licenseService) logValidationFailure(ctx context.Context, req domain.ValidationRequest, err error) {
	attrs := []any{
		slog.String("license_key_masked", license.MaskKey(req.LicenseKey)),
		slog.String("license_key_hash", license.HashKeyForAudit(req.LicenseKey)),
		slog.String("error_code", license.CodeFor(err)),
		slog.String("error", err.Error()),
	}
	switch {
	case errors.Is(err, license.ErrSystemMismatch), errors.Is(err, license.ErrSystemHashInUse):
		attrs = append(attrs,
			slog.String("presented_system_hash", license.MaskHash(req.SystemHash)),
			slog.String("audit_category", "license_security"),
		)
		s.logger.WarnContext(ctx, "license validation rejected: system hash mismatch", attrs...)
	case errors.Is(err, license.ErrLicenseNotFound):
		s.logger.WarnContext(ctx, "license validation rejected: unknown key", attrs...)
	case errors.Is(err, license.ErrNoConfiguration):
		s.logger.ErrorContext(ctx, "license validation failed: no configuration assigned", attrs...)
	case errors.Is(err, license.ErrLicenseInactive),
		errors.Is(err, license.ErrLicenseExpired),
		errors.Is(err, license.ErrTradeModeMismatch):
		s.logger.WarnContext(ctx, "license validation rejected", attrs...)
	default:
		s.logger.ErrorContext(ctx, "license validation error", attrs...)
	}
}

func (s *licenseService) CreateClient(ctx context.Context, req domain.CreateClientRequest) (*license.Client, error) {
	now := s.now()
	c := &license.Client{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Country:   req.Country,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: adminOperator,
	}
	if err := s.licenses.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "client created",
		slog.Int64("client_id", c.ID),
		slog.String("country", c.Country),
	)
	return c, nil
}

func (s *licenseService) CreateConfiguration(ctx context.Context, req domain.CreateConfigurationRequest) (int64, error) {
	id, err := s.configs.Create(ctx, req, s.now())
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "trading configuration created",
		slog.Int64("configuration_id", id),
		slog.String("name", req.Name),
	)
	return id, nil
}

func (s *licenseService) CreateLicense(ctx context.Context, req domain.CreateLicenseRequest) (*domain.LicenseView, error) {
	now := s.now()

	client, err := s.licenses.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	// The configuration resolver is handed to the factory explicitly, so
	// issuing with or without an assignment is the caller's visible choice
	// rather than a hidden side effect.
	var resolver license.ConfigurationResolver
	if req.ConfigurationID != nil {
		if _, err := s.configs.Resolve(ctx, *req.ConfigurationID); err != nil {
			return nil, err
		}
		resolver = func() *int64 { return req.ConfigurationID }
	}

	var expires time.Time
	if req.ExpiresAt != nil {
		expires = *req.ExpiresAt
	}
	lic, err := license.New(now, license.NewParams{
		ClientID:  client.ID,
		TradeMode: license.TradeMode(req.AccountTradeMode),
		ExpiresAt: expires,
	}, resolver)
	if err != nil {
		return nil, err
	}

	if err := s.licenses.Create(ctx, lic); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "license issued",
		slog.String("license_key_masked", license.MaskKey(lic.Key)),
		slog.Int64("client_id", client.ID),
		slog.Bool("configuration_assigned", lic.ConfigurationID != nil),
		slog.Time("expires_at", lic.ExpiresAt),
	)

	view := buildLicenseView(lic, client, now)
	return &view, nil
}

func (s *licenseService) GetLicense(ctx context.Context, key string) (*domain.LicenseView, error) {
	lic, err := s.licenses.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	client, err := s.licenses.GetClient(ctx, lic.ClientID)
	if err != nil {
		return nil, err
	}
	view := buildLicenseView(lic, client, s.now())
	return &view, nil
}

func (s *licenseService) ListLicenses(ctx context.Context) ([]domain.LicenseView, error) {
	lics, err := s.licenses.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]domain.LicenseView, 0, len(lics))
	for _, lic := range lics {
		client, err := s.licenses.GetClient(ctx, lic.ClientID)
		if err != nil {
			return nil, err
		}
		views = append(views, buildLicenseView(lic, client, now))
	}
	return views, nil
}

func (s *licenseService) DeactivateLicense(ctx context.Context, key string) error {
	if err := s.licenses.Deactivate(ctx, key, s.now()); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "license deactivated",
		slog.String("license_key_masked", license.MaskKey(key)),
		slog.String("audit_category", "license_security"),
	)
	return nil
}

func (s *licenseService) AssignConfiguration(ctx context.Context, key string, configurationID int64) error {
	if err := s.licenses.AssignConfiguration(ctx, key, configurationID, s.now()); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "license configuration assigned",
		slog.String("license_key_masked", license.MaskKey(key)),
		slog.Int64("configuration_id", configurationID),
	)
	return nil
}

// buildLicenseView projects a license for operator consumption. History
// hashes are redacted to prefixes; the response never carries full values.
func buildLicenseView(lic *license.License, client *license.Client, now time.Time) domain.LicenseView {
	view := domain.LicenseView{
		LicenseKey:       lic.Key,
		ClientName:       client.FullName(),
		ConfigurationID:  lic.ConfigurationID,
		Status:           string(lic.Status(now)),
		AccountTradeMode: int(lic.AccountTradeMode),
		BrokerServer:     lic.BrokerServer,
		IsBound:          lic.IsBound(),
		HasLogin:         lic.HasLogin(),
		ExpiresAt:        lic.ExpiresAt,
		IsActive:         lic.IsActive,
		FirstUsedAt:      lic.FirstUsedAt,
		LastUsedAt:       lic.LastUsedAt,
		UsageCount:       lic.UsageCount,
		DailyUsageCount:  lic.DailyUsageCount,
		CreatedAt:        lic.CreatedAt,
	}
	for _, entry := range lic.History {
		view.History = append(view.History, domain.HistoryEntryView{
			AccountHash: license.MaskHash(entry.AccountHash),
			Timestamp:   entry.Timestamp,
			Action:      string(entry.Action),
		})
	}
	return view
}

func derefTradeMode(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}
