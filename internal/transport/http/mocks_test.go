package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"licensegate/internal/license"
	"licensegate/pkg/contracts/domain"
)

// MockLicenseService is a testify mock of services.LicenseService.
type MockLicenseService struct {
	mock.Mock
}

func (m *MockLicenseService) Validate(ctx context.Context, req domain.ValidationRequest) (*domain.ValidationResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*domain.ValidationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseService) CreateClient(ctx context.Context, req domain.CreateClientRequest) (*license.Client, error) {
	args := m.Called(ctx, req)
	if c := args.Get(0); c != nil {
		return c.(*license.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseService) CreateConfiguration(ctx context.Context, req domain.CreateConfigurationRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLicenseService) CreateLicense(ctx context.Context, req domain.CreateLicenseRequest) (*domain.LicenseView, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*domain.LicenseView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseService) GetLicense(ctx context.Context, key string) (*domain.LicenseView, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.(*domain.LicenseView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseService) ListLicenses(ctx context.Context) ([]domain.LicenseView, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.LicenseView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseService) DeactivateLicense(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLicenseService) AssignConfiguration(ctx context.Context, key string, configurationID int64) error {
	args := m.Called(ctx, key, configurationID)
	return args.Error(0)
}
