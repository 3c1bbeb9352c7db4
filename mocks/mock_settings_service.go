package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"transquote/internal/domain"
)

// MockSettingsService is a mock implementation of service.SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Current(ctx context.Context) domain.Settings {
	args := m.Called(ctx)
	return args.Get(0).(domain.Settings)
}
