package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"transquote/internal/config"
	"transquote/internal/domain"
	"transquote/internal/service"
	"transquote/mocks"
)

func TestSettingsService_StoreValuesOverrideDefaults(t *testing.T) {
	repo := new(mocks.MockSettingRepo)
	repo.On("All", mock.Anything).Return(map[string]string{
		"billing.base_rate":            "70.00",
		"billing.words_per_page":       "250",
		"billing.complexity_hard":      "1.5",
		"billing.min_billable_pages":   "1.0",
		"billing.language_multipliers": `{"ja": "1.4", "zh": "1.3"}`,
	}, nil)

	svc := service.NewSettingsService(repo, nil)
	settings := svc.Current(context.Background())

	assert.True(t, decimal.RequireFromString("70.00").Equal(settings.BaseRate))
	assert.Equal(t, 250, settings.WordsPerPage)
	assert.True(t, decimal.RequireFromString("1.5").Equal(settings.MultiplierFor(domain.ComplexityHard)))
	assert.True(t, decimal.RequireFromString("1.0").Equal(settings.MinBillablePages))
	assert.True(t, decimal.RequireFromString("1.4").Equal(settings.LanguageMultiplierFor("ja")))
	// Unconfigured languages carry no surcharge
	assert.True(t, decimal.NewFromInt(1).Equal(settings.LanguageMultiplierFor("de")))

	// Keys the store does not override keep their defaults
	assert.True(t, decimal.RequireFromString("1.15").Equal(settings.MultiplierFor(domain.ComplexityMedium)))
}

func TestSettingsService_IgnoresUnparsableValues(t *testing.T) {
	repo := new(mocks.MockSettingRepo)
	repo.On("All", mock.Anything).Return(map[string]string{
		"billing.base_rate":      "not-a-number",
		"billing.words_per_page": "-10",
	}, nil)

	svc := service.NewSettingsService(repo, nil)
	settings := svc.Current(context.Background())

	assert.True(t, decimal.RequireFromString("65.00").Equal(settings.BaseRate))
	assert.Equal(t, 225, settings.WordsPerPage)
}

func TestSettingsService_StoreFailureFallsBackToDefaults(t *testing.T) {
	repo := new(mocks.MockSettingRepo)
	repo.On("All", mock.Anything).Return(nil, errors.New("connection refused"))

	svc := service.NewSettingsService(repo, &config.BillingConfig{
		BaseRate:     "72.50",
		WordsPerPage: 240,
	})
	settings := svc.Current(context.Background())

	assert.True(t, decimal.RequireFromString("72.50").Equal(settings.BaseRate))
	assert.Equal(t, 240, settings.WordsPerPage)
}

func TestSettingsService_CallersGetIndependentCopies(t *testing.T) {
	repo := new(mocks.MockSettingRepo)
	repo.On("All", mock.Anything).Return(map[string]string{}, nil)

	svc := service.NewSettingsService(repo, nil)
	first := svc.Current(context.Background())
	first.ComplexityMultipliers[domain.ComplexityEasy] = decimal.RequireFromString("9.9")
	first.LanguageMultipliers["xx"] = decimal.RequireFromString("9.9")

	second := svc.Current(context.Background())
	assert.True(t, decimal.RequireFromString("1.0").Equal(second.MultiplierFor(domain.ComplexityEasy)))
	assert.True(t, decimal.NewFromInt(1).Equal(second.LanguageMultiplierFor("xx")))
}
