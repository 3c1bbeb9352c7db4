package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/shopspring/decimal"

	"transquote/internal/config"
	"transquote/internal/domain"
	"transquote/internal/port"
)

// Settings store keys.
const (
	settingBaseRate            = "billing.base_rate"
	settingWordsPerPage        = "billing.words_per_page"
	settingEasyMultiplier      = "billing.complexity_easy"
	settingMediumMultiplier    = "billing.complexity_medium"
	settingHardMultiplier      = "billing.complexity_hard"
	settingMinBillablePages    = "billing.min_billable_pages"
	settingLanguageMultipliers = "billing.language_multipliers"
)

// SettingsService supplies the global billing constants. Values come from
// the settings store; any key that is missing or unparsable falls back to
// the configured defaults, and a store failure falls back entirely. The
// sheet must stay usable when settings cannot be loaded.
type SettingsService interface {
	Current(ctx context.Context) domain.Settings
}

type settingsService struct {
	repo     port.SettingRepository
	defaults domain.Settings
}

// NewSettingsService creates a SettingsService with defaults taken from
// the billing config section.
func NewSettingsService(repo port.SettingRepository, cfg *config.BillingConfig) SettingsService {
	return &settingsService{
		repo:     repo,
		defaults: defaultsFromConfig(cfg),
	}
}

func defaultsFromConfig(cfg *config.BillingConfig) domain.Settings {
	s := domain.DefaultSettings()
	if cfg == nil {
		return s
	}
	if d, err := decimal.NewFromString(cfg.BaseRate); err == nil {
		s.BaseRate = d
	}
	if cfg.WordsPerPage > 0 {
		s.WordsPerPage = cfg.WordsPerPage
	}
	if d, err := decimal.NewFromString(cfg.EasyMultiplier); err == nil {
		s.ComplexityMultipliers[domain.ComplexityEasy] = d
	}
	if d, err := decimal.NewFromString(cfg.MediumMultiplier); err == nil {
		s.ComplexityMultipliers[domain.ComplexityMedium] = d
	}
	if d, err := decimal.NewFromString(cfg.HardMultiplier); err == nil {
		s.ComplexityMultipliers[domain.ComplexityHard] = d
	}
	if d, err := decimal.NewFromString(cfg.MinBillablePages); err == nil {
		s.MinBillablePages = d
	}
	return s
}

func (s *settingsService) Current(ctx context.Context) domain.Settings {
	out := s.defaults
	// Copy the maps so per-call overrides never leak into the defaults.
	out.ComplexityMultipliers = make(map[domain.Complexity]decimal.Decimal, len(s.defaults.ComplexityMultipliers))
	for k, v := range s.defaults.ComplexityMultipliers {
		out.ComplexityMultipliers[k] = v
	}
	out.LanguageMultipliers = make(map[string]decimal.Decimal, len(s.defaults.LanguageMultipliers))
	for k, v := range s.defaults.LanguageMultipliers {
		out.LanguageMultipliers[k] = v
	}

	values, err := s.repo.All(ctx)
	if err != nil {
		log.Printf("settingsService.Current: settings store unavailable, using defaults: %v", err)
		return out
	}

	if v, ok := values[settingBaseRate]; ok {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			out.BaseRate = d
		}
	}
	if v, ok := values[settingWordsPerPage]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.WordsPerPage = n
		}
	}
	for key, tier := range map[string]domain.Complexity{
		settingEasyMultiplier:   domain.ComplexityEasy,
		settingMediumMultiplier: domain.ComplexityMedium,
		settingHardMultiplier:   domain.ComplexityHard,
	} {
		if v, ok := values[key]; ok {
			if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
				out.ComplexityMultipliers[tier] = d
			}
		}
	}
	if v, ok := values[settingMinBillablePages]; ok {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			out.MinBillablePages = d
		}
	}
	if v, ok := values[settingLanguageMultipliers]; ok {
		var langs map[string]string
		if err := json.Unmarshal([]byte(v), &langs); err == nil {
			for lang, mult := range langs {
				if d, err := decimal.NewFromString(mult); err == nil && d.IsPositive() {
					out.LanguageMultipliers[lang] = d
				}
			}
		} else {
			log.Printf("settingsService.Current: malformed %s, ignoring: %v", settingLanguageMultipliers, err)
		}
	}

	return out
}
