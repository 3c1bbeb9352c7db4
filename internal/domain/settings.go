package domain

import "github.com/shopspring/decimal"

// Settings holds the global billing constants used by the pricing engine.
// Immutable per reconciliation session; changes require a sheet reload.
type Settings struct {
	BaseRate              decimal.Decimal                `json:"base_rate"`
	WordsPerPage          int                            `json:"words_per_page"`
	ComplexityMultipliers map[Complexity]decimal.Decimal `json:"complexity_multipliers"`
	MinBillablePages      decimal.Decimal                `json:"min_billable_pages"`
	LanguageMultipliers   map[string]decimal.Decimal     `json:"language_multipliers"`
}

// DefaultSettings returns the documented fallback constants used whenever
// the settings store is missing a key or cannot be reached at all.
func DefaultSettings() Settings {
	return Settings{
		BaseRate:     decimal.RequireFromString("65.00"),
		WordsPerPage: 225,
		ComplexityMultipliers: map[Complexity]decimal.Decimal{
			ComplexityEasy:   decimal.RequireFromString("1.0"),
			ComplexityMedium: decimal.RequireFromString("1.15"),
			ComplexityHard:   decimal.RequireFromString("1.25"),
		},
		MinBillablePages:    decimal.RequireFromString("0.5"),
		LanguageMultipliers: map[string]decimal.Decimal{},
	}
}

// MultiplierFor returns the complexity multiplier for the given tier,
// falling back to the easy tier for unknown values.
func (s Settings) MultiplierFor(c Complexity) decimal.Decimal {
	if m, ok := s.ComplexityMultipliers[c]; ok {
		return m
	}
	return s.ComplexityMultipliers[ComplexityEasy]
}

// LanguageMultiplierFor returns the per-language rate multiplier, or 1.0
// when the language has no configured surcharge.
func (s Settings) LanguageMultiplierFor(lang string) decimal.Decimal {
	if m, ok := s.LanguageMultipliers[lang]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}
