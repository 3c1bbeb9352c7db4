package pricing

import (
	"github.com/shopspring/decimal"
)

// RateGranularity is the increment all per-page rates are quoted in.
// Rates always round up to the next $2.50 step; this is billing policy,
// not a numeric artifact.
var RateGranularity = decimal.RequireFromString("2.5")

var ten = decimal.NewFromInt(10)

// BillablePages computes the chargeable page-equivalent quantity for a
// document: (wordCount / wordsPerPage) * complexityMultiplier, rounded up
// to the nearest tenth of a page, then clamped to at least minPages.
// Rounding is always up, so the shop never under-bills. A zero word count
// yields exactly zero, bypassing the minimum: a document contributing no
// billable translation work is not padded to the floor.
func BillablePages(wordCount int, complexityMultiplier decimal.Decimal, wordsPerPage int, minPages decimal.Decimal) decimal.Decimal {
	if wordCount <= 0 || wordsPerPage <= 0 {
		return decimal.Zero
	}
	if complexityMultiplier.IsNegative() {
		complexityMultiplier = decimal.Zero
	}

	pages := decimal.NewFromInt(int64(wordCount)).
		Mul(complexityMultiplier).
		Div(decimal.NewFromInt(int64(wordsPerPage))).
		Mul(ten).Ceil().Div(ten)

	if pages.LessThan(minPages) {
		return minPages
	}
	return pages
}

// PerPageRate computes the quoted per-page rate: baseRate scaled by the
// language multiplier, rounded up to the rate granularity.
func PerPageRate(baseRate, languageMultiplier decimal.Decimal) decimal.Decimal {
	if baseRate.IsNegative() {
		baseRate = decimal.Zero
	}
	if languageMultiplier.IsNegative() {
		languageMultiplier = decimal.Zero
	}
	return baseRate.Mul(languageMultiplier).
		Div(RateGranularity).Ceil().Mul(RateGranularity)
}

// TranslationCost is billablePages * perPageRate, or zero when there are
// no billable pages.
func TranslationCost(billablePages, perPageRate decimal.Decimal) decimal.Decimal {
	if billablePages.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if perPageRate.IsNegative() {
		return decimal.Zero
	}
	return billablePages.Mul(perPageRate)
}

// CertificationCost sums the per-entry certification prices, allowing
// heterogeneous certification per sub-document. Negative entries count as
// zero.
func CertificationCost(certs []DocumentCertification) decimal.Decimal {
	total := decimal.Zero
	for i := range certs {
		if certs[i].Price.IsNegative() {
			continue
		}
		total = total.Add(certs[i].Price)
	}
	return total
}
