package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"transquote/internal/domain"
)

// DocumentCertification is the certification selected for one sub-document
// of a pricing row.
type DocumentCertification struct {
	Index                 int             `json:"index"`
	CertificationTypeID   uuid.UUID       `json:"certification_type_id"`
	CertificationTypeName string          `json:"certification_type_name"`
	HolderName            string          `json:"holder_name"`
	Price                 decimal.Decimal `json:"price"`
}

// Row is the mutable, in-memory working model for one document on the
// pricing sheet. Rows are built fresh on every sheet (re)load and mutated
// only through Sheet operations, which recompute the derived costs.
type Row struct {
	AnalysisID       uuid.UUID               `json:"analysis_id"`
	FileName         string                  `json:"file_name"`
	DocumentType     string                  `json:"document_type"`
	SourceLanguage   string                  `json:"source_language"`
	ProcessingStatus domain.ProcessingStatus `json:"processing_status"`
	EntryMethod      domain.EntryMethod      `json:"entry_method"`
	WordCount        int                     `json:"word_count"`
	PageCount        int                     `json:"page_count"`

	BillablePages           decimal.Decimal `json:"billable_pages"`
	BillablePagesOverridden bool            `json:"billable_pages_overridden"`

	Complexity           domain.Complexity `json:"complexity"`
	ComplexityMultiplier decimal.Decimal   `json:"complexity_multiplier"`

	BaseRate           decimal.Decimal `json:"base_rate"`
	BaseRateOverridden bool            `json:"base_rate_overridden"`
	PerPageRate        decimal.Decimal `json:"per_page_rate"`

	DocumentCount int `json:"document_count"`

	CertificationTypeID    uuid.UUID               `json:"certification_type_id"`
	CertificationTypeName  string                  `json:"certification_type_name"`
	CertificationUnitPrice decimal.Decimal         `json:"certification_unit_price"`
	DocumentCertifications []DocumentCertification `json:"document_certifications"`
	HasPerDocCertOverrides bool                    `json:"has_per_doc_cert_overrides"`

	TranslationCost   decimal.Decimal `json:"translation_cost"`
	CertificationCost decimal.Decimal `json:"certification_cost"`
	LineTotal         decimal.Decimal `json:"line_total"`

	IsExcluded bool `json:"is_excluded"`

	// savedAt is the pricing_saved_at the row was built from; used to
	// detect a concurrent save against the same analysis result.
	savedAt *time.Time
}

// LoadedSavedAt returns the snapshot timestamp the row was built from, or
// nil when the row had no persisted pricing decision.
func (r *Row) LoadedSavedAt() *time.Time {
	return r.savedAt
}

// recompute refreshes the derived cost fields from the row's current
// inputs. Excluded rows contribute zero everywhere but keep their input
// fields so re-inclusion restores the prior values.
func (r *Row) recompute(languageMultiplier decimal.Decimal) {
	r.PerPageRate = PerPageRate(r.BaseRate, languageMultiplier)
	if r.IsExcluded {
		r.TranslationCost = decimal.Zero
		r.CertificationCost = decimal.Zero
		r.LineTotal = decimal.Zero
		return
	}
	r.TranslationCost = TranslationCost(r.BillablePages, r.PerPageRate)
	r.CertificationCost = CertificationCost(r.DocumentCertifications)
	r.LineTotal = r.TranslationCost.Add(r.CertificationCost)
}

// Snapshot converts the row's current state into the persistable pricing
// snapshot fields. DocumentCertifications are only recorded when the
// operator has customized sub-documents individually; otherwise the
// row-level default is authoritative and the list is rebuilt on load.
func (r *Row) Snapshot(savedAt time.Time) domain.PricingSnapshot {
	snap := domain.PricingSnapshot{
		BillablePages:        r.BillablePages,
		Complexity:           r.Complexity,
		ComplexityMultiplier: r.ComplexityMultiplier,
		BaseRate:             r.BaseRate,
		CertificationTypeID:  uuid.NullUUID{UUID: r.CertificationTypeID, Valid: r.CertificationTypeID != uuid.Nil},
		IsExcluded:           r.IsExcluded,
		BillableOverridden:   r.BillablePagesOverridden,
		SavedAt:              &savedAt,
	}
	if r.HasPerDocCertOverrides {
		selections := make(domain.CertificationSelectionList, 0, len(r.DocumentCertifications))
		for _, dc := range r.DocumentCertifications {
			selections = append(selections, domain.CertificationSelection{
				Index:               dc.Index,
				CertificationTypeID: dc.CertificationTypeID,
				Price:               dc.Price,
			})
		}
		snap.DocumentCertifications = selections
	}
	return snap
}
