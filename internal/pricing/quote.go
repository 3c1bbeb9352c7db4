package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteLine is one billable line handed to quote creation/update.
type QuoteLine struct {
	AnalysisID        uuid.UUID               `json:"analysis_id"`
	FileName          string                  `json:"file_name"`
	DocumentType      string                  `json:"document_type"`
	BillablePages     decimal.Decimal         `json:"billable_pages"`
	PerPageRate       decimal.Decimal         `json:"per_page_rate"`
	TranslationCost   decimal.Decimal         `json:"translation_cost"`
	CertificationCost decimal.Decimal         `json:"certification_cost"`
	LineTotal         decimal.Decimal         `json:"line_total"`
	Certifications    []DocumentCertification `json:"certifications"`
}

// QuotePayload is the finalized sheet content consumed by the external
// quote-creation/quote-update operations. Excluded rows are omitted.
type QuotePayload struct {
	BatchID               uuid.UUID       `json:"batch_id"`
	Lines                 []QuoteLine     `json:"lines"`
	TranslationSubtotal   decimal.Decimal `json:"translation_subtotal"`
	CertificationSubtotal decimal.Decimal `json:"certification_subtotal"`
	GrandTotal            decimal.Decimal `json:"grand_total"`
}

// BuildQuotePayload converts the sheet's non-excluded rows and totals into
// the quote emission payload.
func BuildQuotePayload(s *Sheet) QuotePayload {
	totals := s.Totals()
	payload := QuotePayload{
		BatchID:               s.BatchID,
		Lines:                 make([]QuoteLine, 0, s.Len()),
		TranslationSubtotal:   totals.TranslationSubtotal,
		CertificationSubtotal: totals.CertificationSubtotal,
		GrandTotal:            totals.GrandTotal,
	}
	for _, r := range s.Rows() {
		if r.IsExcluded {
			continue
		}
		payload.Lines = append(payload.Lines, QuoteLine{
			AnalysisID:        r.AnalysisID,
			FileName:          r.FileName,
			DocumentType:      r.DocumentType,
			BillablePages:     r.BillablePages,
			PerPageRate:       r.PerPageRate,
			TranslationCost:   r.TranslationCost,
			CertificationCost: r.CertificationCost,
			LineTotal:         r.LineTotal,
			Certifications:    append([]DocumentCertification(nil), r.DocumentCertifications...),
		})
	}
	return payload
}
