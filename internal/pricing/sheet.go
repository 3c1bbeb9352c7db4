package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"transquote/internal/domain"
)

// Totals are the sheet-level roll-ups over non-excluded rows.
type Totals struct {
	TranslationSubtotal   decimal.Decimal `json:"translation_subtotal"`
	CertificationSubtotal decimal.Decimal `json:"certification_subtotal"`
	GrandTotal            decimal.Decimal `json:"grand_total"`
}

// Sheet is the working pricing sheet for one batch: an ordered mapping of
// analysisId to Row. Every edit operation recomputes the affected row's
// dependent costs before the mutation becomes observable, and flips the
// sheet-level unsaved flag. Exactly one sheet is active per batch.
type Sheet struct {
	BatchID uuid.UUID

	builder *Builder
	rows    map[uuid.UUID]*Row
	order   []uuid.UUID
	unsaved bool
}

func newSheet(batchID uuid.UUID, builder *Builder) *Sheet {
	return &Sheet{
		BatchID: batchID,
		builder: builder,
		rows:    make(map[uuid.UUID]*Row),
	}
}

func (s *Sheet) append(row Row) {
	r := row
	s.rows[r.AnalysisID] = &r
	s.order = append(s.order, r.AnalysisID)
}

// Settings returns the billing constants the sheet was built with.
func (s *Sheet) Settings() domain.Settings {
	return s.builder.settings
}

// Row returns a copy of the row for the given analysis id.
func (s *Sheet) Row(analysisID uuid.UUID) (Row, error) {
	r, ok := s.rows[analysisID]
	if !ok {
		return Row{}, domain.ErrRowNotFound
	}
	return *r, nil
}

// Rows returns copies of all rows in sheet order.
func (s *Sheet) Rows() []Row {
	out := make([]Row, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.rows[id])
	}
	return out
}

// Len returns the number of rows on the sheet.
func (s *Sheet) Len() int {
	return len(s.order)
}

// HasUnsavedChanges reports whether any edit happened since the last save.
func (s *Sheet) HasUnsavedChanges() bool {
	return s.unsaved
}

// MarkRowSaved stamps a single row with the snapshot timestamp it was
// just persisted under, so a later save checks staleness against the new
// value.
func (s *Sheet) MarkRowSaved(analysisID uuid.UUID, snap domain.PricingSnapshot) {
	if r, ok := s.rows[analysisID]; ok {
		r.savedAt = snap.SavedAt
	}
}

// ClearUnsaved clears the dirty flag after a fully successful save. After
// a partial save the sheet stays dirty so the operator can retry the rows
// that failed.
func (s *Sheet) ClearUnsaved() {
	s.unsaved = false
}

// Totals computes the translation/certification subtotals and grand total.
// Excluded rows contribute zero.
func (s *Sheet) Totals() Totals {
	t := Totals{
		TranslationSubtotal:   decimal.Zero,
		CertificationSubtotal: decimal.Zero,
		GrandTotal:            decimal.Zero,
	}
	for _, id := range s.order {
		r := s.rows[id]
		if r.IsExcluded {
			continue
		}
		t.TranslationSubtotal = t.TranslationSubtotal.Add(r.TranslationCost)
		t.CertificationSubtotal = t.CertificationSubtotal.Add(r.CertificationCost)
	}
	t.GrandTotal = t.TranslationSubtotal.Add(t.CertificationSubtotal)
	return t
}

func (s *Sheet) mutate(analysisID uuid.UUID, fn func(r *Row) error) error {
	r, ok := s.rows[analysisID]
	if !ok {
		return domain.ErrRowNotFound
	}
	// Work on a copy so a failed edit never leaves a half-updated row.
	work := *r
	work.DocumentCertifications = append([]DocumentCertification(nil), r.DocumentCertifications...)
	if err := fn(&work); err != nil {
		return err
	}
	work.recompute(s.builder.settings.LanguageMultiplierFor(work.SourceLanguage))
	*r = work
	s.unsaved = true
	return nil
}

// EditComplexity changes the row's complexity tier. Billable pages are
// recomputed from the new multiplier unless the operator already entered a
// manual page count; an explicit override is never silently clobbered.
func (s *Sheet) EditComplexity(analysisID uuid.UUID, complexity domain.Complexity) error {
	if !domain.ValidComplexities[complexity] {
		return domain.ErrInvalidComplexity
	}
	return s.mutate(analysisID, func(r *Row) error {
		r.Complexity = complexity
		r.ComplexityMultiplier = s.builder.settings.MultiplierFor(complexity)
		if !r.BillablePagesOverridden {
			r.BillablePages = BillablePages(r.WordCount, r.ComplexityMultiplier, s.builder.settings.WordsPerPage, s.builder.settings.MinBillablePages)
		}
		return nil
	})
}

// EditBillablePages sets a manual page count and marks the row overridden
// for the rest of the sheet session.
func (s *Sheet) EditBillablePages(analysisID uuid.UUID, pages decimal.Decimal) error {
	if pages.IsNegative() {
		return domain.ErrNegativeBillablePages
	}
	return s.mutate(analysisID, func(r *Row) error {
		r.BillablePages = pages
		r.BillablePagesOverridden = true
		return nil
	})
}

// EditBaseRate sets a manual base rate and marks the row overridden.
func (s *Sheet) EditBaseRate(analysisID uuid.UUID, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return domain.ErrNegativeBaseRate
	}
	return s.mutate(analysisID, func(r *Row) error {
		r.BaseRate = rate
		r.BaseRateOverridden = true
		return nil
	})
}

// SetRowCertification changes the row-level default certification type.
// Without per-document overrides the new type and price propagate to every
// sub-document; with overrides, individually curated choices are left
// untouched; bulk changes never erase an operator's per-document work.
func (s *Sheet) SetRowCertification(analysisID uuid.UUID, certTypeID uuid.UUID) error {
	ct := s.builder.CertType(certTypeID)
	if ct == nil {
		return domain.ErrCertTypeNotFound
	}
	return s.mutate(analysisID, func(r *Row) error {
		r.CertificationTypeID = ct.ID
		r.CertificationTypeName = ct.Name
		r.CertificationUnitPrice = ct.UnitPrice
		if !r.HasPerDocCertOverrides {
			for i := range r.DocumentCertifications {
				r.DocumentCertifications[i].CertificationTypeID = ct.ID
				r.DocumentCertifications[i].CertificationTypeName = ct.Name
				r.DocumentCertifications[i].Price = ct.UnitPrice
			}
		}
		return nil
	})
}

// SetDocumentCertification changes one sub-document's certification and
// marks the row as manually curated for the rest of the session.
func (s *Sheet) SetDocumentCertification(analysisID uuid.UUID, index int, certTypeID uuid.UUID) error {
	ct := s.builder.CertType(certTypeID)
	if ct == nil {
		return domain.ErrCertTypeNotFound
	}
	return s.mutate(analysisID, func(r *Row) error {
		if index < 0 || index >= len(r.DocumentCertifications) {
			return domain.ErrSubDocIndexOutOfRange
		}
		r.DocumentCertifications[index].CertificationTypeID = ct.ID
		r.DocumentCertifications[index].CertificationTypeName = ct.Name
		r.DocumentCertifications[index].Price = ct.UnitPrice
		r.HasPerDocCertOverrides = true
		return nil
	})
}

// ToggleExclude flips the row's exclusion. Excluded rows contribute zero
// to all totals but stay visible and re-includable with their prior
// values intact.
func (s *Sheet) ToggleExclude(analysisID uuid.UUID) error {
	return s.mutate(analysisID, func(r *Row) error {
		r.IsExcluded = !r.IsExcluded
		return nil
	})
}

// AddRow appends a freshly built row for a newly created analysis result
// (manual document insertion). The row is built with the same
// reconciliation rules as the initial load.
func (s *Sheet) AddRow(res *domain.AnalysisResult) (Row, error) {
	if _, exists := s.rows[res.ID]; exists {
		return Row{}, domain.ErrRowNotFound
	}
	row := s.builder.Build(res)
	s.append(row)
	s.unsaved = true
	return row, nil
}

// RemoveRow deletes a manually added row from the sheet. Rows that came
// from the OCR/AI pipeline cannot be removed, only excluded.
func (s *Sheet) RemoveRow(analysisID uuid.UUID) error {
	r, ok := s.rows[analysisID]
	if !ok {
		return domain.ErrRowNotFound
	}
	if r.EntryMethod != domain.EntryManual {
		return domain.ErrNotManualEntry
	}
	delete(s.rows, analysisID)
	for i, id := range s.order {
		if id == analysisID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.unsaved = true
	return nil
}
