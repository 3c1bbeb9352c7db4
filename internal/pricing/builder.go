package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"transquote/internal/domain"
)

// notarizationCode is the certification type preferred as the row default.
const notarizationCode = "notarization"

// Builder derives editable pricing rows from analysis results, reconciling
// AI defaults against previously persisted pricing snapshots. Building is
// idempotent: the same inputs always produce an identical sheet.
type Builder struct {
	settings  domain.Settings
	certTypes []domain.CertificationType
	byID      map[uuid.UUID]*domain.CertificationType
}

// NewBuilder creates a Builder for one reconciliation session. certTypes
// must be in display order; only active entries are considered for the
// default selection.
func NewBuilder(settings domain.Settings, certTypes []domain.CertificationType) *Builder {
	b := &Builder{
		settings:  settings,
		certTypes: certTypes,
		byID:      make(map[uuid.UUID]*domain.CertificationType, len(certTypes)),
	}
	for i := range certTypes {
		b.byID[certTypes[i].ID] = &certTypes[i]
	}
	return b
}

// Priceable reports whether an analysis result gets a row on the sheet.
// Failed rows are included: they carry no usable AI output but remain
// manually priceable.
func (b *Builder) Priceable(res *domain.AnalysisResult) bool {
	switch {
	case res.ProcessingStatus == domain.ProcessingCompleted,
		res.ProcessingStatus == domain.ProcessingManual,
		res.ProcessingStatus == domain.ProcessingFailed,
		res.EntryMethod == domain.EntryManual:
		return true
	}
	return false
}

// DefaultCertType returns the certification type used when nothing was
// persisted: the one coded "notarization" if active, else the first active
// type, else nil when no reference data is available.
func (b *Builder) DefaultCertType() *domain.CertificationType {
	for i := range b.certTypes {
		if b.certTypes[i].IsActive && b.certTypes[i].Code == notarizationCode {
			return &b.certTypes[i]
		}
	}
	for i := range b.certTypes {
		if b.certTypes[i].IsActive {
			return &b.certTypes[i]
		}
	}
	return nil
}

// CertType resolves a certification type by ID, or nil when unknown.
func (b *Builder) CertType(id uuid.UUID) *domain.CertificationType {
	return b.byID[id]
}

// Build derives the pricing row for one analysis result. A persisted
// snapshot seeds every field: previously saved human decisions always win
// over fresh AI output, even if the AI was re-run since. Without a
// snapshot, defaults are computed from the AI classification and settings.
func (b *Builder) Build(res *domain.AnalysisResult) Row {
	row := Row{
		AnalysisID:       res.ID,
		FileName:         res.FileName,
		DocumentType:     res.DocumentType,
		SourceLanguage:   res.SourceLanguage,
		ProcessingStatus: res.ProcessingStatus,
		EntryMethod:      res.EntryMethod,
		WordCount:        res.WordCount,
		PageCount:        res.PageCount,
		DocumentCount:    res.DocumentCount,
		savedAt:          res.PricingSnapshot.SavedAt,
	}
	if row.WordCount < 0 {
		row.WordCount = 0
	}
	if row.DocumentCount < 1 {
		row.DocumentCount = 1
	}

	if res.PricingSnapshot.Exists() {
		b.seedFromSnapshot(&row, res)
	} else {
		b.seedFromDefaults(&row, res)
	}

	row.recompute(b.settings.LanguageMultiplierFor(row.SourceLanguage))
	return row
}

func (b *Builder) seedFromDefaults(row *Row, res *domain.AnalysisResult) {
	row.Complexity = res.Complexity
	if !domain.ValidComplexities[row.Complexity] {
		row.Complexity = domain.ComplexityEasy
	}
	row.ComplexityMultiplier = b.settings.MultiplierFor(row.Complexity)
	row.BillablePages = BillablePages(row.WordCount, row.ComplexityMultiplier, b.settings.WordsPerPage, b.settings.MinBillablePages)
	if res.EntryMethod == domain.EntryManual {
		// Manually added documents carry no word count; they start at one
		// billable page, pinned so recomputes leave the operator's edits alone.
		row.BillablePages = decimal.NewFromInt(1)
		row.BillablePagesOverridden = true
	}
	row.BaseRate = b.settings.BaseRate

	if ct := b.DefaultCertType(); ct != nil {
		row.CertificationTypeID = ct.ID
		row.CertificationTypeName = ct.Name
		row.CertificationUnitPrice = ct.UnitPrice
	}

	row.DocumentCertifications = b.replicateRowDefault(row, res.SubDocuments)
	row.HasPerDocCertOverrides = false
}

func (b *Builder) seedFromSnapshot(row *Row, res *domain.AnalysisResult) {
	snap := &res.PricingSnapshot

	row.Complexity = snap.Complexity
	if !domain.ValidComplexities[row.Complexity] {
		row.Complexity = domain.ComplexityEasy
	}
	row.ComplexityMultiplier = snap.ComplexityMultiplier
	if row.ComplexityMultiplier.LessThanOrEqual(decimal.Zero) {
		row.ComplexityMultiplier = b.settings.MultiplierFor(row.Complexity)
	}

	row.BillablePages = snap.BillablePages
	if row.BillablePages.IsNegative() {
		row.BillablePages = decimal.Zero
	}
	row.BillablePagesOverridden = snap.BillableOverridden

	row.BaseRate = snap.BaseRate
	if row.BaseRate.IsNegative() {
		row.BaseRate = b.settings.BaseRate
	}
	row.BaseRateOverridden = !snap.BaseRate.Equal(b.settings.BaseRate)

	row.IsExcluded = snap.IsExcluded

	rowCert := b.DefaultCertType()
	if snap.CertificationTypeID.Valid {
		if ct := b.byID[snap.CertificationTypeID.UUID]; ct != nil {
			rowCert = ct
		}
	}
	if rowCert != nil {
		row.CertificationTypeID = rowCert.ID
		row.CertificationTypeName = rowCert.Name
		row.CertificationUnitPrice = rowCert.UnitPrice
	}

	row.DocumentCertifications = b.replicateRowDefault(row, res.SubDocuments)
	row.HasPerDocCertOverrides = snap.DocumentCertifications != nil

	// Rehydrate per-document overrides by index; entries the snapshot does
	// not cover keep the row default.
	for _, sel := range snap.DocumentCertifications {
		if sel.Index < 0 || sel.Index >= len(row.DocumentCertifications) {
			continue
		}
		ct := b.byID[sel.CertificationTypeID]
		if ct == nil {
			// Unknown certification id in an old snapshot: keep the row
			// default for this entry rather than failing the row.
			continue
		}
		row.DocumentCertifications[sel.Index].CertificationTypeID = ct.ID
		row.DocumentCertifications[sel.Index].CertificationTypeName = ct.Name
		row.DocumentCertifications[sel.Index].Price = sel.Price
		if sel.Price.IsNegative() {
			row.DocumentCertifications[sel.Index].Price = ct.UnitPrice
		}
	}
}

// replicateRowDefault builds documentCount certification entries carrying
// the row-level default, taking holder names from the AI sub-documents
// where available and defaulting to "Document {n}" otherwise.
func (b *Builder) replicateRowDefault(row *Row, subDocs domain.SubDocumentList) []DocumentCertification {
	certs := make([]DocumentCertification, row.DocumentCount)
	for i := range certs {
		holder := ""
		if i < len(subDocs) {
			holder = subDocs[i].HolderName
		}
		if holder == "" {
			holder = fmt.Sprintf("Document %d", i+1)
		}
		certs[i] = DocumentCertification{
			Index:                 i,
			CertificationTypeID:   row.CertificationTypeID,
			CertificationTypeName: row.CertificationTypeName,
			HolderName:            holder,
			Price:                 row.CertificationUnitPrice,
		}
	}
	return certs
}

// BuildSheet builds the working sheet for a batch from its analysis
// results, skipping rows that are not priceable.
func (b *Builder) BuildSheet(batchID uuid.UUID, results []domain.AnalysisResult) *Sheet {
	s := newSheet(batchID, b)
	for i := range results {
		if !b.Priceable(&results[i]) {
			continue
		}
		row := b.Build(&results[i])
		s.append(row)
	}
	return s
}
