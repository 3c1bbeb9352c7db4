package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transquote/internal/domain"
)

func testSheet(t *testing.T) (*Sheet, Row) {
	t.Helper()
	b := testBuilder()
	res := ocrResult()
	sheet := b.BuildSheet(uuid.New(), []domain.AnalysisResult{*res})
	row, err := sheet.Row(res.ID)
	require.NoError(t, err)
	return sheet, row
}

func TestSheet_EditComplexityRecomputesPages(t *testing.T) {
	sheet, row := testSheet(t)

	require.NoError(t, sheet.EditComplexity(row.AnalysisID, domain.ComplexityHard))

	got, err := sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplexityHard, got.Complexity)
	// 450 * 1.25 / 225 = 2.5
	assert.True(t, d("2.5").Equal(got.BillablePages), "got %s", got.BillablePages)
	assert.True(t, sheet.HasUnsavedChanges())
}

func TestSheet_EditComplexityKeepsManualPageOverride(t *testing.T) {
	sheet, row := testSheet(t)

	require.NoError(t, sheet.EditBillablePages(row.AnalysisID, d("7.0")))
	require.NoError(t, sheet.EditComplexity(row.AnalysisID, domain.ComplexityHard))

	got, err := sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	assert.True(t, d("7.0").Equal(got.BillablePages), "manual pages survive complexity changes")
	assert.True(t, d("1.25").Equal(got.ComplexityMultiplier))
	// 7 * 65
	assert.True(t, d("455").Equal(got.TranslationCost), "got %s", got.TranslationCost)
}

func TestSheet_EditComplexityRejectsUnknownTier(t *testing.T) {
	sheet, row := testSheet(t)
	err := sheet.EditComplexity(row.AnalysisID, domain.Complexity("extreme"))
	assert.ErrorIs(t, err, domain.ErrInvalidComplexity)
	assert.False(t, sheet.HasUnsavedChanges())
}

func TestSheet_EditBillablePagesRejectsNegative(t *testing.T) {
	sheet, row := testSheet(t)
	err := sheet.EditBillablePages(row.AnalysisID, d("-1"))
	assert.ErrorIs(t, err, domain.ErrNegativeBillablePages)
}

func TestSheet_EditBaseRate(t *testing.T) {
	sheet, row := testSheet(t)

	require.NoError(t, sheet.EditBaseRate(row.AnalysisID, d("80")))

	got, err := sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	assert.True(t, got.BaseRateOverridden)
	assert.True(t, d("80").Equal(got.PerPageRate), "got %s", got.PerPageRate)

	assert.ErrorIs(t, sheet.EditBaseRate(row.AnalysisID, d("-5")), domain.ErrNegativeBaseRate)
}

func TestSheet_SetRowCertificationPropagates(t *testing.T) {
	sheet, row := testSheet(t)

	require.NoError(t, sheet.SetRowCertification(row.AnalysisID, swornID))

	got, err := sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, swornID, got.CertificationTypeID)
	for _, dc := range got.DocumentCertifications {
		assert.Equal(t, swornID, dc.CertificationTypeID)
		assert.True(t, d("50").Equal(dc.Price))
	}
	// 2 documents * $50
	assert.True(t, d("100").Equal(got.CertificationCost), "got %s", got.CertificationCost)
}

func TestSheet_RowCertificationDoesNotClobberPerDocOverrides(t *testing.T) {
	sheet, row := testSheet(t)

	require.NoError(t, sheet.SetDocumentCertification(row.AnalysisID, 1, apostilleID))
	require.NoError(t, sheet.SetRowCertification(row.AnalysisID, swornID))

	got, err := sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, swornID, got.CertificationTypeID)
	// Curated entries stay as the operator set them
	assert.Equal(t, notarizationID, got.DocumentCertifications[0].CertificationTypeID)
	assert.Equal(t, apostilleID, got.DocumentCertifications[1].CertificationTypeID)
	// $30 + $75
	assert.True(t, d("105").Equal(got.CertificationCost), "got %s", got.CertificationCost)
}

func TestSheet_SetDocumentCertificationValidations(t *testing.T) {
	sheet, row := testSheet(t)

	assert.ErrorIs(t, sheet.SetDocumentCertification(row.AnalysisID, 5, swornID), domain.ErrSubDocIndexOutOfRange)
	assert.ErrorIs(t, sheet.SetDocumentCertification(row.AnalysisID, 0, uuid.New()), domain.ErrCertTypeNotFound)
	assert.ErrorIs(t, sheet.SetDocumentCertification(uuid.New(), 0, swornID), domain.ErrRowNotFound)

	// A failed edit never marks the sheet dirty
	assert.False(t, sheet.HasUnsavedChanges())
}

func TestSheet_ToggleExcludeZeroesAndRestores(t *testing.T) {
	sheet, row := testSheet(t)

	require.NoError(t, sheet.ToggleExclude(row.AnalysisID))
	got, err := sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	assert.True(t, got.IsExcluded)
	assert.True(t, got.LineTotal.IsZero())

	totals := sheet.Totals()
	assert.True(t, totals.GrandTotal.IsZero())

	require.NoError(t, sheet.ToggleExclude(row.AnalysisID))
	got, err = sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	assert.False(t, got.IsExcluded)
	assert.True(t, row.LineTotal.Equal(got.LineTotal), "prior value restored")
}

func TestSheet_TotalsSumNonExcludedRows(t *testing.T) {
	b := testBuilder()
	first := ocrResult()
	second := ocrResult()
	second.ID = uuid.New()
	sheet := b.BuildSheet(uuid.New(), []domain.AnalysisResult{*first, *second})

	totals := sheet.Totals()
	// Two identical rows: 2 * 149.50 and 2 * 60
	assert.True(t, d("299").Equal(totals.TranslationSubtotal), "got %s", totals.TranslationSubtotal)
	assert.True(t, d("120").Equal(totals.CertificationSubtotal), "got %s", totals.CertificationSubtotal)
	assert.True(t, d("419").Equal(totals.GrandTotal), "got %s", totals.GrandTotal)

	require.NoError(t, sheet.ToggleExclude(second.ID))
	totals = sheet.Totals()
	assert.True(t, d("209.5").Equal(totals.GrandTotal), "got %s", totals.GrandTotal)
}

func TestSheet_AddAndRemoveManualRow(t *testing.T) {
	sheet, _ := testSheet(t)

	manual := &domain.AnalysisResult{
		ID:               uuid.New(),
		FileName:         "Manual document 2",
		DocumentCount:    1,
		ProcessingStatus: domain.ProcessingManual,
		EntryMethod:      domain.EntryManual,
	}
	row, err := sheet.AddRow(manual)
	require.NoError(t, err)
	assert.Equal(t, 2, sheet.Len())
	assert.True(t, d("1").Equal(row.BillablePages))

	require.NoError(t, sheet.RemoveRow(manual.ID))
	assert.Equal(t, 1, sheet.Len())
	_, err = sheet.Row(manual.ID)
	assert.ErrorIs(t, err, domain.ErrRowNotFound)
}

func TestSheet_RemoveRowRejectsPipelineRows(t *testing.T) {
	sheet, row := testSheet(t)
	assert.ErrorIs(t, sheet.RemoveRow(row.AnalysisID), domain.ErrNotManualEntry)
	assert.Equal(t, 1, sheet.Len())
}

func TestSheet_MarkRowSavedAndClearUnsaved(t *testing.T) {
	sheet, row := testSheet(t)

	require.NoError(t, sheet.EditBaseRate(row.AnalysisID, d("80")))
	require.True(t, sheet.HasUnsavedChanges())

	got, err := sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	snap := got.Snapshot(time.Now().UTC())
	sheet.MarkRowSaved(row.AnalysisID, snap)
	sheet.ClearUnsaved()

	assert.False(t, sheet.HasUnsavedChanges())
	got, err = sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, snap.SavedAt, got.LoadedSavedAt())
}

func TestRow_SnapshotRecordsOverridesOnlyWhenCurated(t *testing.T) {
	sheet, row := testSheet(t)

	got, err := sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	snap := got.Snapshot(time.Now().UTC())
	assert.Nil(t, snap.DocumentCertifications, "no per-document overrides saved for uniform rows")

	require.NoError(t, sheet.SetDocumentCertification(row.AnalysisID, 0, apostilleID))
	got, err = sheet.Row(row.AnalysisID)
	require.NoError(t, err)
	snap = got.Snapshot(time.Now().UTC())
	require.Len(t, snap.DocumentCertifications, 2)
	assert.Equal(t, apostilleID, snap.DocumentCertifications[0].CertificationTypeID)
}
