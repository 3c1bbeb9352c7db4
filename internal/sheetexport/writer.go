package sheetexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"transquote/internal/pricing"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the export header row.
var columns = []string{
	"File Name",
	"Document Type",
	"Source Language",
	"Processing Status",
	"Entry Method",
	"Word Count",
	"Page Count",
	"Billable Pages",
	"Complexity",
	"Complexity Multiplier",
	"Base Rate",
	"Per-Page Rate",
	"Document Count",
	"Certification Type",
	"Translation Cost",
	"Certification Cost",
	"Line Total",
	"Excluded",
}

// Writer wraps csv.Writer for exporting a pricing sheet as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRows converts the sheet rows to CSV rows and writes them.
func (w *Writer) WriteRows(rows []pricing.Row) error {
	for i := range rows {
		if err := w.csv.Write(rowToRecord(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// WriteTotals appends the subtotal and grand-total rows after the data.
func (w *Writer) WriteTotals(totals pricing.Totals) error {
	for _, line := range totalLines(totals) {
		record := make([]string, len(columns))
		record[0] = line.label
		record[len(columns)-2] = formatMoney(line.value)
		if err := w.csv.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

type totalLine struct {
	label string
	value decimal.Decimal
}

func totalLines(t pricing.Totals) []totalLine {
	return []totalLine{
		{"Translation Subtotal", t.TranslationSubtotal},
		{"Certification Subtotal", t.CertificationSubtotal},
		{"Grand Total", t.GrandTotal},
	}
}

// rowToRecord converts a single sheet row to a string slice matching the
// header columns.
func rowToRecord(r *pricing.Row) []string {
	record := make([]string, len(columns))
	record[0] = r.FileName
	record[1] = r.DocumentType
	record[2] = r.SourceLanguage
	record[3] = string(r.ProcessingStatus)
	record[4] = string(r.EntryMethod)
	record[5] = strconv.Itoa(r.WordCount)
	record[6] = strconv.Itoa(r.PageCount)
	record[7] = r.BillablePages.StringFixed(1)
	record[8] = string(r.Complexity)
	record[9] = r.ComplexityMultiplier.String()
	record[10] = formatMoney(r.BaseRate)
	record[11] = formatMoney(r.PerPageRate)
	record[12] = strconv.Itoa(r.DocumentCount)
	record[13] = r.CertificationTypeName
	record[14] = formatMoney(r.TranslationCost)
	record[15] = formatMoney(r.CertificationCost)
	record[16] = formatMoney(r.LineTotal)
	record[17] = formatBool(r.IsExcluded)
	return record
}

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a batch name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_batch_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(batchName, ext string) string {
	sanitized := SanitizeFilename(batchName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
