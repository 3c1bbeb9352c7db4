package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Batch represents a set of uploaded files processed together through OCR/AI.
type Batch struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	Name           string      `db:"name" json:"name"`
	Status         BatchStatus `db:"status" json:"status"`
	JobID          string      `db:"job_id" json:"job_id"`
	TotalFiles     int         `db:"total_files" json:"total_files"`
	CompletedFiles int         `db:"completed_files" json:"completed_files"`
	FailedFiles    int         `db:"failed_files" json:"failed_files"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// BatchFile stores metadata about a scanned file uploaded into a batch.
type BatchFile struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BatchID     uuid.UUID `db:"batch_id" json:"batch_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	FileType    FileType  `db:"file_type" json:"file_type"`
	FileSize    int64     `db:"file_size" json:"file_size"`
	S3Bucket    string    `db:"s3_bucket" json:"-"`
	S3Key       string    `db:"s3_key" json:"-"`
	ContentType string    `db:"content_type" json:"content_type"`
	Analyzed    bool      `db:"analyzed" json:"analyzed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SubDocument is one logical document detected by AI analysis within a
// single uploaded file, e.g. multiple certificates in one scan.
type SubDocument struct {
	Type       string `json:"type"`
	HolderName string `json:"holder_name"`
	PageRange  string `json:"page_range"`
	Language   string `json:"language"`
}

// SubDocumentList is a JSONB-backed ordered sequence of sub-documents.
type SubDocumentList []SubDocument

// Value implements driver.Valuer for JSONB storage.
func (l SubDocumentList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage.
func (l *SubDocumentList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("SubDocumentList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, l)
}

// CertificationSelection records the certification chosen for one
// sub-document within a persisted pricing snapshot.
type CertificationSelection struct {
	Index               int             `json:"index"`
	CertificationTypeID uuid.UUID       `json:"certification_type_id"`
	Price               decimal.Decimal `json:"price"`
}

// CertificationSelectionList is a JSONB-backed set of per-sub-document
// certification overrides. A nil list means the row was saved without
// per-document overrides.
type CertificationSelectionList []CertificationSelection

// Value implements driver.Valuer for JSONB storage.
func (l CertificationSelectionList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage.
func (l *CertificationSelectionList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("CertificationSelectionList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, l)
}

// PricingSnapshot holds the persisted, human-finalized pricing decision for
// a document. It is embedded in AnalysisResult as pricing_* columns and is
// present iff SavedAt is non-nil. Snapshot values always win over fresh AI
// defaults when a sheet is rebuilt.
type PricingSnapshot struct {
	BillablePages          decimal.Decimal            `db:"pricing_billable_pages" json:"billable_pages"`
	Complexity             Complexity                 `db:"pricing_complexity" json:"complexity"`
	ComplexityMultiplier   decimal.Decimal            `db:"pricing_complexity_multiplier" json:"complexity_multiplier"`
	BaseRate               decimal.Decimal            `db:"pricing_base_rate" json:"base_rate"`
	CertificationTypeID    uuid.NullUUID              `db:"pricing_certification_type_id" json:"certification_type_id"`
	IsExcluded             bool                       `db:"pricing_is_excluded" json:"is_excluded"`
	BillableOverridden     bool                       `db:"pricing_billable_overridden" json:"billable_overridden"`
	DocumentCertifications CertificationSelectionList `db:"pricing_document_certifications" json:"document_certifications"`
	SavedAt                *time.Time                 `db:"pricing_saved_at" json:"saved_at"`
}

// Exists reports whether a pricing decision has been persisted.
func (s *PricingSnapshot) Exists() bool {
	return s.SavedAt != nil
}

// AnalysisResult is the canonical per-document analysis record: one per
// uploaded file, or per AI-detected sub-document grouping within a file.
// Any external-format adaptation happens at the record-store boundary; the
// reconciliation engine only ever sees this struct.
type AnalysisResult struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	BatchID          uuid.UUID        `db:"batch_id" json:"batch_id"`
	FileID           uuid.NullUUID    `db:"file_id" json:"file_id"`
	FileName         string           `db:"file_name" json:"file_name"`
	WordCount        int              `db:"word_count" json:"word_count"`
	PageCount        int              `db:"page_count" json:"page_count"`
	DocumentType     string           `db:"document_type" json:"document_type"`
	Complexity       Complexity       `db:"complexity" json:"complexity"`
	DocumentCount    int              `db:"document_count" json:"document_count"`
	SubDocuments     SubDocumentList  `db:"sub_documents" json:"sub_documents"`
	SourceLanguage   string           `db:"source_language" json:"source_language"`
	ProcessingStatus ProcessingStatus `db:"processing_status" json:"processing_status"`
	EntryMethod      EntryMethod      `db:"entry_method" json:"entry_method"`
	ErrorMessage     string           `db:"error_message" json:"error_message"`

	// Embedded so sqlx maps the flat pricing_* columns directly.
	PricingSnapshot `json:"pricing"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CertificationType is externally owned reference data describing an
// optional notarization/authentication service priced per document.
type CertificationType struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Code      string          `db:"code" json:"code"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	IsActive  bool            `db:"is_active" json:"is_active"`
	SortOrder int             `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Setting is a single key/value billing constant.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
