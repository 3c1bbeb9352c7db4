package port

import (
	"context"

	"github.com/google/uuid"

	"transquote/internal/domain"
)

// AnalyzeFileRef identifies one uploaded file handed to the OCR/AI service.
type AnalyzeFileRef struct {
	FileID      uuid.UUID `json:"file_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	DownloadURL string    `json:"download_url"`
}

// AnalyzedDocument is one OCR/AI output record, before it is adapted into
// the canonical domain.AnalysisResult at the store boundary.
type AnalyzedDocument struct {
	FileID         uuid.UUID              `json:"file_id"`
	FileName       string                 `json:"file_name"`
	WordCount      int                    `json:"word_count"`
	PageCount      int                    `json:"page_count"`
	DocumentType   string                 `json:"document_type"`
	Complexity     domain.Complexity      `json:"complexity"`
	DocumentCount  int                    `json:"document_count"`
	SubDocuments   domain.SubDocumentList `json:"sub_documents"`
	SourceLanguage string                 `json:"source_language"`
	Failed         bool                   `json:"failed"`
	ErrorMessage   string                 `json:"error_message"`
}

// JobState is the pollable status of an asynchronous analysis job.
type JobState struct {
	JobID          string             `json:"job_id"`
	Status         domain.BatchStatus `json:"status"`
	TotalFiles     int                `json:"total_files"`
	CompletedFiles int                `json:"completed_files"`
	FailedFiles    int                `json:"failed_files"`
}

// DocumentAnalyzer abstracts the external OCR text-extraction and AI
// classification pipeline. Submissions are idempotent to re-invoke: a
// re-analysis is simply a fresh submission of the same files.
type DocumentAnalyzer interface {
	// Submit starts an asynchronous analysis job for a set of files.
	Submit(ctx context.Context, batchID uuid.UUID, files []AnalyzeFileRef) (*JobState, error)
	// JobStatus polls a previously submitted job.
	JobStatus(ctx context.Context, jobID string) (*JobState, error)
	// Results fetches the per-document output of a terminal job.
	Results(ctx context.Context, jobID string) ([]AnalyzedDocument, error)
	// AnalyzeFile performs a synchronous single-shot analysis, returning
	// completed or failed output immediately without a job.
	AnalyzeFile(ctx context.Context, file AnalyzeFileRef) ([]AnalyzedDocument, error)
}
