package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrBatchNotFound           = errors.New("batch not found")
	ErrBatchFileNotFound       = errors.New("batch file not found")
	ErrAnalysisResultNotFound  = errors.New("analysis result not found")
	ErrCertTypeNotFound        = errors.New("certification type not found")
	ErrSheetNotOpen            = errors.New("no open pricing sheet for batch")
	ErrRowNotFound             = errors.New("pricing row not found in sheet")
	ErrSubDocIndexOutOfRange   = errors.New("sub-document index out of range")
	ErrNotManualEntry          = errors.New("only manually added documents can be removed")
	ErrUnsavedChanges          = errors.New("sheet has unsaved changes")
	ErrStaleSheet              = errors.New("sheet was built from an older pricing snapshot")
	ErrNoFilesSelected         = errors.New("no files selected for analysis")
	ErrNoAnalyzedFiles         = errors.New("batch has no previously analyzed files")
	ErrBatchAlreadyProcessing  = errors.New("batch already has an analysis job in progress")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed            = errors.New("file upload to storage failed")
	ErrInvalidComplexity       = errors.New("invalid complexity tier")
	ErrNegativeBillablePages   = errors.New("billable pages must be zero or greater")
	ErrNegativeBaseRate        = errors.New("base rate must be zero or greater")
)
