package domain

// Complexity is the AI-assessed translation difficulty tier of a document.
type Complexity string

const (
	ComplexityEasy   Complexity = "easy"
	ComplexityMedium Complexity = "medium"
	ComplexityHard   Complexity = "hard"
)

// ValidComplexities enumerates the accepted complexity tiers.
var ValidComplexities = map[Complexity]bool{
	ComplexityEasy:   true,
	ComplexityMedium: true,
	ComplexityHard:   true,
}

// ProcessingStatus represents the analysis lifecycle of a document.
type ProcessingStatus string

const (
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
	ProcessingManual    ProcessingStatus = "manual"
)

// EntryMethod records how an analysis result entered the system.
type EntryMethod string

const (
	EntryOCR      EntryMethod = "ocr"
	EntryManual   EntryMethod = "manual"
	EntryAIFailed EntryMethod = "ai_failed"
)

// BatchStatus represents the lifecycle of an analysis batch job.
type BatchStatus string

const (
	BatchQueued     BatchStatus = "queued"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchPartial    BatchStatus = "partial"
	BatchFailed     BatchStatus = "failed"
)

// Terminal reports whether the batch has reached a terminal state.
// Terminal batches are never polled again.
func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchPartial || s == BatchFailed
}

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
	FileTypeTIF FileType = "tif"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
	"image/tiff":      FileTypeTIF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"tif":  FileTypeTIF,
	"tiff": FileTypeTIF,
}
