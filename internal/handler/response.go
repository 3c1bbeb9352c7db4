package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transquote/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrBatchNotFound):
		return http.StatusNotFound, "BATCH_NOT_FOUND", "batch not found"
	case errors.Is(err, domain.ErrBatchFileNotFound):
		return http.StatusNotFound, "FILE_NOT_FOUND", "file not found in batch"
	case errors.Is(err, domain.ErrAnalysisResultNotFound):
		return http.StatusNotFound, "ANALYSIS_RESULT_NOT_FOUND", "analysis result not found"
	case errors.Is(err, domain.ErrCertTypeNotFound):
		return http.StatusBadRequest, "CERTIFICATION_TYPE_NOT_FOUND", "certification type not found"
	case errors.Is(err, domain.ErrSheetNotOpen):
		return http.StatusConflict, "SHEET_NOT_OPEN", "no open pricing sheet for this batch; open it first"
	case errors.Is(err, domain.ErrRowNotFound):
		return http.StatusNotFound, "ROW_NOT_FOUND", "pricing row not found on the sheet"
	case errors.Is(err, domain.ErrSubDocIndexOutOfRange):
		return http.StatusBadRequest, "SUBDOCUMENT_INDEX_OUT_OF_RANGE", "sub-document index out of range"
	case errors.Is(err, domain.ErrNotManualEntry):
		return http.StatusBadRequest, "NOT_MANUAL_ENTRY", "only manually added documents can be removed; exclude the row instead"
	case errors.Is(err, domain.ErrUnsavedChanges):
		return http.StatusConflict, "UNSAVED_CHANGES", "sheet has unsaved changes; save first or close with force=true"
	case errors.Is(err, domain.ErrStaleSheet):
		return http.StatusConflict, "STALE_SHEET", "sheet was built from an older pricing snapshot; reopen to get the latest"
	case errors.Is(err, domain.ErrNoFilesSelected):
		return http.StatusBadRequest, "NO_FILES_SELECTED", "no files selected for analysis"
	case errors.Is(err, domain.ErrNoAnalyzedFiles):
		return http.StatusBadRequest, "NO_ANALYZED_FILES", "batch has no previously analyzed files to re-analyze"
	case errors.Is(err, domain.ErrBatchAlreadyProcessing):
		return http.StatusConflict, "BATCH_ALREADY_PROCESSING", "batch already has an analysis job in progress"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png, tif"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrInvalidComplexity):
		return http.StatusBadRequest, "INVALID_COMPLEXITY", "invalid complexity tier; allowed: easy, medium, hard"
	case errors.Is(err, domain.ErrNegativeBillablePages):
		return http.StatusBadRequest, "NEGATIVE_BILLABLE_PAGES", "billable pages must be zero or greater"
	case errors.Is(err, domain.ErrNegativeBaseRate):
		return http.StatusBadRequest, "NEGATIVE_BASE_RATE", "base rate must be zero or greater"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}

// parseUUIDParam extracts and validates a UUID path parameter. Returns
// false if invalid (error response already written).
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
