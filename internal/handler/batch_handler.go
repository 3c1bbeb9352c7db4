package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transquote/internal/service"
)

// BatchHandler handles batch and analysis job endpoints.
type BatchHandler struct {
	batchService service.BatchService
	fileService  service.FileService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchService service.BatchService, fileService service.FileService) *BatchHandler {
	return &BatchHandler{batchService: batchService, fileService: fileService}
}

// Create handles POST /api/v1/batches
func (h *BatchHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	batch, err := h.batchService.Create(c.Request.Context(), &service.CreateBatchInput{Name: req.Name})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, batch)
}

// List handles GET /api/v1/batches
func (h *BatchHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	batches, total, err := h.batchService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, batches, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/batches/:id
func (h *BatchHandler) GetByID(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.GetByID(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, batch)
}

// UploadFile handles POST /api/v1/batches/:id/files
func (h *BatchHandler) UploadFile(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	uploaded, err := h.fileService.Upload(c.Request.Context(), service.FileUploadInput{
		BatchID: batchID,
		File:    file,
		Header:  header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, uploaded)
}

// ListFiles handles GET /api/v1/batches/:id/files
func (h *BatchHandler) ListFiles(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	files, err := h.fileService.ListByBatch(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, files)
}

// GetFileURL handles GET /api/v1/batches/:id/files/:fileId/url
func (h *BatchHandler) GetFileURL(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(c, "fileId")
	if !ok {
		return
	}

	url, err := h.fileService.GetDownloadURL(c.Request.Context(), batchID, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// DeleteFile handles DELETE /api/v1/batches/:id/files/:fileId
func (h *BatchHandler) DeleteFile(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(c, "fileId")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), batchID, fileID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "file deleted"})
}

// Analyze handles POST /api/v1/batches/:id/analyze
func (h *BatchHandler) Analyze(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		FileIDs []uuid.UUID `json:"file_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file_ids is required")
		return
	}

	batch, err := h.batchService.Analyze(c.Request.Context(), batchID, req.FileIDs)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, batch)
}

// Reanalyze handles POST /api/v1/batches/:id/reanalyze
func (h *BatchHandler) Reanalyze(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.Reanalyze(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, batch)
}

// RefreshStatus handles POST /api/v1/batches/:id/refresh
func (h *BatchHandler) RefreshStatus(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.RefreshStatus(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, batch)
}
