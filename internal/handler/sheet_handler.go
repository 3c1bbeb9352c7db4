package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"transquote/internal/domain"
	"transquote/internal/service"
	"transquote/internal/sheetexport"
)

// SheetHandler handles the pricing sheet endpoints for a batch.
type SheetHandler struct {
	sheetService service.SheetService
	batchService service.BatchService
}

// NewSheetHandler creates a new SheetHandler.
func NewSheetHandler(sheetService service.SheetService, batchService service.BatchService) *SheetHandler {
	return &SheetHandler{sheetService: sheetService, batchService: batchService}
}

// Open handles POST /api/v1/batches/:id/sheet
func (h *SheetHandler) Open(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.sheetService.Open(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// Get handles GET /api/v1/batches/:id/sheet
func (h *SheetHandler) Get(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.sheetService.Get(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// Close handles DELETE /api/v1/batches/:id/sheet
func (h *SheetHandler) Close(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err := h.sheetService.Close(batchID, force); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "sheet closed"})
}

// Save handles POST /api/v1/batches/:id/sheet/save
func (h *SheetHandler) Save(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	report, err := h.sheetService.Save(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	if len(report.Failed) > 0 {
		c.JSON(http.StatusMultiStatus, APIResponse{Success: false, Data: report})
		return
	}
	RespondOK(c, report)
}

// EditComplexity handles PATCH /api/v1/batches/:id/sheet/rows/:analysisId/complexity
func (h *SheetHandler) EditComplexity(c *gin.Context) {
	batchID, analysisID, ok := h.rowParams(c)
	if !ok {
		return
	}

	var req struct {
		Complexity string `json:"complexity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "complexity is required")
		return
	}

	view, err := h.sheetService.EditComplexity(c.Request.Context(), batchID, analysisID, domain.Complexity(req.Complexity))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// EditBillablePages handles PATCH /api/v1/batches/:id/sheet/rows/:analysisId/billable-pages
func (h *SheetHandler) EditBillablePages(c *gin.Context) {
	batchID, analysisID, ok := h.rowParams(c)
	if !ok {
		return
	}

	var req struct {
		BillablePages decimal.Decimal `json:"billable_pages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "billable_pages must be a number")
		return
	}

	view, err := h.sheetService.EditBillablePages(c.Request.Context(), batchID, analysisID, req.BillablePages)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// EditBaseRate handles PATCH /api/v1/batches/:id/sheet/rows/:analysisId/base-rate
func (h *SheetHandler) EditBaseRate(c *gin.Context) {
	batchID, analysisID, ok := h.rowParams(c)
	if !ok {
		return
	}

	var req struct {
		BaseRate decimal.Decimal `json:"base_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "base_rate must be a number")
		return
	}

	view, err := h.sheetService.EditBaseRate(c.Request.Context(), batchID, analysisID, req.BaseRate)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// SetRowCertification handles PATCH /api/v1/batches/:id/sheet/rows/:analysisId/certification
func (h *SheetHandler) SetRowCertification(c *gin.Context) {
	batchID, analysisID, ok := h.rowParams(c)
	if !ok {
		return
	}

	var req struct {
		CertificationTypeID uuid.UUID `json:"certification_type_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "certification_type_id is required")
		return
	}

	view, err := h.sheetService.SetRowCertification(c.Request.Context(), batchID, analysisID, req.CertificationTypeID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// SetDocumentCertification handles PATCH /api/v1/batches/:id/sheet/rows/:analysisId/documents/:index/certification
func (h *SheetHandler) SetDocumentCertification(c *gin.Context) {
	batchID, analysisID, ok := h.rowParams(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid index parameter")
		return
	}

	var req struct {
		CertificationTypeID uuid.UUID `json:"certification_type_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "certification_type_id is required")
		return
	}

	view, err := h.sheetService.SetDocumentCertification(c.Request.Context(), batchID, analysisID, index, req.CertificationTypeID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// ToggleExclude handles POST /api/v1/batches/:id/sheet/rows/:analysisId/exclude
func (h *SheetHandler) ToggleExclude(c *gin.Context) {
	batchID, analysisID, ok := h.rowParams(c)
	if !ok {
		return
	}

	view, err := h.sheetService.ToggleExclude(c.Request.Context(), batchID, analysisID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// AddManualDocument handles POST /api/v1/batches/:id/sheet/rows
func (h *SheetHandler) AddManualDocument(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		FileName       string `json:"file_name"`
		DocumentType   string `json:"document_type"`
		SourceLanguage string `json:"source_language"`
		DocumentCount  int    `json:"document_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	view, err := h.sheetService.AddManualDocument(c.Request.Context(), batchID, &service.AddManualDocumentInput{
		FileName:       req.FileName,
		DocumentType:   req.DocumentType,
		SourceLanguage: req.SourceLanguage,
		DocumentCount:  req.DocumentCount,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, view)
}

// DeleteManualDocument handles DELETE /api/v1/batches/:id/sheet/rows/:analysisId
func (h *SheetHandler) DeleteManualDocument(c *gin.Context) {
	batchID, analysisID, ok := h.rowParams(c)
	if !ok {
		return
	}

	view, err := h.sheetService.DeleteManualDocument(c.Request.Context(), batchID, analysisID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// Quote handles GET /api/v1/batches/:id/sheet/quote
func (h *SheetHandler) Quote(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payload, err := h.sheetService.QuotePayload(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, payload)
}

// ExportCSV handles GET /api/v1/batches/:id/sheet/export/csv
func (h *SheetHandler) ExportCSV(c *gin.Context) {
	batchID, view, ok := h.exportView(c)
	if !ok {
		return
	}

	batch, err := h.batchService.GetByID(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	buf.Write(sheetexport.BOM)
	w := sheetexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteRows(view.Rows); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteTotals(view.Totals); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}

	filename := sheetexport.BuildFilename(batch.Name, "csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/batches/:id/sheet/export/xlsx
func (h *SheetHandler) ExportXLSX(c *gin.Context) {
	batchID, view, ok := h.exportView(c)
	if !ok {
		return
	}

	batch, err := h.batchService.GetByID(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := sheetexport.WriteXLSX(&buf, view.Rows, view.Totals); err != nil {
		HandleError(c, err)
		return
	}

	filename := sheetexport.BuildFilename(batch.Name, "xlsx")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *SheetHandler) rowParams(c *gin.Context) (batchID, analysisID uuid.UUID, ok bool) {
	batchID, ok = parseUUIDParam(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	analysisID, ok = parseUUIDParam(c, "analysisId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return batchID, analysisID, true
}

func (h *SheetHandler) exportView(c *gin.Context) (uuid.UUID, *service.SheetView, bool) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return uuid.Nil, nil, false
	}
	view, err := h.sheetService.Get(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return uuid.Nil, nil, false
	}
	return batchID, view, true
}
