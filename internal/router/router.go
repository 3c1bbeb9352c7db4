package router

import (
	"github.com/gin-gonic/gin"

	"transquote/internal/handler"
	"transquote/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	batchH *handler.BatchHandler,
	sheetH *handler.SheetHandler,
	refH *handler.ReferenceHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Reference data
	v1.GET("/certification-types", refH.ListCertificationTypes)
	v1.GET("/settings", refH.GetSettings)

	// Batch lifecycle
	batches := v1.Group("/batches")
	batches.POST("", batchH.Create)
	batches.GET("", batchH.List)
	batches.GET("/:id", batchH.GetByID)
	batches.POST("/:id/analyze", batchH.Analyze)
	batches.POST("/:id/reanalyze", batchH.Reanalyze)
	batches.POST("/:id/refresh", batchH.RefreshStatus)

	// Batch files
	batches.POST("/:id/files", batchH.UploadFile)
	batches.GET("/:id/files", batchH.ListFiles)
	batches.GET("/:id/files/:fileId/url", batchH.GetFileURL)
	batches.DELETE("/:id/files/:fileId", batchH.DeleteFile)

	// Pricing sheet
	sheet := batches.Group("/:id/sheet")
	sheet.POST("", sheetH.Open)
	sheet.GET("", sheetH.Get)
	sheet.DELETE("", sheetH.Close)
	sheet.POST("/save", sheetH.Save)
	sheet.GET("/quote", sheetH.Quote)
	sheet.GET("/export/csv", sheetH.ExportCSV)
	sheet.GET("/export/xlsx", sheetH.ExportXLSX)

	rows := sheet.Group("/rows")
	rows.POST("", sheetH.AddManualDocument)
	rows.DELETE("/:analysisId", sheetH.DeleteManualDocument)
	rows.PATCH("/:analysisId/complexity", sheetH.EditComplexity)
	rows.PATCH("/:analysisId/billable-pages", sheetH.EditBillablePages)
	rows.PATCH("/:analysisId/base-rate", sheetH.EditBaseRate)
	rows.PATCH("/:analysisId/certification", sheetH.SetRowCertification)
	rows.PATCH("/:analysisId/documents/:index/certification", sheetH.SetDocumentCertification)
	rows.POST("/:analysisId/exclude", sheetH.ToggleExclude)

	return r
}
