package handler

import (
	"github.com/gin-gonic/gin"

	"transquote/internal/port"
	"transquote/internal/service"
)

// ReferenceHandler serves the read-only reference data the sheet UI needs:
// certification types and the effective billing settings.
type ReferenceHandler struct {
	certRepo port.CertificationTypeRepository
	settings service.SettingsService
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(certRepo port.CertificationTypeRepository, settings service.SettingsService) *ReferenceHandler {
	return &ReferenceHandler{certRepo: certRepo, settings: settings}
}

// ListCertificationTypes handles GET /api/v1/certification-types
func (h *ReferenceHandler) ListCertificationTypes(c *gin.Context) {
	types, err := h.certRepo.ListActive(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, types)
}

// GetSettings handles GET /api/v1/settings
func (h *ReferenceHandler) GetSettings(c *gin.Context) {
	RespondOK(c, h.settings.Current(c.Request.Context()))
}
