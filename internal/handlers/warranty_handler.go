package handlers

import (
	"errors"
	"io"
	"net/http"

	"garage_finance/internal/models"
	"garage_finance/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type WarrantyHandler struct {
	warrantyService services.WarrantyService
	logger          logrus.FieldLogger
}

func NewWarrantyHandler(warrantyService services.WarrantyService, logger logrus.FieldLogger) *WarrantyHandler {
	return &WarrantyHandler{warrantyService: warrantyService, logger: logger}
}

func (h *WarrantyHandler) Generate(c *gin.Context) {
	id, ok := uintParam(c, "serviceOrderId")
	if !ok {
		return
	}

	var opts models.WarrantyGenerationOptions
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	warranty, err := h.warrantyService.Generate(c.Request.Context(), id, opts)
	if err != nil {
		respondError(c, h.logger, "Generate", err)
		return
	}
	respond(c, http.StatusOK, warranty)
}

func (h *WarrantyHandler) GetByServiceOrder(c *gin.Context) {
	id, ok := uintParam(c, "serviceOrderId")
	if !ok {
		return
	}
	warranty, err := h.warrantyService.GetByServiceOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "GetByServiceOrder", err)
		return
	}
	if warranty == nil {
		fail(c, http.StatusNotFound, "Warranty not found")
		return
	}
	respond(c, http.StatusOK, warranty)
}

func (h *WarrantyHandler) GetByCode(c *gin.Context) {
	warranty, err := h.warrantyService.GetByCode(c.Request.Context(), c.Param("warrantyCode"))
	if err != nil {
		respondError(c, h.logger, "GetByCode", err)
		return
	}
	if warranty == nil {
		fail(c, http.StatusNotFound, "Warranty not found")
		return
	}
	respond(c, http.StatusOK, warranty)
}

func (h *WarrantyHandler) Search(c *gin.Context) {
	var filter models.WarrantySearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, http.StatusBadRequest, "Invalid search filter")
		return
	}
	warranties, err := h.warrantyService.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, "Search", err)
		return
	}
	if warranties == nil {
		warranties = []models.Warranty{}
	}
	respond(c, http.StatusOK, warranties)
}

func (h *WarrantyHandler) CreateClaim(c *gin.Context) {
	id, ok := uintParam(c, "warrantyId")
	if !ok {
		return
	}
	var req models.ClaimCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	claim, err := h.warrantyService.CreateClaim(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, "CreateClaim", err)
		return
	}
	respond(c, http.StatusCreated, claim)
}

func (h *WarrantyHandler) UpdateClaimStatus(c *gin.Context) {
	id, ok := uintParam(c, "claimId")
	if !ok {
		return
	}
	var req models.ClaimStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	claim, err := h.warrantyService.UpdateClaimStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, "UpdateClaimStatus", err)
		return
	}
	if claim == nil {
		fail(c, http.StatusNotFound, "Warranty claim not found")
		return
	}
	respond(c, http.StatusOK, claim)
}
