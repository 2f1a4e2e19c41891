package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"coolstore/internal/domain/cooling"
	"coolstore/internal/infrastructure/http/v1/dto"
)

// SampleHandler exposes the sample inventory.
type SampleHandler struct {
	BaseHandler
	repo cooling.Repository
}

// NewSampleHandler creates a new sample handler.
func NewSampleHandler(repo cooling.Repository) *SampleHandler {
	return &SampleHandler{repo: repo}
}

// ListSampleKinds handles GET /sample-kinds
func (h *SampleHandler) ListSampleKinds(c *gin.Context) {
	kinds, err := h.repo.ListSampleKinds(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(kinds))
}

// GetSample handles GET /samples/:id
func (h *SampleHandler) GetSample(c *gin.Context) {
	sampleID, ok := h.ParseIntParam(c, "id")
	if !ok {
		return
	}

	sample, err := h.repo.FindSampleByID(c.Request.Context(), sampleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSample(sample))
}

// CreateSample handles POST /samples
func (h *SampleHandler) CreateSample(c *gin.Context) {
	var req dto.CreateSampleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.repo.CreateSample(c.Request.Context(), *req.SampleID, *req.SampleKindID); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, strconv.Itoa(*req.SampleID))
}

// ClearTray handles DELETE /trays/:id/samples
func (h *SampleHandler) ClearTray(c *gin.Context) {
	trayID, ok := h.ParseIntParam(c, "id")
	if !ok {
		return
	}

	result, err := h.repo.ClearTray(c.Request.Context(), trayID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromClearTrayResult(result))
}
