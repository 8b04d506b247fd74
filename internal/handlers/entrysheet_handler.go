package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/middleware"
	"github.com/shukatsu-compass/backend/internal/services"
)

type EntrySheetHandler struct {
	EntrySheets *services.EntrySheetService
	Reviews     *services.ReviewService
}

func NewEntrySheetHandler(sheets *services.EntrySheetService, reviews *services.ReviewService) *EntrySheetHandler {
	return &EntrySheetHandler{EntrySheets: sheets, Reviews: reviews}
}

func (h *EntrySheetHandler) List(c *gin.Context) {
	companyID, ok := idParam(c, "id")
	if !ok {
		return
	}
	sheets, err := h.EntrySheets.List(c.Request.Context(), companyID, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheets)
}

func (h *EntrySheetHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sheet, err := h.EntrySheets.Get(c.Request.Context(), id, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (h *EntrySheetHandler) Create(c *gin.Context) {
	var req dtos.EntrySheetCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	sheet, err := h.EntrySheets.Create(c.Request.Context(), &req, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sheet)
}

func (h *EntrySheetHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dtos.EntrySheetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	sheet, err := h.EntrySheets.Update(c.Request.Context(), id, &req, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (h *EntrySheetHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.EntrySheets.Delete(c.Request.Context(), id, middleware.IdentityFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Review is the POST /entry-sheets/:id/review endpoint
func (h *EntrySheetHandler) Review(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	review, err := h.Reviews.ReviewEntrySheet(c.Request.Context(), id, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
