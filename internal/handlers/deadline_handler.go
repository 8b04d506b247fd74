package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/middleware"
	"github.com/shukatsu-compass/backend/internal/services"
)

type DeadlineHandler struct {
	Deadlines *services.DeadlineService
	Extractor *services.ExtractService
}

func NewDeadlineHandler(deadlines *services.DeadlineService, extractor *services.ExtractService) *DeadlineHandler {
	return &DeadlineHandler{Deadlines: deadlines, Extractor: extractor}
}

func (h *DeadlineHandler) List(c *gin.Context) {
	filter := services.DeadlineListFilter{
		UpcomingOnly: c.Query("upcoming") == "true",
	}
	if raw := c.Query("company_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
			return
		}
		companyID := uint(id)
		filter.CompanyID = &companyID
	}
	deadlines, err := h.Deadlines.List(c.Request.Context(), middleware.IdentityFromContext(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deadlines)
}

func (h *DeadlineHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deadline, err := h.Deadlines.Get(c.Request.Context(), id, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deadline)
}

func (h *DeadlineHandler) Create(c *gin.Context) {
	var req dtos.DeadlineCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	deadline, err := h.Deadlines.Create(c.Request.Context(), &req, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deadline)
}

// Update is the PATCH /deadlines/:id endpoint. It drives every lifecycle
// transition: confirmation, completion, reversal, and plain field edits.
func (h *DeadlineHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dtos.DeadlineUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	deadline, err := h.Deadlines.ApplyDeadlineUpdate(c.Request.Context(), id, &req, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deadline)
}

func (h *DeadlineHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Deadlines.Delete(c.Request.Context(), id, middleware.IdentityFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Extract is the POST /deadlines/extract endpoint
func (h *DeadlineHandler) Extract(c *gin.Context) {
	var req dtos.DeadlineExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	deadlines, err := h.Extractor.ExtractDeadlines(c.Request.Context(), req.RawText, req.SourceURL, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"count": len(deadlines),
		"data":  deadlines,
	})
}
