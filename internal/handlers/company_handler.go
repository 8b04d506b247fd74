package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/middleware"
	"github.com/shukatsu-compass/backend/internal/services"
)

type CompanyHandler struct {
	Companies    *services.CompanyService
	Applications *services.ApplicationService
}

func NewCompanyHandler(companies *services.CompanyService, applications *services.ApplicationService) *CompanyHandler {
	return &CompanyHandler{Companies: companies, Applications: applications}
}

func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.Companies.List(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	company, err := h.Companies.Get(c.Request.Context(), id, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) Create(c *gin.Context) {
	var req dtos.CompanyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	company, err := h.Companies.Create(c.Request.Context(), &req, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dtos.CompanyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	company, err := h.Companies.Update(c.Request.Context(), id, &req, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Companies.Delete(c.Request.Context(), id, middleware.IdentityFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CompanyHandler) ListApplications(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	apps, err := h.Applications.List(c.Request.Context(), id, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *CompanyHandler) CreateApplication(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dtos.ApplicationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	app, err := h.Applications.Create(c.Request.Context(), id, &req, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *CompanyHandler) UpdateApplication(c *gin.Context) {
	id, ok := idParam(c, "applicationId")
	if !ok {
		return
	}
	var req dtos.ApplicationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	app, err := h.Applications.Update(c.Request.Context(), id, &req, middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *CompanyHandler) DeleteApplication(c *gin.Context) {
	id, ok := idParam(c, "applicationId")
	if !ok {
		return
	}
	if err := h.Applications.Delete(c.Request.Context(), id, middleware.IdentityFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
