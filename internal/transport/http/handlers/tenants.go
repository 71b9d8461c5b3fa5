package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ostanin/backoffice-access/internal/repository"
	"github.com/ostanin/backoffice-access/internal/usecase"
)

// TenantHandler exposes tenant resolution and the company/domain lifecycle.
type TenantHandler struct {
	tenants *usecase.TenantService
}

func NewTenantHandler(tenants *usecase.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// RegisterRoutes wires the tenant endpoints under the given group.
func (h *TenantHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/resolve", h.ResolveTenant)
	r.POST("", h.CreateCompany)
	r.GET("/:companyID", h.GetCompany)
	r.PATCH("/:companyID/status", h.SetCompanyStatus)
	r.POST("/:companyID/domains", h.AddDomain)
	r.DELETE("/:companyID/domains/:domainName", h.RemoveDomain)
}

// ResolveTenant maps a domain name to its active tenant. Inactive tenants
// return 403 so callers can distinguish them from unknown domains (404).
func (h *TenantHandler) ResolveTenant(c *gin.Context) {
	domainName := strings.TrimSpace(c.Query("domain"))
	if domainName == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "domain query parameter is required"))
		return
	}

	company, err := h.tenants.ResolveTenantByDomain(c.Request.Context(), domainName)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "unknown domain"},
			{Err: usecase.ErrCompanyInactive, Status: http.StatusForbidden, Message: "company is inactive"},
		}, http.StatusInternalServerError, "failed to resolve tenant")
		return
	}

	c.JSON(http.StatusOK, companyPayloadFrom(*company))
}

func (h *TenantHandler) CreateCompany(c *gin.Context) {
	var req CompanyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid company payload"))
		return
	}

	company, err := h.tenants.CreateCompany(c.Request.Context(), usecase.CreateCompanyInput{Name: req.Name})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "company already exists"},
		}, http.StatusInternalServerError, "failed to create company")
		return
	}

	c.JSON(http.StatusCreated, companyPayloadFrom(*company))
}

func (h *TenantHandler) GetCompany(c *gin.Context) {
	company, err := h.tenants.GetCompany(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "company not found"},
		}, http.StatusInternalServerError, "failed to get company")
		return
	}

	c.JSON(http.StatusOK, companyPayloadFrom(*company))
}

func (h *TenantHandler) SetCompanyStatus(c *gin.Context) {
	var req CompanyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid status payload"))
		return
	}

	company, err := h.tenants.SetCompanyStatus(c.Request.Context(), c.Param("companyID"), *req.Active)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "company not found"},
		}, http.StatusInternalServerError, "failed to update company status")
		return
	}

	c.JSON(http.StatusOK, companyPayloadFrom(*company))
}

func (h *TenantHandler) AddDomain(c *gin.Context) {
	var req DomainAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid domain payload"))
		return
	}

	d, err := h.tenants.AddDomain(c.Request.Context(), c.Param("companyID"), req.Domain)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "company not found"},
			{Err: usecase.ErrDomainTaken, Status: http.StatusConflict, Message: "domain already linked to a company"},
		}, http.StatusInternalServerError, "failed to add domain")
		return
	}

	c.JSON(http.StatusCreated, DomainPayload{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	})
}

func (h *TenantHandler) RemoveDomain(c *gin.Context) {
	err := h.tenants.RemoveDomain(c.Request.Context(), c.Param("companyID"), c.Param("domainName"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "domain not found"},
		}, http.StatusInternalServerError, "failed to remove domain")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "domain removed"})
}
