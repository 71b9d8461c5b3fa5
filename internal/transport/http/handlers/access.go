package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ostanin/backoffice-access/internal/infra/telemetry"
	"github.com/ostanin/backoffice-access/internal/repository"
	"github.com/ostanin/backoffice-access/internal/usecase"
)

// AccessHandler answers the authorization questions other services ask:
// can this user act in this company, and which companies can they see.
type AccessHandler struct {
	access    *usecase.AccessService
	telemetry *telemetry.Provider
}

func NewAccessHandler(access *usecase.AccessService, provider *telemetry.Provider) *AccessHandler {
	return &AccessHandler{access: access, telemetry: provider}
}

func (h *AccessHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/authorize", h.Authorize)
	r.GET("/check", h.Check)
	r.GET("/companies", h.Companies)
}

func (h *AccessHandler) Authorize(c *gin.Context) {
	var req AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid authorize payload"))
		return
	}

	decision, err := h.access.Authorize(c.Request.Context(), usecase.AuthorizeInput{
		UserID:             req.UserID,
		CompanyID:          req.CompanyID,
		RequiredPermission: req.Permission,
		IsSystemAdmin:      req.IsSystemAdmin,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "company not found"},
		}, http.StatusInternalServerError, "failed to authorize")
		return
	}

	outcome := "deny"
	if decision.Allowed {
		outcome = "allow"
	}
	h.telemetry.RecordDecision(outcome)

	resp := AccessDecisionResponse{
		Allowed:     decision.Allowed,
		Reason:      decision.Reason,
		Permissions: permissionPayloadsFrom(decision.Permissions),
	}
	if decision.Role != nil {
		payload := rolePayloadFrom(*decision.Role)
		resp.Role = &payload
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AccessHandler) Check(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	companyID := strings.TrimSpace(c.Query("company_id"))
	if userID == "" || companyID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id and company_id are required"))
		return
	}
	isSystemAdmin := c.Query("system_admin") == "true"

	allowed, err := h.access.CanUserAccessCompany(c.Request.Context(), companyID, userID, isSystemAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to check access"))
		return
	}

	c.JSON(http.StatusOK, AccessCheckResponse{Allowed: allowed})
}

func (h *AccessHandler) Companies(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id is required"))
		return
	}
	isSystemAdmin := c.Query("system_admin") == "true"

	companies, err := h.access.GetCompaniesByUser(c.Request.Context(), userID, isSystemAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list companies"))
		return
	}

	payloads := make([]CompanyPayload, 0, len(companies))
	for _, company := range companies {
		payloads = append(payloads, companyPayloadFrom(company))
	}
	c.JSON(http.StatusOK, payloads)
}
