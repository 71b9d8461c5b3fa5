package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ostanin/backoffice-access/internal/repository"
	"github.com/ostanin/backoffice-access/internal/usecase"
)

// RoleHandler exposes role resolution and the role lifecycle.
type RoleHandler struct {
	roles       *usecase.RoleService
	permissions *usecase.PermissionService
}

func NewRoleHandler(roles *usecase.RoleService, permissions *usecase.PermissionService) *RoleHandler {
	return &RoleHandler{roles: roles, permissions: permissions}
}

// RegisterRoutes wires role endpoints. Company-scoped listings and creation
// live under the companies group; user-scoped availability under users.
func (h *RoleHandler) RegisterRoutes(roles, companies, users *gin.RouterGroup) {
	roles.GET("/system", h.ListSystemRoles)
	roles.POST("/system/seed", h.SeedSystemRoles)
	roles.GET("/:roleID", h.GetRole)
	roles.DELETE("/:roleID", h.DeleteRole)
	roles.GET("/:roleID/permissions", h.ListRolePermissions)
	roles.POST("/:roleID/permissions", h.GrantPermissions)
	roles.DELETE("/:roleID/permissions", h.RevokePermissions)

	companies.GET("/:companyID/roles", h.ListCompanyRoles)
	companies.POST("/:companyID/roles", h.CreateCustomRole)

	users.GET("/:userID/roles", h.ListAvailableRoles)
}

func (h *RoleHandler) ListSystemRoles(c *gin.Context) {
	roles, err := h.roles.FindSystemRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list system roles"))
		return
	}

	c.JSON(http.StatusOK, rolePayloadsFrom(roles))
}

func (h *RoleHandler) SeedSystemRoles(c *gin.Context) {
	roles, err := h.roles.SeedSystemRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to seed system roles"))
		return
	}

	c.JSON(http.StatusOK, rolePayloadsFrom(roles))
}

// GetRole validates tenant scope through the company_id query parameter.
// System roles resolve regardless of the scope; a custom role outside the
// requesting company comes back 403.
func (h *RoleHandler) GetRole(c *gin.Context) {
	roleID := c.Param("roleID")
	companyID := strings.TrimSpace(c.Query("company_id"))

	role, err := h.roles.FindRoleWithCompanyValidation(c.Request.Context(), roleID, companyID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "role not found"},
			{Err: usecase.ErrRoleNotInCompany, Status: http.StatusForbidden, Message: "role is not visible in this company"},
		}, http.StatusInternalServerError, "failed to get role")
		return
	}

	c.JSON(http.StatusOK, rolePayloadFrom(*role))
}

func (h *RoleHandler) DeleteRole(c *gin.Context) {
	err := h.roles.DeleteRole(c.Request.Context(), c.Param("roleID"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "role not found"},
			{Err: usecase.ErrReservedRoleName, Status: http.StatusForbidden, Message: "system roles cannot be deleted"},
			{Err: usecase.ErrRoleInUse, Status: http.StatusConflict, Message: "role is referenced by memberships"},
		}, http.StatusInternalServerError, "failed to delete role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role deleted"})
}

func (h *RoleHandler) ListRolePermissions(c *gin.Context) {
	permissions, err := h.permissions.ResolvePermissions(c.Request.Context(), c.Param("roleID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to resolve role permissions"))
		return
	}

	c.JSON(http.StatusOK, permissionPayloadsFrom(permissions))
}

func (h *RoleHandler) GrantPermissions(c *gin.Context) {
	var req PermissionGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid grant payload"))
		return
	}

	granted, err := h.permissions.GrantPermissions(c.Request.Context(), c.Param("roleID"), req.PermissionIDs)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "role or permission not found"},
		}, http.StatusInternalServerError, "failed to grant permissions")
		return
	}

	c.JSON(http.StatusOK, PermissionGrantResponse{Changed: granted})
}

func (h *RoleHandler) RevokePermissions(c *gin.Context) {
	var req PermissionGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid revoke payload"))
		return
	}

	revoked, err := h.permissions.RevokePermissions(c.Request.Context(), c.Param("roleID"), req.PermissionIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to revoke permissions"))
		return
	}

	c.JSON(http.StatusOK, PermissionGrantResponse{Changed: revoked})
}

// ListCompanyRoles returns the roles visible to a company: system plus its
// own custom roles, or custom roles only with ?scope=custom.
func (h *RoleHandler) ListCompanyRoles(c *gin.Context) {
	companyID := c.Param("companyID")

	var err error
	var roles []RolePayload
	switch c.DefaultQuery("scope", "all") {
	case "custom":
		custom, listErr := h.roles.FindCustomRolesByCompany(c.Request.Context(), companyID)
		err = listErr
		roles = rolePayloadsFrom(custom)
	default:
		all, listErr := h.roles.FindAllRolesForCompany(c.Request.Context(), companyID)
		err = listErr
		roles = rolePayloadsFrom(all)
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list company roles"))
		return
	}

	c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) CreateCustomRole(c *gin.Context) {
	var req RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := h.roles.CreateCustomRole(c.Request.Context(), c.Param("companyID"), usecase.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrReservedRoleName, Status: http.StatusBadRequest, Message: "role name is reserved"},
			{Err: usecase.ErrRoleExists, Status: http.StatusConflict, Message: "role already exists"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "company not found"},
		}, http.StatusInternalServerError, "failed to create role")
		return
	}

	c.JSON(http.StatusCreated, rolePayloadFrom(*role))
}

func (h *RoleHandler) ListAvailableRoles(c *gin.Context) {
	roles, err := h.roles.FindAvailableRolesForUser(c.Request.Context(), c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list available roles"))
		return
	}

	c.JSON(http.StatusOK, rolePayloadsFrom(roles))
}
