package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/repository"
	"github.com/ostanin/backoffice-access/internal/usecase"
)

// PermissionHandler exposes the permission catalogue.
type PermissionHandler struct {
	permissions *usecase.PermissionService
}

func NewPermissionHandler(permissions *usecase.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

func (h *PermissionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.CreatePermission)
	r.GET("", h.ListPermissions)
	r.GET("/by-name/:name", h.GetPermissionByName)
}

func (h *PermissionHandler) CreatePermission(c *gin.Context) {
	var req PermissionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid permission payload"))
		return
	}

	permission, err := h.permissions.CreatePermission(c.Request.Context(), usecase.CreatePermissionInput{
		ServiceNamespace: req.ServiceNamespace,
		Action:           req.Action,
		Description:      req.Description,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidNamespace, Status: http.StatusBadRequest, Message: "invalid service namespace"},
			{Err: usecase.ErrInvalidAction, Status: http.StatusBadRequest, Message: "invalid action"},
			{Err: usecase.ErrPermissionExists, Status: http.StatusConflict, Message: "permission already exists"},
		}, http.StatusInternalServerError, "failed to create permission")
		return
	}

	c.JSON(http.StatusCreated, permissionPayloadFrom(*permission))
}

func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	filter := port.PermissionFilter{
		ServiceNamespace: strings.TrimSpace(c.Query("namespace")),
	}

	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	permissions, err := h.permissions.ListPermissions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list permissions"))
		return
	}

	c.JSON(http.StatusOK, permissionPayloadsFrom(permissions))
}

func (h *PermissionHandler) GetPermissionByName(c *gin.Context) {
	permission, err := h.permissions.GetPermissionByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "permission not found"},
		}, http.StatusInternalServerError, "failed to get permission")
		return
	}

	c.JSON(http.StatusOK, permissionPayloadFrom(*permission))
}
