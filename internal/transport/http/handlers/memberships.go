package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ostanin/backoffice-access/internal/repository"
	"github.com/ostanin/backoffice-access/internal/usecase"
)

// MembershipHandler manages the user-to-company role assignments. All routes
// hang off the company resource because a membership is never addressed
// outside its company.
type MembershipHandler struct {
	memberships *usecase.MembershipService
}

func NewMembershipHandler(memberships *usecase.MembershipService) *MembershipHandler {
	return &MembershipHandler{memberships: memberships}
}

func (h *MembershipHandler) RegisterRoutes(companies *gin.RouterGroup) {
	companies.GET("/:companyID/members", h.ListMembers)
	companies.POST("/:companyID/members", h.AssignRole)
	companies.GET("/:companyID/members/:userID", h.GetMembership)
	companies.PUT("/:companyID/members/:userID", h.ReassignRole)
	companies.DELETE("/:companyID/members/:userID", h.RemoveMembership)
}

func (h *MembershipHandler) ListMembers(c *gin.Context) {
	members, err := h.memberships.ListCompanyMembers(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list company members"))
		return
	}

	c.JSON(http.StatusOK, membershipPayloadsFrom(members))
}

func (h *MembershipHandler) AssignRole(c *gin.Context) {
	var req MembershipAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid membership payload"))
		return
	}

	membership, err := h.memberships.AssignRole(c.Request.Context(), req.UserID, c.Param("companyID"), req.RoleID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMembershipExists, Status: http.StatusConflict, Message: "user already belongs to a company"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrRoleNotInCompany, Status: http.StatusForbidden, Message: "role is not assignable in this company"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "company or role not found"},
		}, http.StatusInternalServerError, "failed to assign role")
		return
	}

	c.JSON(http.StatusCreated, membershipPayloadFrom(*membership))
}

func (h *MembershipHandler) GetMembership(c *gin.Context) {
	membership, err := h.memberships.GetMembership(c.Request.Context(), c.Param("userID"), c.Param("companyID"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "membership not found"},
		}, http.StatusInternalServerError, "failed to get membership")
		return
	}

	c.JSON(http.StatusOK, membershipPayloadFrom(*membership))
}

func (h *MembershipHandler) ReassignRole(c *gin.Context) {
	var req MembershipReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid membership payload"))
		return
	}

	membership, err := h.memberships.ReassignRole(c.Request.Context(), c.Param("userID"), c.Param("companyID"), req.RoleID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "membership not found"},
			{Err: usecase.ErrRoleNotInCompany, Status: http.StatusForbidden, Message: "role is not assignable in this company"},
		}, http.StatusInternalServerError, "failed to reassign role")
		return
	}

	c.JSON(http.StatusOK, membershipPayloadFrom(*membership))
}

func (h *MembershipHandler) RemoveMembership(c *gin.Context) {
	err := h.memberships.RemoveMembership(c.Request.Context(), c.Param("userID"), c.Param("companyID"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "membership not found"},
		}, http.StatusInternalServerError, "failed to remove membership")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "membership removed"})
}
