package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ostanin/backoffice-access/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse describes downstream dependency health.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// CompanyPayload is the API view of a tenant.
type CompanyPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func companyPayloadFrom(company domain.Company) CompanyPayload {
	return CompanyPayload{
		ID:        company.ID,
		Name:      company.Name,
		IsActive:  company.IsActive,
		CreatedAt: company.CreatedAt,
		UpdatedAt: company.UpdatedAt,
	}
}

// DomainPayload is the API view of a tenant domain.
type DomainPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RolePayload is the API view of a role. IsSystem is derived from the
// reserved name set, not stored.
type RolePayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CompanyID   *string `json:"company_id,omitempty"`
	Description *string `json:"description,omitempty"`
	IsSystem    bool    `json:"is_system"`
}

func rolePayloadFrom(role domain.Role) RolePayload {
	return RolePayload{
		ID:          role.ID,
		Name:        role.Name,
		CompanyID:   role.CompanyID,
		Description: role.Description,
		IsSystem:    role.IsSystem(),
	}
}

func rolePayloadsFrom(roles []domain.Role) []RolePayload {
	payloads := make([]RolePayload, 0, len(roles))
	for _, role := range roles {
		payloads = append(payloads, rolePayloadFrom(role))
	}
	return payloads
}

// PermissionPayload is the API view of a permission.
type PermissionPayload struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	ServiceNamespace string  `json:"service_namespace"`
	Action           string  `json:"action"`
	Description      *string `json:"description,omitempty"`
}

func permissionPayloadFrom(permission domain.Permission) PermissionPayload {
	return PermissionPayload{
		ID:               permission.ID,
		Name:             permission.Name,
		ServiceNamespace: permission.ServiceNamespace,
		Action:           permission.Action,
		Description:      permission.Description,
	}
}

func permissionPayloadsFrom(permissions []domain.Permission) []PermissionPayload {
	payloads := make([]PermissionPayload, 0, len(permissions))
	for _, permission := range permissions {
		payloads = append(payloads, permissionPayloadFrom(permission))
	}
	return payloads
}

// MembershipPayload is the API view of a user-company-role binding.
type MembershipPayload struct {
	UserID     string    `json:"user_id"`
	CompanyID  string    `json:"company_id"`
	RoleID     string    `json:"role_id"`
	AssignedAt time.Time `json:"assigned_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func membershipPayloadFrom(membership domain.Membership) MembershipPayload {
	return MembershipPayload{
		UserID:     membership.UserID,
		CompanyID:  membership.CompanyID,
		RoleID:     membership.RoleID,
		AssignedAt: membership.AssignedAt,
		UpdatedAt:  membership.UpdatedAt,
	}
}

func membershipPayloadsFrom(memberships []domain.Membership) []MembershipPayload {
	payloads := make([]MembershipPayload, 0, len(memberships))
	for _, membership := range memberships {
		payloads = append(payloads, membershipPayloadFrom(membership))
	}
	return payloads
}

// CompanyCreateRequest defines the payload for provisioning a tenant.
type CompanyCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// CompanyStatusRequest toggles tenant activation.
type CompanyStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// DomainAddRequest attaches a domain name to a tenant.
type DomainAddRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// RoleCreateRequest defines the payload for creating a custom role.
type RoleCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// PermissionCreateRequest defines the payload for registering a permission.
type PermissionCreateRequest struct {
	ServiceNamespace string  `json:"service_namespace" binding:"required"`
	Action           string  `json:"action" binding:"required"`
	Description      *string `json:"description"`
}

// PermissionGrantRequest links permissions to a role.
type PermissionGrantRequest struct {
	PermissionIDs []string `json:"permission_ids" binding:"required"`
}

// PermissionGrantResponse reports how many grants changed.
type PermissionGrantResponse struct {
	Changed int `json:"changed"`
}

// MembershipAssignRequest binds a user to a role within a company.
type MembershipAssignRequest struct {
	UserID string `json:"user_id" binding:"required"`
	RoleID string `json:"role_id" binding:"required"`
}

// MembershipReassignRequest relinks an existing membership to a new role.
type MembershipReassignRequest struct {
	RoleID string `json:"role_id" binding:"required"`
}

// AuthorizeRequest asks for an access decision.
type AuthorizeRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	CompanyID     string `json:"company_id" binding:"required"`
	Permission    string `json:"permission" binding:"required"`
	IsSystemAdmin bool   `json:"is_system_admin"`
}

// AccessDecisionResponse renders the outcome of an authorization check.
type AccessDecisionResponse struct {
	Allowed     bool                `json:"allowed"`
	Reason      string              `json:"reason,omitempty"`
	Role        *RolePayload        `json:"role,omitempty"`
	Permissions []PermissionPayload `json:"permissions,omitempty"`
}

// AccessCheckResponse reports tenant-level access.
type AccessCheckResponse struct {
	Allowed bool `json:"allowed"`
}
