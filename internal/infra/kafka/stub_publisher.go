package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishCompanyCreated logs access.company.created events.
func (p *StubPublisher) PublishCompanyCreated(_ context.Context, event domain.CompanyCreatedEvent) error {
	payload := map[string]any{
		"company_id": event.CompanyID,
		"name":       event.Name,
		"created_at": event.CreatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("access.company.created", event.CreatedAt, payload)
	return nil
}

// PublishRoleCreated logs access.role.created events.
func (p *StubPublisher) PublishRoleCreated(_ context.Context, event domain.RoleCreatedEvent) error {
	payload := map[string]any{
		"role_id":    event.RoleID,
		"name":       event.Name,
		"company_id": event.CompanyID,
		"created_at": event.CreatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("access.role.created", event.CreatedAt, payload)
	return nil
}

// PublishRoleDeleted logs access.role.deleted events.
func (p *StubPublisher) PublishRoleDeleted(_ context.Context, event domain.RoleDeletedEvent) error {
	payload := map[string]any{
		"role_id":    event.RoleID,
		"name":       event.Name,
		"company_id": event.CompanyID,
		"deleted_at": event.DeletedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("access.role.deleted", event.DeletedAt, payload)
	return nil
}

// PublishMembershipAssigned logs access.membership.assigned events.
func (p *StubPublisher) PublishMembershipAssigned(_ context.Context, event domain.MembershipAssignedEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"company_id":  event.CompanyID,
		"role_id":     event.RoleID,
		"assigned_at": event.AssignedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("access.membership.assigned", event.AssignedAt, payload)
	return nil
}

// PublishMembershipRoleChanged logs access.membership.role_changed events.
func (p *StubPublisher) PublishMembershipRoleChanged(_ context.Context, event domain.MembershipRoleChangedEvent) error {
	payload := map[string]any{
		"user_id":          event.UserID,
		"company_id":       event.CompanyID,
		"previous_role_id": event.PreviousRoleID,
		"role_id":          event.RoleID,
		"changed_at":       event.ChangedAt,
		"metadata":         event.Metadata,
	}
	p.logEvent("access.membership.role_changed", event.ChangedAt, payload)
	return nil
}

// PublishMembershipRemoved logs access.membership.removed events.
func (p *StubPublisher) PublishMembershipRemoved(_ context.Context, event domain.MembershipRemovedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"company_id": event.CompanyID,
		"role_id":    event.RoleID,
		"removed_at": event.RemovedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("access.membership.removed", event.RemovedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
