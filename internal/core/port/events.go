package port

import (
	"context"

	"github.com/ostanin/backoffice-access/internal/core/domain"
)

// EventPublisher publishes audit events to the message bus.
type EventPublisher interface {
	PublishCompanyCreated(ctx context.Context, event domain.CompanyCreatedEvent) error
	PublishRoleCreated(ctx context.Context, event domain.RoleCreatedEvent) error
	PublishRoleDeleted(ctx context.Context, event domain.RoleDeletedEvent) error
	PublishMembershipAssigned(ctx context.Context, event domain.MembershipAssignedEvent) error
	PublishMembershipRoleChanged(ctx context.Context, event domain.MembershipRoleChangedEvent) error
	PublishMembershipRemoved(ctx context.Context, event domain.MembershipRemovedEvent) error
}
