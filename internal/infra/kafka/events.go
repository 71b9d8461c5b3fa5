package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	CompanyID string           `json:"company_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, companyID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		CompanyID: companyID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishCompanyCreated publishes access.company.created events.
func (p *EventPublisher) PublishCompanyCreated(ctx context.Context, event domain.CompanyCreatedEvent) error {
	payload := struct {
		CompanyID string         `json:"company_id"`
		Name      string         `json:"name"`
		CreatedAt time.Time      `json:"created_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		CompanyID: event.CompanyID,
		Name:      event.Name,
		CreatedAt: event.CreatedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "access.company.created", event.CompanyID, event.CreatedAt, payload)
}

// PublishRoleCreated publishes access.role.created events.
func (p *EventPublisher) PublishRoleCreated(ctx context.Context, event domain.RoleCreatedEvent) error {
	payload := struct {
		RoleID    string         `json:"role_id"`
		Name      string         `json:"name"`
		CompanyID *string        `json:"company_id,omitempty"`
		CreatedAt time.Time      `json:"created_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		RoleID:    event.RoleID,
		Name:      event.Name,
		CompanyID: event.CompanyID,
		CreatedAt: event.CreatedAt.UTC(),
		Metadata:  event.Metadata,
	}

	companyID := ""
	if event.CompanyID != nil {
		companyID = *event.CompanyID
	}

	return p.publish(ctx, event.EventID, "access.role.created", companyID, event.CreatedAt, payload)
}

// PublishRoleDeleted publishes access.role.deleted events.
func (p *EventPublisher) PublishRoleDeleted(ctx context.Context, event domain.RoleDeletedEvent) error {
	payload := struct {
		RoleID    string         `json:"role_id"`
		Name      string         `json:"name"`
		CompanyID *string        `json:"company_id,omitempty"`
		DeletedAt time.Time      `json:"deleted_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		RoleID:    event.RoleID,
		Name:      event.Name,
		CompanyID: event.CompanyID,
		DeletedAt: event.DeletedAt.UTC(),
		Metadata:  event.Metadata,
	}

	companyID := ""
	if event.CompanyID != nil {
		companyID = *event.CompanyID
	}

	return p.publish(ctx, event.EventID, "access.role.deleted", companyID, event.DeletedAt, payload)
}

// PublishMembershipAssigned publishes access.membership.assigned events.
func (p *EventPublisher) PublishMembershipAssigned(ctx context.Context, event domain.MembershipAssignedEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		CompanyID  string         `json:"company_id"`
		RoleID     string         `json:"role_id"`
		AssignedAt time.Time      `json:"assigned_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		CompanyID:  event.CompanyID,
		RoleID:     event.RoleID,
		AssignedAt: event.AssignedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "access.membership.assigned", event.CompanyID, event.AssignedAt, payload)
}

// PublishMembershipRoleChanged publishes access.membership.role_changed events.
func (p *EventPublisher) PublishMembershipRoleChanged(ctx context.Context, event domain.MembershipRoleChangedEvent) error {
	payload := struct {
		UserID         string         `json:"user_id"`
		CompanyID      string         `json:"company_id"`
		PreviousRoleID string         `json:"previous_role_id"`
		RoleID         string         `json:"role_id"`
		ChangedAt      time.Time      `json:"changed_at"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		UserID:         event.UserID,
		CompanyID:      event.CompanyID,
		PreviousRoleID: event.PreviousRoleID,
		RoleID:         event.RoleID,
		ChangedAt:      event.ChangedAt.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, "access.membership.role_changed", event.CompanyID, event.ChangedAt, payload)
}

// PublishMembershipRemoved publishes access.membership.removed events.
func (p *EventPublisher) PublishMembershipRemoved(ctx context.Context, event domain.MembershipRemovedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		CompanyID string         `json:"company_id"`
		RoleID    string         `json:"role_id"`
		RemovedAt time.Time      `json:"removed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		CompanyID: event.CompanyID,
		RoleID:    event.RoleID,
		RemovedAt: event.RemovedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "access.membership.removed", event.CompanyID, event.RemovedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
