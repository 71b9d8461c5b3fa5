package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()
	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "access",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "backoffice-access",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, asyncProducer
}

func TestPublishMembershipAssigned(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	assignedAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	event := domain.MembershipAssignedEvent{
		EventID:    "event-123",
		UserID:     "user-456",
		CompanyID:  "company-789",
		RoleID:     "role-1",
		AssignedAt: assignedAt,
	}

	if err := publisher.PublishMembershipAssigned(context.Background(), event); err != nil {
		t.Fatalf("PublishMembershipAssigned failed: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "access.membership.assigned" {
			t.Errorf("unexpected topic %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("encode message: %v", err)
		}

		var envelope struct {
			EventID   string         `json:"event_id"`
			EventType string         `json:"event_type"`
			CompanyID string         `json:"company_id"`
			Version   string         `json:"version"`
			Payload   map[string]any `json:"payload"`
			Metadata  map[string]any `json:"metadata"`
		}
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}

		if envelope.EventID != "event-123" {
			t.Errorf("expected event-123, got %s", envelope.EventID)
		}
		if envelope.EventType != "access.membership.assigned" {
			t.Errorf("unexpected event type %s", envelope.EventType)
		}
		if envelope.CompanyID != "company-789" {
			t.Errorf("expected company-789, got %s", envelope.CompanyID)
		}
		if envelope.Payload["role_id"] != "role-1" {
			t.Errorf("expected role-1 in payload, got %v", envelope.Payload["role_id"])
		}
		if envelope.Metadata["service"] != "backoffice-access" {
			t.Errorf("expected service metadata, got %v", envelope.Metadata["service"])
		}
	default:
		t.Fatal("expected a message on the producer input channel")
	}
}

func TestProducer_TopicName(t *testing.T) {
	producer := &Producer{cfg: config.KafkaSettings{TopicPrefix: "access"}}

	if got := producer.TopicName("company.created"); got != "access.company.created" {
		t.Errorf("expected access.company.created, got %s", got)
	}
	// Already-prefixed names pass through unchanged.
	if got := producer.TopicName("access.company.created"); got != "access.company.created" {
		t.Errorf("expected access.company.created, got %s", got)
	}

	bare := &Producer{cfg: config.KafkaSettings{}}
	if got := bare.TopicName("company.created"); got != "company.created" {
		t.Errorf("expected company.created, got %s", got)
	}
}
