package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
	"github.com/oficinahub/workshop-sync/internal/infra/config"
)

const (
	schemaVersion          = "1.0"
	topicTenantVersionBump = "tenant.version.bumped"
)

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

var _ port.EventPublisher = (*EventPublisher)(nil)

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	TenantID  int64             `json:"tenant_id"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// PublishTenantVersionBumped publishes tenant.version.bumped events.
// Messages are keyed by tenant so per-tenant ordering is preserved
// within a partition.
func (p *EventPublisher) PublishTenantVersionBumped(ctx context.Context, event domain.TenantVersionBumpedEvent) error {
	payload := struct {
		TenantID        int64     `json:"tenant_id"`
		PreviousCounter *int64    `json:"previous_counter,omitempty"`
		NewCounter      int64     `json:"new_counter"`
		Source          string    `json:"source,omitempty"`
		BumpedAt        time.Time `json:"bumped_at"`
	}{
		TenantID:        int64(event.TenantID),
		PreviousCounter: event.PreviousCounter,
		NewCounter:      event.NewCounter,
		Source:          event.Source,
		BumpedAt:        event.BumpedAt.UTC(),
	}

	id := event.EventID
	if id == "" {
		id = uuid.NewString()
	}
	ts := event.BumpedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: topicTenantVersionBump,
		TenantID:  int64(event.TenantID),
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(topicTenantVersionBump),
		Key:   sarama.StringEncoder(strconv.FormatInt(int64(event.TenantID), 10)),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
