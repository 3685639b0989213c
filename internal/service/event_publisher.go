package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
	"github.com/KrishnaSriTarun/wanderlust/pkg/kafka"
)

// EventPublisher defines the interface for publishing reservation events.
type EventPublisher interface {
	// PublishReservationCreated publishes a reservation created event.
	PublishReservationCreated(ctx context.Context, res *domain.Reservation) error

	// Close closes the event publisher.
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka.
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher.
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher.
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "reservation-events"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "reservation-service"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "reservation-service-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		Linger:        10 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishReservationCreated publishes a reservation created event.
func (p *KafkaEventPublisher) PublishReservationCreated(ctx context.Context, res *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationEventCreated, res)
}

// Close closes the event publisher.
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.ReservationEventType, res *domain.Reservation) error {
	eventID := uuid.New().String()
	event := domain.NewReservationEvent(eventType, res, eventID)

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     eventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	if err := p.producer.ProduceJSON(ctx, p.topic, event.Key(), event, headers); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// NoOpEventPublisher discards events. Used when the broker is not
// configured or unreachable at startup.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a no-op event publisher.
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

func (p *NoOpEventPublisher) PublishReservationCreated(ctx context.Context, res *domain.Reservation) error {
	return nil
}

func (p *NoOpEventPublisher) Close() error {
	return nil
}

// Ensure implementations satisfy EventPublisher
var (
	_ EventPublisher = (*KafkaEventPublisher)(nil)
	_ EventPublisher = (*NoOpEventPublisher)(nil)
)
