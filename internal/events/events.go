package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/metrics"
)

const (
	RequestCreated   = "rental_request.created"
	RequestApproved  = "rental_request.approved"
	RequestRejected  = "rental_request.rejected"
	RequestCancelled = "rental_request.cancelled"
	RentalCancelled  = "rental.cancelled"
	RentalCompleted  = "rental.completed"
)

// Event is a committed state transition. Key is the aggregate ID and is used
// as the partition key so events of one request or rental stay ordered.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

func RequestEvent(eventType string, req *domain.RentalRequest) Event {
	return Event{Type: eventType, Key: req.ID, OccurredAt: time.Now().UTC(), Payload: req}
}

func RentalEvent(eventType string, rental *domain.Rental) Event {
	return Event{Type: eventType, Key: rental.ID, OccurredAt: time.Now().UTC(), Payload: rental}
}

type noopPublisher struct{}

// NewNoop returns a Publisher that drops every event.
func NewNoop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                         { return nil }

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *metrics.Metrics
}

func NewKafkaPublisher(brokers []string, clientID, topic string, m *metrics.Metrics) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	if clientID != "" {
		cfg.ClientID = clientID
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, topic, m), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, m *metrics.Metrics) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, metrics: m}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Type, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(ev.Type)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	p.metrics.Published(ev.Type, err)
	logger.ExternalServiceResult(ctx, "kafka", "SendMessage", err, "type", ev.Type, "key", ev.Key, "partition", partition, "offset", offset)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
