package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DecisionEvent is the message published for every decision.
type DecisionEvent struct {
	ID          uuid.UUID `json:"id"`
	InputName   string    `json:"input_name"`
	MatchedName string    `json:"matched_name"`
	Probability float64   `json:"probability"`
	IsMatch     bool      `json:"is_match"`
	Threshold   float64   `json:"threshold"`
	Operation   string    `json:"operation"`
	RequestID   string    `json:"request_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher streams decisions to a Kafka topic for downstream case
// management.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

var _ screening.AuditLogger = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			MaxAttempts:  3,
		},
		topic: topic,
		log:   log,
	}
}

// Record publishes one decision keyed by input name, so all decisions for a
// screened name land on the same partition.
func (k *KafkaPublisher) Record(ctx context.Context, rec screening.AuditRecord) error {
	event := DecisionEvent{
		ID:          uuid.New(),
		InputName:   rec.InputName,
		MatchedName: rec.MatchedName,
		Probability: rec.Probability,
		IsMatch:     rec.IsMatch,
		Threshold:   rec.Threshold,
		Operation:   rec.SourceOperation,
		RequestID:   RequestID(ctx),
		Timestamp:   time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	k.log.Debug("publishing decision to kafka",
		zap.String("topic", k.topic),
		zap.Int("event_size", len(data)),
	)

	msg := kafka.Message{
		Key:   []byte(rec.InputName),
		Value: data,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("screening.decision")},
			{Key: "operation", Value: []byte(rec.SourceOperation)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish decision to %s: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}
