package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"presence-chat/domain/event"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of kafka.Writer the sink relies on.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// envelope is the JSON record published for each domain event.
type envelope struct {
	Type       string            `json:"type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Payload    event.DomainEvent `json:"payload"`
}

// KafkaSink publishes domain events to a Kafka topic, keyed by participant
// so that the events of one participant stay ordered within a partition.
type KafkaSink struct {
	writer MessageWriter
	log    *slog.Logger
}

func NewKafkaSink(writer MessageWriter, log *slog.Logger) *KafkaSink {
	return &KafkaSink{writer: writer, log: log}
}

// NewKafkaWriter builds the writer used in production.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func (s *KafkaSink) Consume(ctx context.Context, e event.DomainEvent) error {
	value, err := json.Marshal(envelope{Type: e.Name(), OccurredAt: e.OccurredAt(), Payload: e})
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Name(), err)
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(partitionKey(e)),
		Value: value,
		Time:  e.OccurredAt(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Name(), err)
	}
	s.log.Debug("Event published to Kafka", "event", e.Name())
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func partitionKey(e event.DomainEvent) string {
	switch evt := e.(type) {
	case event.ParticipantJoined:
		return evt.Participant
	case event.ParticipantLeft:
		return evt.Participant
	case event.MessagePosted:
		return evt.From
	case event.MessageEdited:
		return evt.By
	case event.MessageRemoved:
		return evt.By
	default:
		return e.Name()
	}
}
