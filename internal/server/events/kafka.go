package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events as JSON to one topic, keyed by session id
// so a session's events stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    logging.Logger
}

// NewKafkaPublisher returns nil when brokers or topic are missing; a nil
// *KafkaPublisher is safe to use and publishes nothing.
func NewKafkaPublisher(brokers []string, topic string, log logging.Logger) *KafkaPublisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	p := &KafkaPublisher{log: log}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.log.Warn(context.Background(), "event delivery failed", "count", len(messages), "error", err)
			}
		},
	}
	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	if p == nil || p.writer == nil {
		return nil
	}
	msg, err := encode(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages. Safe to call on a nil publisher.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encode(ev Event) (kafka.Message, error) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.SessionID),
		Value: payload,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}, nil
}
