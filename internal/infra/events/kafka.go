package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisherは注文イベントをKafkaに送る。
// keyは注文IDにして、同じ注文のイベント順を保つ。
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 2 * time.Second,
			MaxAttempts:  3,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, key string, payload interface{}) error {
	body, err := json.Marshal(envelope{
		EventType:  eventType,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type envelope struct {
	EventType  string      `json:"event_type"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Kafkaを使わないとき
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType string, key string, payload interface{}) error {
	return nil
}
