package events

// Package events publishes analysis lifecycle events to Kafka.
// Publishing is best-effort: a broker failure never fails the request
// that produced the event.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// AnalysisEvent describes the outcome of one document or image analysis.
type AnalysisEvent struct {
	DocumentID string    `json:"documentId,omitempty"`
	UserID     string    `json:"userId"`
	Filename   string    `json:"filename"`
	Kind       string    `json:"kind"`   // "document" or "image"
	Status     string    `json:"status"` // "completed" or "failed"
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Producer publishes analysis events.
type Producer interface {
	SendAnalysisEvent(ctx context.Context, event AnalysisEvent) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer builds a Producer on the given brokers and topic.
func NewKafkaProducer(brokers []string, topic string) Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &kafkaProducer{writer: writer, topic: topic}
}

func (p *kafkaProducer) SendAnalysisEvent(ctx context.Context, event AnalysisEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := event.DocumentID
	if key == "" {
		key = event.UserID
	}
	message := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}
	return p.writer.WriteMessages(ctx, message)
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// Noop is a Producer that drops events; used when no brokers are configured.
type Noop struct{}

func (Noop) SendAnalysisEvent(context.Context, AnalysisEvent) error { return nil }
func (Noop) Close() error                                           { return nil }
