// Package events publishes change events for downstream consumers after
// successful writes.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// SampleSaved is emitted after a sample insert commits.
type SampleSaved struct {
	RecordID  string    `json:"record_id"`
	DataType  string    `json:"data_type"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	SourceID  string    `json:"source_id"`
	SavedAt   time.Time `json:"saved_at"`
}

// messageWriter abstracts the kafka writer for tests.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes change events to a single Kafka topic.
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a Publisher for the brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		},
	}
}

// SampleSaved publishes the event keyed by data type.
func (p *Publisher) SampleSaved(ctx context.Context, ev SampleSaved) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.DataType),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("sample.saved")},
		},
	})
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
