// Package publish ships finished report records to Kafka.
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/amartya2002/status-checker/report"
)

const runIDHeader = "run_id"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per record, keyed by URL.
type Publisher struct {
	writer messageWriter
	logger *zap.Logger
}

func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}, logger)
}

func newPublisher(w messageWriter, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish sends records as a single batch tagged with runID.
func (p *Publisher) Publish(ctx context.Context, runID string, records []report.Record) error {
	msgs := make([]kafka.Message, 0, len(records))
	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal record for %s: %w", r.URL, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(r.URL),
			Value:   payload,
			Headers: []kafka.Header{{Key: runIDHeader, Value: []byte(runID)}},
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d records: %w", len(msgs), err)
	}
	p.logger.Info("Published results", zap.String("run_id", runID), zap.Int("records", len(msgs)))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
