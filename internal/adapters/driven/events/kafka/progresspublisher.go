// Package kafka implements the driven.ProgressPublisher port, publishing a
// JSON-encoded FetchRun snapshot to a configurable topic after every
// completed chunk, for external fetch dashboards.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
)

var _ driven.ProgressPublisher = (*ProgressPublisher)(nil)

// ProgressPublisher publishes FetchRun snapshots to a Kafka topic.
type ProgressPublisher struct {
	writer *kafka.Writer
}

// NewProgressPublisher builds a publisher from domain config.
func NewProgressPublisher(cfg domain.KafkaConfig) *ProgressPublisher {
	return &ProgressPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish sends run as a single message keyed by its group name.
func (p *ProgressPublisher) Publish(ctx context.Context, run domain.FetchRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("%w: encoding fetch run: %v", domain.ErrStore, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(run.Group),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("%w: publishing to kafka: %v", domain.ErrStore, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *ProgressPublisher) Close() error {
	return p.writer.Close()
}
