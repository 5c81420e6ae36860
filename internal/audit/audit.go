// Package audit records every domain event published on the bus.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/sparx/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder logs domain events and counts them by topic.
type Recorder struct {
	logger  *slog.Logger
	counter *prometheus.CounterVec
}

// NewRecorder creates a Recorder. counter must carry a single "topic" label.
func NewRecorder(logger *slog.Logger, counter *prometheus.CounterVec) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger, counter: counter}
}

// Start subscribes to every topic. Subscriptions end when ctx is canceled or
// the subscriber is closed.
func (r *Recorder) Start(ctx context.Context, sub pubsub.Subscriber, topics []string) error {
	for _, topic := range topics {
		if err := sub.Subscribe(ctx, topic, r.Handle); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}
	r.logger.Info("Audit recorder started", "topics", len(topics))
	return nil
}

// Handle records one message. The payload is not logged since it may carry
// email addresses.
func (r *Recorder) Handle(ctx context.Context, msg pubsub.Message) error {
	if r.counter != nil {
		r.counter.WithLabelValues(msg.Topic).Inc()
	}
	r.logger.InfoContext(ctx, "Domain event",
		"event", "domain_event",
		"topic", msg.Topic,
		"user_id", msg.UserID,
		"payload_bytes", len(msg.Payload),
	)
	return nil
}
