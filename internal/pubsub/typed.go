package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event[T] wraps a topic name and provides type-safe publishing and decoding.
type Event[T any] struct {
	topic string
}

// NewEvent declares a typed event bound to the topic.
func NewEvent[T any](topic string) Event[T] {
	return Event[T]{topic: topic}
}

// Topic returns the topic name of the event.
func (e Event[T]) Topic() string {
	return e.topic
}

// Publish encodes payload as JSON and publishes it on the event's topic.
func (e Event[T]) Publish(ctx context.Context, pub Publisher, userID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", e.topic, err)
	}
	return pub.Publish(ctx, Message{
		Topic:   e.topic,
		UserID:  userID,
		Payload: data,
	})
}

// Decode unmarshals the message payload into T.
func (e Event[T]) Decode(msg Message) (T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal %s payload: %w", e.topic, err)
	}
	return payload, nil
}
