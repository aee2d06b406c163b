// Package pubsub provides the generic publish/subscribe broker behind the
// marketplace's notification sink and the logger's live event stream.
package pubsub

import (
	"context"
	"time"
)

// EventType names the kind of event being published; the marketplace uses
// one type per notification topic.
type EventType string

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
