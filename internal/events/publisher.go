package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Publisher announces resource state changes to other services. Delivery is
// at-least-once; consumers must tolerate duplicates.
type Publisher interface {
	Emit(ctx context.Context, topic Topic, payload Payload) error
}

// Bus is the stream transport the publisher writes to. Implemented by the
// Redis client wrapper (one stream per topic).
type Bus interface {
	AddToStream(ctx context.Context, stream string, values map[string]interface{}) error
}

// StreamPublisher writes events to one stream per topic, stamping each entry
// with the emission time and the originating service before transmission.
type StreamPublisher struct {
	bus     Bus
	service string
	now     func() time.Time
}

// NewStreamPublisher creates a publisher tagged with the originating service name.
func NewStreamPublisher(bus Bus, service string) *StreamPublisher {
	return &StreamPublisher{bus: bus, service: service, now: time.Now}
}

// Emit publishes a single event. The caller decides whether a failure
// propagates; the publisher itself never retries.
func (p *StreamPublisher) Emit(ctx context.Context, topic Topic, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}

	values := map[string]interface{}{
		"key":       payload.EventKey(),
		"data":      string(data),
		"timestamp": p.now().UTC().Format(time.RFC3339),
		"service":   p.service,
	}
	if err := p.bus.AddToStream(ctx, string(topic), values); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
