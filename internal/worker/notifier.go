package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamEzaz/baribhara/internal/events"
)

// StreamReader is the notifier's view of the event bus. Implemented by the
// Redis client wrapper.
type StreamReader interface {
	ReadStreams(ctx context.Context, streams []string, block time.Duration) ([]redis.XStream, error)
}

// Notification is the message pushed to websocket clients for each domain
// event.
type Notification struct {
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp"`
	Service   string          `json:"service,omitempty"`
}

// Notifier tails the event streams and pushes each new entry to the hub.
// Reads start at the stream tails, so clients only see events that happen
// while they are connected.
type Notifier struct {
	reader StreamReader
	hub    *Hub
	logger *slog.Logger
	block  time.Duration
}

// NewNotifier creates a notifier for all event topics
func NewNotifier(reader StreamReader, hub *Hub, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{reader: reader, hub: hub, logger: logger, block: 5 * time.Second}
}

// Start runs the tail loop until the context is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	topics := events.AllTopics()
	lastIDs := make(map[string]string, len(topics))
	for _, t := range topics {
		lastIDs[string(t)] = "$"
	}
	n.logger.Info("event notifier started", slog.Int("topics", len(topics)))

	for {
		if ctx.Err() != nil {
			n.logger.Info("event notifier stopped")
			return
		}

		// XRead wants names first, then the matching last-seen IDs
		streams := make([]string, 0, len(topics)*2)
		for _, t := range topics {
			streams = append(streams, string(t))
		}
		for _, t := range topics {
			streams = append(streams, lastIDs[string(t)])
		}

		results, err := n.reader.ReadStreams(ctx, streams, n.block)
		if err != nil {
			if ctx.Err() != nil {
				n.logger.Info("event notifier stopped")
				return
			}
			n.logger.Error("failed to read event streams", slog.String("error", err.Error()))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastIDs[stream.Stream] = msg.ID
				n.push(stream.Stream, msg.Values)
			}
		}
	}
}

func (n *Notifier) push(topic string, values map[string]interface{}) {
	note := Notification{Topic: topic}
	if v, ok := values["key"].(string); ok {
		note.Key = v
	}
	if v, ok := values["data"].(string); ok {
		note.Data = json.RawMessage(v)
	}
	if v, ok := values["timestamp"].(string); ok {
		note.Timestamp = v
	}
	if v, ok := values["service"].(string); ok {
		note.Service = v
	}

	raw, err := json.Marshal(note)
	if err != nil {
		n.logger.Error("failed to encode notification", slog.String("error", err.Error()))
		return
	}
	n.hub.Broadcast(raw)
}
