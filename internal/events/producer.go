// Package events publishes frontend activity (cart mutations, checkouts,
// report submissions) to Kafka for the analytics pipeline. Publishing is best
// effort: failures are logged and never affect the request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const Topic = "frontend_events"

type Envelope struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	UserID string         `json:"user_id"`
	At     time.Time      `json:"at"`
	Data   map[string]any `json:"data,omitempty"`
}

// Producer wraps a kafka writer. A nil *Producer is valid and publishes
// nothing, so callers never branch on whether Kafka is configured.
type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewProducer(brokers []string, log *slog.Logger) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Producer{writer: w, log: log}
}

// Publish sends one event keyed by user id. Guest activity is keyed "guest"
// so per-visitor partition ordering still holds.
func (p *Producer) Publish(ctx context.Context, eventType, userID string, data map[string]any) {
	if p == nil {
		return
	}
	if userID == "" {
		userID = "guest"
	}

	env := Envelope{
		ID:     uuid.NewString(),
		Type:   eventType,
		UserID: userID,
		At:     time.Now().UTC(),
		Data:   data,
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.log.Error("events: encode failed", "type", eventType, "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(userID),
		Value: value,
	}); err != nil {
		p.log.Error("events: publish failed", "type", eventType, "error", err)
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}
