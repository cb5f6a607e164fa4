// Package events publishes committed ledger transactions to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/erazemk/dijaskidom/internal/config"
	"github.com/erazemk/dijaskidom/internal/model"
)

// Publisher hands a committed transaction to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, t *model.Transaction) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per transaction, keyed by item so that
// every movement of an item lands on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
}

// New returns a Kafka publisher for cfg, or a no-op publisher when no
// brokers are configured.
func New(cfg config.Kafka) Publisher {
	if len(cfg.Brokers) == 0 {
		return Nop{}
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

// Publish encodes t as JSON and writes it.
func (p *KafkaPublisher) Publish(ctx context.Context, t *model.Transaction) error {
	msg, err := message(t)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing transaction %d: %w", t.ID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func message(t *model.Transaction) (kafka.Message, error) {
	value, err := json.Marshal(t)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encoding transaction %d: %w", t.ID, err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(t.ItemID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(t.Type)},
		},
		Time: t.CreatedAt,
	}, nil
}

// Nop discards every transaction.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, *model.Transaction) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
