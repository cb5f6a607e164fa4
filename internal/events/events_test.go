package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/erazemk/dijaskidom/internal/config"
	"github.com/erazemk/dijaskidom/internal/model"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	room := int64(10)
	tx := &model.Transaction{
		ID:          7,
		ItemID:      42,
		DormID:      1,
		Type:        model.TxAssign,
		Quantity:    3,
		ToRoomID:    &room,
		PerformedBy: 5,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := p.Publish(context.Background(), tx); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}

	msg := w.msgs[0]
	if string(msg.Key) != "42" {
		t.Errorf("expected key 42, got %q", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "assign" {
		t.Errorf("unexpected headers: %+v", msg.Headers)
	}

	var got model.Transaction
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("decoding value: %v", err)
	}
	if got.ID != 7 || got.Quantity != 3 || got.ToRoomID == nil || *got.ToRoomID != 10 {
		t.Errorf("unexpected payload: %+v", got)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("expected writer to be closed, err=%v", err)
	}
}

func TestKafkaPublisherWriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("no brokers")}}

	err := p.Publish(context.Background(), &model.Transaction{ID: 1, ItemID: 1, Type: model.TxReceive, Quantity: 1})
	if err == nil {
		t.Error("expected write error")
	}
}

func TestNewWithoutBrokers(t *testing.T) {
	p := New(config.Kafka{Topic: "x"})
	if _, ok := p.(Nop); !ok {
		t.Fatalf("expected Nop publisher, got %T", p)
	}
	if err := p.Publish(context.Background(), &model.Transaction{}); err != nil {
		t.Errorf("Nop.Publish: %v", err)
	}
}

func TestNewWithBrokers(t *testing.T) {
	p := New(config.Kafka{Brokers: []string{"localhost:9092"}, Topic: "inv"})
	kp, ok := p.(*KafkaPublisher)
	if !ok {
		t.Fatalf("expected *KafkaPublisher, got %T", p)
	}
	w, ok := kp.writer.(*kafka.Writer)
	if !ok || w.Topic != "inv" {
		t.Errorf("unexpected writer: %+v", kp.writer)
	}
}
