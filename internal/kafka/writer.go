package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"socialnet/backend/internal/intimate"
	"socialnet/backend/internal/models"

	k "github.com/segmentio/kafka-go"
)

// Writer publishes intimate events to a topic, keyed by the pair so every
// event of one relation lands on the same partition.
type Writer struct {
	w *k.Writer
}

func NewWriter(brokers, topic string) *Writer {
	w := &k.Writer{
		Addr:         k.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &k.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: k.RequireOne,
		Async:        true,
	}
	return &Writer{w: w}
}

func (w *Writer) Close() error { return w.w.Close() }

func (w *Writer) Publish(ctx context.Context, e intimate.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return w.w.WriteMessages(ctx, Message(e, value))
}

// Message builds the kafka message for an encoded event.
func Message(e intimate.Event, value []byte) k.Message {
	return k.Message{
		Key:   []byte(models.PairKey(e.SenderID, e.ReceiverID)),
		Value: value,
		Time:  e.At,
		Headers: []k.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
}
