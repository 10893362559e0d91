package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

var ErrPublisherClosed = errors.New("publisher is closed")

const headerEventType = "event-type"

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	MaxAttempts  int
}

// KafkaPublisher writes booking events keyed by class id so every event for
// one class lands on the same partition. Writes are asynchronous: callers
// publish while holding the class lock, so enqueue order is admission order,
// and delivery failures are reported through the completion log.
type KafkaPublisher struct {
	writer *kafka.Writer
	mu     sync.RWMutex
	closed bool
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  compress.Snappy,
		MaxAttempts:  cfg.MaxAttempts,
		BatchTimeout: cfg.BatchTimeout,
		Async:        true,
		Completion:   logCompletion,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:  kafka.LoggerFunc(log.Printf),
	}

	return &KafkaPublisher{writer: writer}, nil
}

func (p *KafkaPublisher) PublishBookingCreated(ctx context.Context, ev BookingCreated) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	msg, err := bookingMessage(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func logCompletion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		log.Printf("booking_event_undelivered class_id=%s offset=%d error=%q", m.Key, m.Offset, err.Error())
	}
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

func bookingMessage(ev BookingCreated) (kafka.Message, error) {
	if ev.ClassID == "" {
		return kafka.Message{}, fmt.Errorf("booking event without class id")
	}
	ev.Type = TypeBookingCreated

	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode booking event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(ev.ClassID),
		Value: value,
		Time:  ev.BookedAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(TypeBookingCreated)},
		},
	}, nil
}
