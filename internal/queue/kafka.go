package queue

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
	"github.com/vigilo-hq/vigilo/internal/pkg/logger"
)

const (
	maxPollWait    = 500 * time.Millisecond
	commitInterval = 0 // synchronous commits; offsets advance only after handling
)

// NewReaderConfig builds the shared at-least-once reader configuration
// for one lane.
func NewReaderConfig(brokers []string, lane, groupID string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          lane,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        maxPollWait,
		CommitInterval: commitInterval,
		StartOffset:    kafka.FirstOffset,
	}
}

// KafkaProducer publishes envelopes onto Kafka lanes. One shared writer
// handles every lane; the topic rides on each message.
type KafkaProducer struct {
	writer *kafka.Writer
	logger *logger.Logger
}

// NewKafkaProducer creates a producer against the given brokers
func NewKafkaProducer(brokers []string, log *logger.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: log,
	}
}

// Publish encodes the event and writes it to its lane, keyed by event
// ID so retries of the same event land on the same partition.
func (p *KafkaProducer) Publish(ctx context.Context, ev event.Event) error {
	data, err := event.Encode(ev)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: ev.QueueName(),
		Key:   []byte(ev.ID()),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Delivery("failed to publish event", err)
	}

	p.logger.WithFields(map[string]interface{}{
		"event_id": ev.ID(),
		"lane":     ev.QueueName(),
	}).Debug("Event published")
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// KafkaConsumer runs one reader per lane in its own goroutine. Messages
// are committed only after the handler succeeds, so a crash mid-handle
// redelivers.
type KafkaConsumer struct {
	readers []*kafka.Reader
	logger  *logger.Logger
}

// NewKafkaConsumer creates readers for every lane under one group ID
func NewKafkaConsumer(brokers []string, groupID string, log *logger.Logger) *KafkaConsumer {
	readers := make([]*kafka.Reader, 0, len(Lanes()))
	for _, lane := range Lanes() {
		readers = append(readers, kafka.NewReader(NewReaderConfig(brokers, lane, groupID)))
	}
	return &KafkaConsumer{readers: readers, logger: log}
}

// Run consumes all lanes until the context is cancelled
func (c *KafkaConsumer) Run(ctx context.Context, h Handler) error {
	var wg sync.WaitGroup
	for _, r := range c.readers {
		wg.Add(1)
		go func(r *kafka.Reader) {
			defer wg.Done()
			c.consume(ctx, r, h)
		}(r)
	}
	wg.Wait()
	return ctx.Err()
}

func (c *KafkaConsumer) consume(ctx context.Context, r *kafka.Reader, h Handler) {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.ErrorWithErr(err, "Failed to fetch message")
			continue
		}

		ev, err := event.Decode(msg.Value)
		if err != nil {
			// Undecodable messages are committed: redelivering them can
			// never succeed.
			c.logger.WithFields(map[string]interface{}{
				"lane":   msg.Topic,
				"offset": msg.Offset,
			}).ErrorWithErr(err, "Dropping undecodable message")
			c.commit(ctx, r, msg)
			continue
		}

		if err := h(ctx, ev); err != nil {
			// Leave the offset uncommitted so the lane redelivers.
			c.logger.WithFields(map[string]interface{}{
				"event_id": ev.ID(),
				"lane":     msg.Topic,
			}).ErrorWithErr(err, "Handler failed, message will be redelivered")
			continue
		}

		c.commit(ctx, r, msg)
	}
}

func (c *KafkaConsumer) commit(ctx context.Context, r *kafka.Reader, msg kafka.Message) {
	if err := r.CommitMessages(ctx, msg); err != nil {
		c.logger.ErrorWithErr(err, "Failed to commit offset")
	}
}

func (c *KafkaConsumer) Close() error {
	var firstErr error
	for _, r := range c.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
