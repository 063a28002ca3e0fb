package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishBookingConfirmed keys messages by show so events of one show stay ordered.
func (p *KafkaPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ShowID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

const (
	defaultHandleAttempts = 5
	defaultRetryDelay     = 500 * time.Millisecond
)

type KafkaConsumer struct {
	reader *kafka.Reader
	logger *slog.Logger
	// attempts bounds how often a transiently failing event is handled before its
	// offset is committed anyway.
	attempts   int
	retryDelay time.Duration
}

func NewKafkaConsumer(brokers []string, topic, groupID string, logger *slog.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
		logger:     logger,
		attempts:   defaultHandleAttempts,
		retryDelay: defaultRetryDelay,
	}
}

// Run commits the offset of a message once it has been handled, failed permanently, or
// exhausted its attempts. It returns when ctx is cancelled.
func (c *KafkaConsumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}

			c.logger.Error("failed to fetch message", "error", err)
			continue
		}

		var event BookingConfirmed

		err = json.Unmarshal(msg.Value, &event)
		if err != nil {
			c.logger.Error("dropping malformed event", "offset", msg.Offset, "error", err)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		err = c.handleWithRetry(ctx, handle, event)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			c.logger.Error("dropping event", "booking_id", event.BookingID, "offset", msg.Offset, "error", err)
		}

		err = c.reader.CommitMessages(ctx, msg)
		if err != nil {
			c.logger.Error("failed to commit offset", "offset", msg.Offset, "error", err)
		}
	}
}

// handleWithRetry retries transient failures with a linear backoff. ErrPermanent
// failures are returned at once.
func (c *KafkaConsumer) handleWithRetry(ctx context.Context, handle Handler, event BookingConfirmed) error {
	var err error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		err = handle(ctx, event)
		if err == nil || errors.Is(err, ErrPermanent) {
			return err
		}

		if attempt == c.attempts {
			break
		}

		c.logger.Warn("failed to handle event, retrying",
			"booking_id", event.BookingID,
			"attempt", attempt,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.retryDelay):
		}
	}

	return err
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
