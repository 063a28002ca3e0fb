package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultRedeliveryDelay = time.Second

func deadLetterQueue(queue string) string {
	return queue + ".dead"
}

// declareQueue is idempotent. Both queues are durable so events survive a broker
// restart, and rejected deliveries are routed to the dead-letter queue.
func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(deadLetterQueue(queue), true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", deadLetterQueue(queue), err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": deadLetterQueue(queue),
		},
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return nil
}

type AMQPPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = declareQueue(ch, queue)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &AMQPPublisher{
		conn:  conn,
		ch:    ch,
		queue: queue,
	}, nil
}

func (p *AMQPPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		MessageId:    event.BookingID.String(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

func (p *AMQPPublisher) Close() error {
	return errors.Join(p.ch.Close(), p.conn.Close())
}

type AMQPConsumer struct {
	url    string
	queue  string
	logger *slog.Logger
	// redeliveryDelay is the pause before a transiently failed event is requeued.
	redeliveryDelay time.Duration
}

func NewAMQPConsumer(url, queue string, logger *slog.Logger) *AMQPConsumer {
	return &AMQPConsumer{
		url:             url,
		queue:           queue,
		logger:          logger,
		redeliveryDelay: defaultRedeliveryDelay,
	}
}

// Run keeps reconnecting with exponential backoff until ctx is cancelled.
func (c *AMQPConsumer) Run(ctx context.Context, handle Handler) error {
	backoff := time.Second

	for {
		err := c.consume(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Error("consume loop ended, reconnecting", "error", err, "backoff", backoff.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *AMQPConsumer) consume(ctx context.Context, handle Handler) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	err = ch.Qos(50, 0, false)
	if err != nil {
		c.logger.Warn("failed to set qos", "error", err)
	}

	err = declareQueue(ch, c.queue)
	if err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		c.process(ctx, d, handle)
	}

	return errors.New("deliveries channel closed")
}

// process acks handled events, dead-letters malformed events and permanent failures,
// and requeues the rest after redeliveryDelay.
func (c *AMQPConsumer) process(ctx context.Context, d amqp.Delivery, handle Handler) {
	var event BookingConfirmed

	err := json.Unmarshal(d.Body, &event)
	if err != nil {
		c.logger.Error("dead-lettering malformed event", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}

	err = handle(ctx, event)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrPermanent):
		c.logger.Error("dead-lettering event", "booking_id", event.BookingID, "error", err)
		_ = d.Nack(false, false)
	default:
		c.logger.Warn("failed to handle event, requeueing",
			"booking_id", event.BookingID,
			"redelivered", d.Redelivered,
			"error", err)

		select {
		case <-ctx.Done():
		case <-time.After(c.redeliveryDelay):
		}

		_ = d.Nack(false, true)
	}
}
