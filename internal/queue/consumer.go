package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

// Consumer listens on every booking queue and writes one structured log
// line per event.  The sink is usually a rotating file logger.
type Consumer struct {
	url  string
	sink *slog.Logger
	log  *slog.Logger
}

// NewConsumer returns a Consumer.  sink receives the events, log the
// consumer's own diagnostics.
func NewConsumer(url string, sink, log *slog.Logger) *Consumer {
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{url: url, sink: sink, log: log}
}

// Run connects to the broker and consumes until ctx is cancelled.
// Connection failures are retried with exponential backoff capped at
// 30 seconds.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("booking-consumer: dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("booking-consumer: consume loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking-consumer: set QoS failed", "err", err)
	}

	deliveries := make([]<-chan amqp.Delivery, 0, len(Queues))
	for _, q := range Queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		deliveries = append(deliveries, msgs)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, msgs := range deliveries {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case d, ok := <-msgs:
					if !ok {
						return errors.New("deliveries channel closed")
					}
					c.deliver(d)
				}
			}
		})
	}
	return g.Wait()
}

func (c *Consumer) deliver(d amqp.Delivery) {
	if err := c.Handle(d.Body); err != nil {
		c.log.Warn("booking-consumer: handle message failed", "queue", d.RoutingKey, "err", err)
		_ = d.Nack(false, false) // reject without requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

// Handle decodes one message body and writes it to the sink.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == "" {
		return errors.New("event without type or booking id")
	}
	attrs := []any{
		"booking_id", ev.BookingID,
		"staff_id", ev.StaffID,
		"date", ev.Date,
		"start", ev.Start,
		"end", ev.End,
		"status", ev.Status,
		"occurred_at", ev.OccurredAt.Format(time.RFC3339),
	}
	if ev.CustomerID != "" {
		attrs = append(attrs, "customer_id", ev.CustomerID)
	}
	if ev.BedID != nil {
		attrs = append(attrs, "bed_id", *ev.BedID)
	}
	if len(ev.TicketIDs) > 0 {
		attrs = append(attrs, "tickets", ev.TicketIDs)
	}
	if ev.SessionsRestored > 0 {
		attrs = append(attrs, "sessions_restored", ev.SessionsRestored)
	}
	c.sink.Info(ev.Type, attrs...)
	return nil
}
