package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 5 * time.Second

// ChannelOpener hands out a dedicated AMQP channel per consumer.
type ChannelOpener interface {
	ConsumerChannel() (*amqp.Channel, error)
}

type handleFunc func(ctx context.Context, body []byte) error

// permanentError marks a message that will never succeed. It is dropped
// instead of requeued.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }

// settle decides what happens to a delivery after handling.
func settle(err error) (ack, requeue bool) {
	if err == nil {
		return true, false
	}
	var p *permanentError
	return false, !errors.As(err, &p)
}

type consumer struct {
	opener ChannelOpener
	queue  string
	tag    string
	handle handleFunc
	logger *slog.Logger
}

// start consumes until ctx is done, reopening the channel after failures.
func (c *consumer) start(ctx context.Context) {
	c.logger.Info("worker started", slog.String("queue", c.queue))
	for {
		err := c.run(ctx)
		if ctx.Err() != nil {
			c.logger.Info("worker stopped", slog.String("queue", c.queue))
			return
		}
		c.logger.Error("worker interrupted, reconnecting",
			slog.String("queue", c.queue),
			slog.Duration("delay", reconnectDelay),
			slog.Any("err", err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *consumer) run(ctx context.Context) error {
	channel, err := c.opener.ConsumerChannel()
	if err != nil {
		return err
	}
	defer channel.Close()

	if err := channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("setting qos: %w", err)
	}

	msgs, err := channel.Consume(
		c.queue, // queue
		c.tag,   // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("creating consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.process(ctx, msg)
		}
	}
}

func (c *consumer) process(ctx context.Context, msg amqp.Delivery) {
	err := c.handle(ctx, msg.Body)
	ack, requeue := settle(err)
	if ack {
		if err := msg.Ack(false); err != nil {
			c.logger.Warn("ack failed", slog.String("queue", c.queue), slog.Any("err", err))
		}
		return
	}

	c.logger.Error("message handling failed",
		slog.String("queue", c.queue),
		slog.Bool("requeue", requeue),
		slog.Any("err", err))
	if err := msg.Nack(false, requeue); err != nil {
		c.logger.Warn("nack failed", slog.String("queue", c.queue), slog.Any("err", err))
	}
}
