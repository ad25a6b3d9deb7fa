package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/St1cky1/task-portal/internal/entity"
)

const (
	AuditQueue = "task_audit_logs"
	EmailQueue = "mention_emails"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

func declareQueues(ch *amqp.Channel) error {
	// Объявляем очереди аудита и писем
	for _, name := range []string{AuditQueue, EmailQueue} {
		_, err := ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declaring queue %s: %w", name, err)
		}
	}
	return nil
}

func NewRabbitMQClient(url string, logger *slog.Logger) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := declareQueues(channel); err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		logger:  logger,
	}, nil
}

// ConsumerChannel возвращает отдельный AMQP channel для consumer'а
func (c *RabbitMQClient) ConsumerChannel() (*amqp.Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening consumer channel: %w", err)
	}
	return ch, nil
}

func (c *RabbitMQClient) publishJSON(ctx context.Context, queue string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.channel.PublishWithContext(
		ctx,
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}

func (c *RabbitMQClient) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	if err := c.publishJSON(ctx, AuditQueue, message); err != nil {
		return fmt.Errorf("publishing audit message: %w", err)
	}
	c.logger.Debug("audit message queued",
		slog.String("action", string(message.Action)),
		slog.String("entity_id", message.EntityID))
	return nil
}

// PublishEmail ставит письмо в очередь, доставка не подтверждается
func (c *RabbitMQClient) PublishEmail(ctx context.Context, message *entity.EmailMessage) error {
	if err := c.publishJSON(ctx, EmailQueue, message); err != nil {
		return fmt.Errorf("publishing email: %w", err)
	}
	c.logger.Debug("email queued", slog.String("template", message.Template))
	return nil
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
