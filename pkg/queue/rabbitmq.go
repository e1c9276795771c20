package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"tradelink/pkg/config"
	"tradelink/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RechargeAlertQueueName  = "recharge_alert_queue"
	RechargeAlertExchange   = "recharge_alerts"
	rechargeAlertRoutingKey = "recharge_pending"
)

// RechargeAlertTask is published when a top-up order lands in the review
// queue; the alert worker turns it into an admin SMS.
type RechargeAlertTask struct {
	OrderID   string  `json:"order_id"`
	OrderNo   string  `json:"order_no"`
	UserPhone string  `json:"user_phone"`
	Amount    float64 `json:"amount"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		RechargeAlertExchange, // name
		"direct",              // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		RechargeAlertQueueName, // name
		true,                   // durable
		false,                  // delete when unused
		false,                  // exclusive
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		RechargeAlertQueueName,
		rechargeAlertRoutingKey,
		RechargeAlertExchange,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishRechargeAlert enqueues an admin-review alert for a new top-up order.
func (c *Client) PublishRechargeAlert(task RechargeAlertTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = c.channel.Publish(
		RechargeAlertExchange,
		rechargeAlertRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish recharge alert for order %s: %v", task.OrderNo, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published recharge alert for order %s", task.OrderNo)
	return nil
}

// ConsumeRechargeAlerts delivers queued alert tasks to handler. A handler
// error nacks and requeues the message.
func (c *Client) ConsumeRechargeAlerts(handler func(task RechargeAlertTask) error) error {
	msgs, err := c.channel.Consume(
		RechargeAlertQueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from %s", RechargeAlertQueueName)

	go func() {
		for msg := range msgs {
			var task RechargeAlertTask
			if err := json.Unmarshal(msg.Body, &task); err != nil {
				c.logger.Error("[RABBITMQ] Failed to unmarshal alert task: %v, body=%s", err, string(msg.Body))
				msg.Nack(false, false)
				continue
			}

			if err := handler(task); err != nil {
				c.logger.Error("[RABBITMQ] Handler failed for order %s: %v", task.OrderNo, err)
				msg.Nack(false, true)
				continue
			}

			msg.Ack(false)
		}
	}()

	return nil
}
