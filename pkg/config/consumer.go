package config

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// Consumer reads messages from a durable queue with manual acks.
type Consumer struct {
	channel *amqp.Channel
	queue   string
}

func NewConsumer(conn *amqp.Connection, queueName string) (*Consumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection not initialized")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	q, err := declareQueue(ch, queueName)
	if err != nil {
		ch.Close()
		return nil, err
	}
	if err := ch.Qos(10, 0, false); err != nil {
		ch.Close()
		return nil, err
	}

	return &Consumer{channel: ch, queue: q.Name}, nil
}

// Consume runs handler for each message until ctx is cancelled or the channel
// closes. A failed message is requeued once; a redelivered one that fails
// again is dropped.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}

	log.Infof("consumer is running on queue %s", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queue)
			}
			if err := handler(ctx, msg.Body); err != nil {
				log.Warnf("handle msg failed: %v", err)
				msg.Nack(false, !msg.Redelivered)
				continue
			}
			msg.Ack(false)
		}
	}
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
