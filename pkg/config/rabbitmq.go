package config

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const (
	rabbitMQMaxRetries = 10
	rabbitMQRetryDelay = 3 * time.Second
)

// RabbitMQURL builds the AMQP URL from settings.
func (s Settings) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		s.RabbitMQUser,
		s.RabbitMQPassword,
		s.RabbitMQHost,
		s.RabbitMQPort,
	)
}

// DialRabbitMQ connects to the broker, retrying while it comes up.
func DialRabbitMQ(ctx context.Context, s Settings) (*amqp.Connection, error) {
	var err error
	for i := 0; i < rabbitMQMaxRetries; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(s.RabbitMQURL())
		if err == nil {
			log.Infof("connected to RabbitMQ at %s", s.RabbitMQHost)
			return conn, nil
		}

		if i < rabbitMQMaxRetries-1 {
			log.Warnf("failed to connect to RabbitMQ (attempt %d/%d): %v, retrying in %v", i+1, rabbitMQMaxRetries, err, rabbitMQRetryDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(rabbitMQRetryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", rabbitMQMaxRetries, err)
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}

// PurgeQueue removes all messages from a queue without deleting it.
func PurgeQueue(conn *amqp.Connection, queueName string) error {
	if conn == nil {
		return fmt.Errorf("RabbitMQ connection not initialized")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	n, err := ch.QueuePurge(queueName, false)
	if err != nil {
		return fmt.Errorf("failed to purge queue %s: %w", queueName, err)
	}
	log.Infof("purged %d messages from RabbitMQ queue %s", n, queueName)
	return nil
}
