// Package broker publishes order lifecycle events to RabbitMQ. Publishing is
// best effort: failures are logged by the caller and never fail the mutation
// that produced the event.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"canteen/internal/domain/models"
	"canteen/internal/xpkg/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

const ordersExchange = "orders_fanout"

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func ConnectRabbitMQ(cfg *config.RabbitMQ) (*RabbitMQ, error) {
	connStr := fmt.Sprintf("amqp://%s:%s@%s:%s/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.VHost)

	conn, err := amqp.Dial(connStr)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = channel.ExchangeDeclare(
		ordersExchange, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQ{conn: conn, channel: channel}, nil
}

func (r *RabbitMQ) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.channel.PublishWithContext(pubCtx,
		ordersExchange, // exchange
		"",             // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		})
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// Noop stands in when no rabbitmq block is configured.
type Noop struct{}

func (Noop) PublishOrderEvent(context.Context, models.OrderEvent) error { return nil }
func (Noop) Close() error                                               { return nil }
