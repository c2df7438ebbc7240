package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// CheckoutExchange — exchange для событий оформления.
const CheckoutExchange = "checkout"

// QueueConfig описывает очередь и ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetCheckoutQueues возвращает очереди событий оформления.
func GetCheckoutQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "checkout.locked", RoutingKey: "locked"},
		{QueueName: "checkout.expired", RoutingKey: "expired"},
		{QueueName: "checkout.cancelled", RoutingKey: "cancelled"},
	}
}

// SetupChannel открывает канал, объявляет exchange и привязывает очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		CheckoutExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			CheckoutExchange,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
