package rabbitmq

import "github.com/streadway/amqp"

// CheckoutPublisher публикует события оформления в exchange "checkout".
type CheckoutPublisher struct {
	ch *amqp.Channel
}

// NewCheckoutPublisher создает новый экземпляр CheckoutPublisher.
func NewCheckoutPublisher(ch *amqp.Channel) *CheckoutPublisher {
	return &CheckoutPublisher{ch: ch}
}

// Publish отправляет сообщение с заданным ключом маршрутизации.
func (p *CheckoutPublisher) Publish(routingKey string, message any) error {
	return PublishMessage(p.ch, CheckoutExchange, routingKey, message)
}
