package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher sends each topic to a durable queue of the same name
// through the default exchange.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	if url == "" {
		return nil, errors.New("rabbitmq: RABBITMQ_URL is empty")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	return &RabbitPublisher{conn: conn, ch: ch, declared: map[string]bool{}}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, topic string, ev Event) error {
	body, err := ev.encode()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[topic] {
		if _, err := p.ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq: declare %s: %w", topic, err)
		}
		p.declared[topic] = true
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.Key,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", topic, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish to %s: %w", topic, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.ch.Close(), p.conn.Close())
}
