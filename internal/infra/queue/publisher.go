package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("queue: failed to publish event")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

// Publisher публикует события бронирований в RabbitMQ
// Соединение открывается при первой публикации и переоткрывается после обрыва
type Publisher struct {
	url     string
	queue   string
	timeout time.Duration
	logger  Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher создает издателя событий
func NewPublisher(url, queue string, timeout time.Duration, logger Logger) *Publisher {
	return &Publisher{
		url:     url,
		queue:   queue,
		timeout: timeout,
		logger:  logger,
	}
}

// Publish отправляет событие в durable очередь с persistent доставкой
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrPublish, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = ch.PublishWithContext(pubCtx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt.UTC(),
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		p.reset()
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return nil
}

// Close закрывает соединение с брокером
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.ch = nil, nil
	return err
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.timeout)})
	if err != nil {
		return nil, fmt.Errorf("dial: %v", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %v", err)
	}

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %v", p.queue, err)
	}

	p.logger.Info("Publisher: connected to rabbitmq, queue=%s", p.queue)
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// NopPublisher издатель, который ничего не отправляет
type NopPublisher struct{}

// Publish ничего не делает
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close ничего не делает
func (NopPublisher) Close() error { return nil }
