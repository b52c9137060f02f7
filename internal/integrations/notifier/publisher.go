package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Channel часть *amqp.Channel, нужная для публикации
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Message запрос на отправку уведомления. Рендеринг шаблона и доставка выполняются потребителем очереди
type Message struct {
	ID        string            `json:"id"`
	Template  string            `json:"template"`
	Recipient string            `json:"recipient"`
	Vars      map[string]string `json:"vars"`
	CreatedAt time.Time         `json:"created_at"`
}

// Publisher публикует запросы уведомлений в durable-очередь RabbitMQ
type Publisher struct {
	mu    sync.Mutex
	ch    Channel
	conn  *amqp.Connection
	queue string
	log   Logger
}

// Dial подключается к брокеру и объявляет очередь (идемпотентно)
func Dial(url, queue string, log Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare queue %s: %v", ErrConnect, queue, err)
	}

	p := NewPublisher(ch, queue, log)
	p.conn = conn
	return p, nil
}

// NewPublisher создает издателя поверх готового канала
func NewPublisher(ch Channel, queue string, log Logger) *Publisher {
	return &Publisher{ch: ch, queue: queue, log: log}
}

// Notify публикует persistent JSON-сообщение в очередь
func (p *Publisher) Notify(ctx context.Context, template, recipient string, vars map[string]string) error {
	if recipient == "" {
		return ErrEmptyRecipient
	}

	msg := Message{
		ID:        uuid.NewString(),
		Template:  template,
		Recipient: recipient,
		Vars:      vars,
		CreatedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPublish, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    msg.CreatedAt,
		Type:         template,
		Body:         body,
	}

	// Канал AMQP не рассчитан на конкурентную публикацию
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub)
	p.mu.Unlock()
	if err != nil {
		p.log.Error("Notify: publish %s to %s failed: %v", template, p.queue, err)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	p.log.Info("Notify: queued %s (message_id=%s)", template, msg.ID)
	return nil
}

// Close закрывает соединение с брокером
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// LogNotifier пишет уведомления в лог, когда очередь отключена
type LogNotifier struct {
	log Logger
}

func NewLogNotifier(log Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, template, recipient string, vars map[string]string) error {
	n.log.Info("Notify (disabled): template=%s recipient=%s vars=%v", template, recipient, vars)
	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}
