package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/utils"
)

const (
	DefaultExchange = "cashier.events"
	publishTimeout  = 3 * time.Second
)

// Envelope is the body of every audit message.
type Envelope struct {
	Key        string      `json:"key"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// Publisher sends settlement and merge events to a RabbitMQ topic exchange.
// Failures are logged and swallowed: the audit trail never blocks the till.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

// New dials url and declares the exchange. An empty url yields (nil, nil).
func New(url, exchange string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	p := &Publisher{conn: conn, ch: ch, exchange: exchange}
	if err := p.ensureExchange(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureExchange() error {
	return p.ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

// Publish -> JSON envelope on the exchange with routingKey
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	body, err := json.Marshal(Envelope{Key: routingKey, Payload: payload, OccurredAt: time.Now()})
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("key", routingKey).Error("Error marshaling audit event")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	})
	p.mu.Unlock()

	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"exchange": p.exchange,
			"key":      routingKey,
		}).WithError(err).Error("Error publishing audit event")
		return
	}
	utils.InfoLogger.WithField("key", routingKey).Debug("Audit event published")
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
