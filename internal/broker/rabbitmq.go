// Package broker publishes company mutation events to RabbitMQ. The ws
// binary consumes the queue and fans events out to dashboard clients.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event describes one successful networked mutation.
type Event struct {
	Action      string `json:"action"` // created|updated|deleted|response_added|requirements_added|shortlist_toggled
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName,omitempty"`
	ActorID     string `json:"actorId,omitempty"`
	Timestamp   string `json:"timestamp"`
}

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(uri, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	// durable queue so events survive a broker restart
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// PublishEvent marshals the event and publishes it persistently to the
// default exchange with the queue as routing key.
func (p *Publisher) PublishEvent(ctx context.Context, ev Event) error {
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ctx == nil {
		c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ctx = c
	}
	return p.ch.PublishWithContext(
		ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			Headers: amqp.Table{
				"action":     ev.Action,
				"company_id": ev.CompanyID,
			},
		},
	)
}

func (p *Publisher) Close() error {
	var errCh, errConn error
	if p.ch != nil {
		errCh = p.ch.Close()
	}
	if p.conn != nil {
		errConn = p.conn.Close()
	}
	return errors.Join(errCh, errConn)
}
