// internal/queue/queue.go
package queue

import (
    "encoding/json"
    "log"

    "github.com/streadway/amqp"
)

// Nudge tells the worker an event was just queued. The database stays the
// system of record; a lost nudge only delays delivery until the next poll.
type Nudge struct {
    EventID string `json:"event_id"`
}

// Publisher announces queued events to the worker.
type Publisher interface {
    EventQueued(eventID string) error
}

// AMQPPublisher publishes nudges onto a durable RabbitMQ queue.
type AMQPPublisher struct {
    ch    *amqp.Channel
    queue string
}

// NewAMQPPublisher opens a channel on the connection and declares the queue.
func NewAMQPPublisher(conn *amqp.Connection, queueName string) (*AMQPPublisher, error) {
    ch, err := conn.Channel()
    if err != nil {
        return nil, err
    }
    if err := declareQueue(ch, queueName); err != nil {
        ch.Close()
        return nil, err
    }
    return &AMQPPublisher{ch: ch, queue: queueName}, nil
}

func (p *AMQPPublisher) EventQueued(eventID string) error {
    body, err := json.Marshal(Nudge{EventID: eventID})
    if err != nil {
        return err
    }
    return p.ch.Publish(
        "",      // exchange
        p.queue, // routing key
        false,   // mandatory
        false,   // immediate
        amqp.Publishing{
            ContentType: "application/json",
            Body:        body,
        },
    )
}

func (p *AMQPPublisher) Close() error {
    return p.ch.Close()
}

// NoopPublisher drops nudges. Used when the broker is unavailable: the
// worker's poll ticker picks the events up instead.
type NoopPublisher struct{}

func (NoopPublisher) EventQueued(string) error { return nil }

// Consume delivers nudges to handler until the channel closes. Malformed
// payloads are acked and dropped.
func Consume(conn *amqp.Connection, queueName string, handler func(Nudge)) error {
    ch, err := conn.Channel()
    if err != nil {
        return err
    }
    if err := declareQueue(ch, queueName); err != nil {
        return err
    }

    msgs, err := ch.Consume(
        queueName,
        "",    // consumer tag
        false, // autoAck = false for reliability
        false,
        false,
        false,
        nil,
    )
    if err != nil {
        return err
    }

    for d := range msgs {
        var nudge Nudge
        if err := json.Unmarshal(d.Body, &nudge); err != nil {
            log.Println("invalid nudge payload:", err)
            d.Ack(false)
            continue
        }
        handler(nudge)
        d.Ack(false)
    }
    return nil
}

func declareQueue(ch *amqp.Channel, name string) error {
    _, err := ch.QueueDeclare(
        name,
        true,  // durable
        false, // delete when unused
        false, // exclusive
        false, // no-wait
        nil,   // arguments
    )
    return err
}
