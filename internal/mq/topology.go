package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — topic-обменник событий run.
const ExchangeEvents Exchange = "invoker.events"

// Routing keys событий.
const (
	RoutingKeyRunStarted      RoutingKey = "run.started"
	RoutingKeyCommandFinished RoutingKey = "command.finished"
	RoutingKeyRunFinished     RoutingKey = "run.finished"
)

// SetupTopology объявляет обменник событий.
// Очереди под события создают потребители сами.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			amqp.ExchangeTopic,     // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}
		return nil
	})
}

// QueueSpec — параметры объявления очереди.
type QueueSpec struct {
	Name       Queue
	Durable    bool
	AutoDelete bool
	Exclusive  bool
	Args       amqp.Table

	// Exchange и RoutingKey задают привязку; пустой Exchange — без привязки.
	Exchange   Exchange
	RoutingKey RoutingKey
}

// QueueState — состояние очереди после объявления.
type QueueState struct {
	Name      string
	Messages  int
	Consumers int
}

// DeclareQueue объявляет очередь и, если задан обменник, привязывает её.
func DeclareQueue(ctx context.Context, conn *Connection, spec QueueSpec) (QueueState, error) {
	var state QueueState

	err := conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		q, err := ch.QueueDeclare(
			string(spec.Name), // name
			spec.Durable,      // durable
			spec.AutoDelete,   // delete when unused
			spec.Exclusive,    // exclusive
			false,             // no-wait
			spec.Args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", spec.Name, err)
		}

		if spec.Exchange != "" {
			err = ch.QueueBind(
				q.Name,                  // queue name
				string(spec.RoutingKey), // routing key
				string(spec.Exchange),   // exchange
				false,                   // no-wait
				nil,                     // arguments
			)
			if err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", q.Name, spec.Exchange, err)
			}
		}

		state = QueueState{Name: q.Name, Messages: q.Messages, Consumers: q.Consumers}
		return nil
	})

	return state, err
}
