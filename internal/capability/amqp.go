package capability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/invoker/internal/mq"
)

// FamilyAMQP — семейство RabbitMQ.
const FamilyAMQP = "AMQP"

// Ключи параметров AMQP.
const (
	paramExchange    = "exchange"
	paramRoutingKey  = "routing_key"
	paramContentType = "content_type"
	paramMessageID   = "message_id"
	paramQueue       = "queue"
	paramDurable     = "durable"
	paramAutoDelete  = "auto_delete"
	paramExclusive   = "exclusive"
)

// AMQP — семейство Publish и DeclareQueue.
//
// Соединение открывается при первом вызове.
//
// Publish: {"exchange": "", "routing_key": "jobs", "body": {...}, "headers": {...}}
// -> {"message_id": "...", "bytes": 42}
//
// DeclareQueue: {"queue": "jobs", "durable": true, "exchange": "x", "routing_key": "k"}
// -> {"queue": "jobs", "messages": 0, "consumers": 0}
type AMQP struct {
	url    string
	logger *slog.Logger

	mu        sync.Mutex
	conn      *mq.Connection
	publisher *mq.Publisher
}

// NewAMQP создаёт семейство AMQP.
func NewAMQP(url string, logger *slog.Logger) *AMQP {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQP{url: url, logger: logger}
}

// Register регистрирует методы семейства.
func (a *AMQP) Register(r *Registry) {
	r.Register(FamilyAMQP, "Publish", a.Publish)
	r.Register(FamilyAMQP, "DeclareQueue", a.DeclareQueue)
	r.OnClose(a.Close)
}

func (a *AMQP) acquire(ctx context.Context) (*mq.Connection, *mq.Publisher, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn != nil {
		return a.conn, a.publisher, nil
	}
	conn, err := mq.Dial(ctx, a.url, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	a.conn = conn
	a.publisher = mq.NewPublisher(conn, a.logger)
	return a.conn, a.publisher, nil
}

// Publish публикует одно сообщение.
func (a *AMQP) Publish(ctx context.Context, params map[string]any) (map[string]any, error) {
	msg, err := publishing(params)
	if err != nil {
		return nil, err
	}
	routingKey := String(params, paramRoutingKey)
	if routingKey == "" {
		return nil, invalidParams(FamilyAMQP, "routing_key is required")
	}

	_, pub, err := a.acquire(ctx)
	if err != nil {
		return nil, err
	}

	exchange := mq.Exchange(String(params, paramExchange))
	if err := pub.PublishRaw(ctx, exchange, mq.RoutingKey(routingKey), msg); err != nil {
		return nil, err
	}

	return map[string]any{
		"message_id": msg.MessageId,
		"bytes":      len(msg.Body),
	}, nil
}

// DeclareQueue объявляет очередь и, если задан exchange, привязывает её.
func (a *AMQP) DeclareQueue(ctx context.Context, params map[string]any) (map[string]any, error) {
	name := String(params, paramQueue)

	conn, _, err := a.acquire(ctx)
	if err != nil {
		return nil, err
	}

	state, err := mq.DeclareQueue(ctx, conn, mq.QueueSpec{
		Name:       mq.Queue(name),
		Durable:    Bool(params, paramDurable, true),
		AutoDelete: Bool(params, paramAutoDelete, false),
		Exclusive:  Bool(params, paramExclusive, false),
		Exchange:   mq.Exchange(String(params, paramExchange)),
		RoutingKey: mq.RoutingKey(String(params, paramRoutingKey)),
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"queue":     state.Name,
		"messages":  state.Messages,
		"consumers": state.Consumers,
	}, nil
}

// Close закрывает соединение, если оно было открыто.
func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	a.publisher = nil
	return err
}

// publishing собирает сообщение из параметров.
func publishing(params map[string]any) (amqp.Publishing, error) {
	body, ok, err := Bytes(params, paramBody)
	if err != nil {
		return amqp.Publishing{}, invalidParams(FamilyAMQP, "%v", err)
	}
	if !ok {
		return amqp.Publishing{}, invalidParams(FamilyAMQP, "body is required")
	}

	contentType := String(params, paramContentType)
	if contentType == "" {
		switch params[paramBody].(type) {
		case string:
			contentType = "text/plain"
		case []byte:
			contentType = "application/octet-stream"
		default:
			contentType = "application/json"
		}
	}

	headers := amqp.Table{}
	for k, v := range StringMap(params, paramHeaders) {
		headers[k] = v
	}

	msgID := String(params, paramMessageID)
	if msgID == "" {
		msgID = uuid.New().String()
	}

	return amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    msgID,
		Headers:      headers,
		Body:         body,
	}, nil
}
