package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// EventsExchange is the topic exchange every event is routed through; the
// routing key is the event topic.
const EventsExchange = "pos.events"

type amqpSession struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func dialAMQP(url string) (*amqpSession, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}
	return &amqpSession{conn: conn, ch: ch}, nil
}

func (s *amqpSession) Close() error {
	return errors.Join(s.ch.Close(), s.conn.Close())
}

type AMQPPublisher struct {
	session *amqpSession
}

func DialAMQPPublisher(url string) (*AMQPPublisher, error) {
	s, err := dialAMQP(url)
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{session: s}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}

	ctx, span := producerTracer.Start(ctx, "send "+topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemRabbitmq,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(EventsExchange),
			semconv.MessagingRabbitmqDestinationRoutingKey(topic),
		),
	)
	defer span.End()

	headers := amqp.Table{HeaderEventType: topic}
	otel.GetTextMapPropagator().Inject(ctx, amqpCarrier(headers))

	err = p.session.ch.PublishWithContext(ctx, EventsExchange, topic, false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		Type:          topic,
		CorrelationId: key,
		Timestamp:     time.Now().UTC(),
		Headers:       headers,
		Body:          data,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.session.Close()
}

type AMQPConsumer struct {
	session *amqpSession
	queue   string
}

// DialAMQPConsumer declares a durable queue bound to each topic.
func DialAMQPConsumer(url, queue string, topics []string) (*AMQPConsumer, error) {
	s, err := dialAMQP(url)
	if err != nil {
		return nil, err
	}
	if _, err := s.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	for _, topic := range topics {
		if err := s.ch.QueueBind(queue, topic, EventsExchange, false, nil); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("bind queue %s to %s: %w", queue, topic, err)
		}
	}
	if err := s.ch.Qos(1, 0, false); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &AMQPConsumer{session: s, queue: queue}, nil
}

// Consume acks each delivery after handler succeeds. A delivery that still
// fails after the retries is requeued and the error returned.
func (c *AMQPConsumer) Consume(ctx context.Context, handler Handler) error {
	deliveries, err := c.session.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			if err := c.processDelivery(ctx, d, handler); err != nil {
				_ = d.Nack(false, true)
				return err
			}
			if err := d.Ack(false); err != nil {
				return err
			}
		}
	}
}

func (c *AMQPConsumer) processDelivery(ctx context.Context, d amqp.Delivery, handler Handler) error {
	headers := d.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	parentCtx := otel.GetTextMapPropagator().Extract(ctx, amqpCarrier(headers))

	spanCtx, span := consumerTracer.Start(parentCtx, "process "+d.RoutingKey,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemRabbitmq,
			semconv.MessagingOperationName("process"),
			semconv.MessagingOperationTypeDeliver,
			semconv.MessagingDestinationName(c.queue),
			semconv.MessagingRabbitmqDestinationRoutingKey(d.RoutingKey),
		),
	)
	defer span.End()

	if err := Retry(spanCtx, defaultAttempts, defaultBackoff, func(ctx context.Context) error {
		return handler(ctx, d.RoutingKey, d.Body)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *AMQPConsumer) Close() error {
	return c.session.Close()
}
