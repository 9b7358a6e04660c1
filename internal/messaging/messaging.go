// Package messaging carries domain events between services over Kafka or
// RabbitMQ, propagating trace context in message headers.
package messaging

import (
	"context"
	"fmt"

	"github.com/joao-fontenele/restaurant-pos/internal/config"
)

// Publisher sends one event, JSON encoded, to topic under key.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

// Handler processes a single delivered payload. A returned error stops
// consumption without acknowledging the message.
type Handler func(ctx context.Context, topic string, payload []byte) error

type Subscriber interface {
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

// NewPublisher picks the transport configured in cfg. It returns nil when
// events are disabled.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	switch cfg.EventTransport {
	case config.TransportKafka:
		return NewProducer(cfg.KafkaBrokers), nil
	case config.TransportAMQP:
		p, err := DialAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.EventTransport)
	}
}

// NewSubscriber consumes topics as group, which is the Kafka consumer group
// or the AMQP queue name.
func NewSubscriber(cfg *config.Config, group string, topics ...string) (Subscriber, error) {
	switch cfg.EventTransport {
	case config.TransportKafka:
		return NewConsumer(cfg.KafkaBrokers, topics, group), nil
	case config.TransportAMQP:
		c, err := DialAMQPConsumer(cfg.AMQPURL, group, topics)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("event transport %q cannot be consumed", cfg.EventTransport)
	}
}
