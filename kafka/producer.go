package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"checkout-service/models"
)

// ProducerAPI is the surface the order service needs; tests substitute a
// fake for it.
type ProducerAPI interface {
	SendOrderEvent(ctx context.Context, evt models.OrderEvent) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
	topic  string
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("kafka producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers))
	return &Producer{writer: w, topic: topic, log: log}
}

// SendOrderEvent publishes an order lifecycle event keyed by order id so
// events for one order stay in partition order.
func (p *Producer) SendOrderEvent(ctx context.Context, evt models.OrderEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("failed to publish order event",
			zap.String("event", evt.Event),
			zap.String("order_id", evt.OrderID),
			zap.Error(err))
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	p.log.Info("closing kafka producer", zap.String("topic", p.topic))
	return p.writer.Close()
}
