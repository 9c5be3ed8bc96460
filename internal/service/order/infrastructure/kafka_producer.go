package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"atelier/internal/pkg/mq"
	"atelier/internal/service/order/domain"
)

// OrderProducerAdapter 将订单事件发布到 Kafka，消息按 OrderID 分区，
// 保证同一订单的事件顺序。
type OrderProducerAdapter struct {
	writer *kafka.Writer
}

func NewOrderProducerAdapter(writer *kafka.Writer) *OrderProducerAdapter {
	return &OrderProducerAdapter{writer: writer}
}

func (a *OrderProducerAdapter) Publish(ctx context.Context, event *domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(event.OrderID), payload)
}

func (a *OrderProducerAdapter) Close() error {
	return a.writer.Close()
}
