package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"feeconsole-service/internal/message"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var (
	publishSuccessCounter = metrics.GetOrCreateCounter(`payment_event_publish_total{result="success"}`)
	publishErrorCounter   = metrics.GetOrCreateCounter(`payment_event_publish_total{result="failed"}`)
)

// Publisher emits payment records onto the payment-events topic for
// downstream dashboard and bookkeeping consumers.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewPublisher(writer *kafka.Writer, logger *slog.Logger) *Publisher {
	return &Publisher{writer: writer, logger: logger}
}

func (p *Publisher) PublishDispatched(ctx context.Context, record message.PaymentRecord) error {
	event := message.PaymentEvent{
		ID:      uuid.New(),
		Event:   message.EventPaymentDispatched,
		Payload: record,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		publishErrorCounter.Inc()
		return err
	}

	msg := kafka.Message{
		// transaction id as key to keep per-payment ordering
		Key:   []byte(record.TransactionID),
		Value: eventBytes,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "Error writing payment event", "error", err, "transactionId", record.TransactionID)
		publishErrorCounter.Inc()
		return err
	}

	publishSuccessCounter.Inc()
	return nil
}
