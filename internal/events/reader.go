package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"feeconsole-service/internal/activity"
	"feeconsole-service/internal/message"
	"github.com/VictoriaMetrics/metrics"
	"github.com/segmentio/kafka-go"
)

type readerMetrics struct {
	ReadErrorCounter      *metrics.Counter
	UnmarshalErrorCounter *metrics.Counter
	ProcessErrorCounter   *metrics.Counter
	SuccessCounter        *metrics.Counter
}

var settlementEventMetrics = readerMetrics{
	ReadErrorCounter:      metrics.GetOrCreateCounter(`kafka_reader_total{result="read_error",type="settlement_event"}`),
	UnmarshalErrorCounter: metrics.GetOrCreateCounter(`kafka_reader_total{result="unmarshal_error",type="settlement_event"}`),
	ProcessErrorCounter:   metrics.GetOrCreateCounter(`kafka_reader_total{result="process_error",type="settlement_event"}`),
	SuccessCounter:        metrics.GetOrCreateCounter(`kafka_reader_total{result="success",type="settlement_event"}`),
}

var settlementEventsSkippedCounter = metrics.GetOrCreateCounter(`kafka_reader_total{result="skipped",type="settlement_event"}`)

func NewReader(kafkaURL, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(kafkaURL, ","),
		GroupID: groupID,
		Topic:   topic,
	})
}

// SettlementProcessor mirrors terminal settlement outcomes into the audit
// trail so the console sees asynchronous failures without polling.
type SettlementProcessor struct {
	log    activity.Log
	logger *slog.Logger
}

func NewSettlementProcessor(log activity.Log, logger *slog.Logger) *SettlementProcessor {
	return &SettlementProcessor{log: log, logger: logger}
}

func (p *SettlementProcessor) Process(ctx context.Context, event message.SettlementEvent) error {
	var status string
	switch event.Status {
	case "completed":
		status = activity.StatusSuccess
	case "failed":
		status = activity.StatusFailed
	default:
		// non-terminal states carry no outcome worth auditing
		p.logger.DebugContext(ctx, "Skipping non-terminal settlement event",
			"transactionId", event.TransactionID, "status", event.Status)
		settlementEventsSkippedCounter.Inc()
		return nil
	}

	details := fmt.Sprintf("Transaction %s settled as %s", event.TransactionID, event.Status)
	if event.Message != "" {
		details = event.Message
	}

	_, err := p.log.Append(ctx, activity.Entry{
		Integration: "settlement",
		Activity:    "Settlement Update",
		Status:      status,
		Details:     details,
	})
	return err
}

// ReadSettlementEvents consumes the settlement topic until ctx is done.
func ReadSettlementEvents(ctx context.Context, reader *kafka.Reader, processor *SettlementProcessor, logger *slog.Logger) {
	go func() {
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.InfoContext(ctx, "Context done, stopping settlement reader")
					return
				}
				logger.ErrorContext(ctx, fmt.Sprintf("Error reading message: %v", err))
				settlementEventMetrics.ReadErrorCounter.Inc()
				continue
			}

			var e message.SettlementEvent
			if err := json.Unmarshal(m.Value, &e); err != nil {
				logger.ErrorContext(ctx, fmt.Sprintf("Error unmarshalling message: %v", err))
				settlementEventMetrics.UnmarshalErrorCounter.Inc()
				continue
			}

			if err := processor.Process(ctx, e); err != nil {
				logger.ErrorContext(ctx, fmt.Sprintf("Error processing message: %v", err))
				settlementEventMetrics.ProcessErrorCounter.Inc()
				continue
			}
			settlementEventMetrics.SuccessCounter.Inc()
		}
	}()
}
