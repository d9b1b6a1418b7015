package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"feeconsole-service/internal/catalog"
	"feeconsole-service/internal/fault"
	"feeconsole-service/internal/message"
	"feeconsole-service/internal/money"
	"feeconsole-service/internal/rest"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const genericDispatchFailure = "Payment processing failed"

var (
	dispatchValidationCounter = metrics.GetOrCreateCounter(`payment_dispatch_total{result="validation_failed"}`)
	dispatchErrorCounter      = metrics.GetOrCreateCounter(`payment_dispatch_total{result="failed"}`)
	dispatchSuccessCounter    = metrics.GetOrCreateCounter(`payment_dispatch_total{result="success"}`)

	dispatchDurationHistogram = metrics.GetOrCreateHistogram(`payment_dispatch_duration_milliseconds`)
)

// Publisher emits a record of a successfully dispatched payment for
// downstream consumers. Implementations must not block dispatch on failure.
type Publisher interface {
	PublishDispatched(ctx context.Context, record message.PaymentRecord) error
}

// settlementRequest is the wire shape POSTed to /payments. Amounts travel
// as bare JSON numbers, not strings.
type settlementRequest struct {
	StudentID      string         `json:"student_id"`
	Amount         json.Number    `json:"amount"`
	PaymentMethod  string         `json:"payment_method"`
	PaymentType    string         `json:"payment_type"`
	Description    string         `json:"description,omitempty"`
	IdempotencyKey string         `json:"idempotency_key"`
	Metadata       map[string]any `json:"metadata"`
}

type settlementResponse struct {
	ID string `json:"id"`
}

type Dispatcher struct {
	catalog   *catalog.Catalog
	client    *rest.Client
	publisher Publisher
	logger    *slog.Logger
}

func NewDispatcher(cat *catalog.Catalog, client *rest.Client, publisher Publisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		catalog:   cat,
		client:    client,
		publisher: publisher,
		logger:    logger,
	}
}

// Process validates the request, computes fee and total, submits to the
// settlement endpoint and normalizes the outcome. Validation failures never
// reach the network and never carry a transaction id.
func (d *Dispatcher) Process(ctx context.Context, req Request) Result {
	startTime := time.Now()
	defer func() {
		dispatchDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))
	}()

	if err := d.validate(req); err != nil {
		d.logger.WarnContext(ctx, "Rejected payment request", "reason", err.Reason, "field", err.Field)
		dispatchValidationCounter.Inc()
		return Result{Success: false, Status: StatusFailed, Message: err.Reason, ErrorCode: "VALIDATION_ERROR"}
	}

	fee := d.catalog.Fee(req.Amount, req.PaymentMethod)
	total := req.Amount.Add(fee)

	payload := buildPayload(req, fee, total)

	var resp settlementResponse
	if err := d.client.Post(ctx, "/payments", payload, &resp); err != nil {
		d.logger.ErrorContext(ctx, "Payment dispatch failed", "error", err, "studentId", req.StudentID)
		dispatchErrorCounter.Inc()
		return Result{
			Success:   false,
			Status:    StatusFailed,
			Message:   fault.UserMessage(err, genericDispatchFailure),
			ErrorCode: errorCode(err),
		}
	}

	transactionID := resp.ID
	if transactionID == "" {
		transactionID = FallbackTransactionID(time.Now())
	}

	d.logger.InfoContext(ctx, "Payment dispatched", "transactionId", transactionID, "total", total)
	dispatchSuccessCounter.Inc()

	d.publish(ctx, req, transactionID, fee, total)

	return Result{
		Success:       true,
		TransactionID: transactionID,
		Status:        StatusCompleted,
		Message:       fmt.Sprintf("Payment of %s processed successfully", money.Format(total, req.Currency)),
	}
}

func buildPayload(req Request, fee, total decimal.Decimal) settlementRequest {
	metadata := map[string]any{
		"fees":            json.Number(fee.StringFixed(2)),
		"original_amount": json.Number(req.Amount.StringFixed(2)),
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if req.StudentName != "" {
		metadata["student_name"] = req.StudentName
	}

	return settlementRequest{
		StudentID:      req.StudentID,
		Amount:         json.Number(total.StringFixed(2)),
		PaymentMethod:  req.PaymentMethod,
		PaymentType:    req.PaymentType,
		Description:    req.Description,
		IdempotencyKey: uuid.New().String(),
		Metadata:       metadata,
	}
}

func (d *Dispatcher) validate(req Request) *fault.ValidationError {
	if !req.Amount.IsPositive() {
		return &fault.ValidationError{Field: "amount", Reason: "Invalid payment amount"}
	}
	if req.StudentID == "" {
		return &fault.ValidationError{Field: "student_id", Reason: "Student is required"}
	}
	if req.PaymentMethod == "" {
		return &fault.ValidationError{Field: "payment_method", Reason: "Payment method is required"}
	}
	method, ok := d.catalog.Get(req.PaymentMethod)
	if !ok || !method.Enabled {
		return &fault.ValidationError{Field: "payment_method", Reason: "Payment method not available"}
	}
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, req Request, transactionID string, fee, total decimal.Decimal) {
	if d.publisher == nil {
		return
	}

	record := message.PaymentRecord{
		TransactionID: transactionID,
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		Fee:           fee,
		Total:         total,
		Currency:      req.Currency,
		Method:        req.PaymentMethod,
		Status:        StatusCompleted,
		DispatchedAt:  time.Now(),
	}

	if err := d.publisher.PublishDispatched(ctx, record); err != nil {
		// dispatch already succeeded; the event stream is best effort
		d.logger.ErrorContext(ctx, "Error publishing payment event", "error", err, "transactionId", transactionID)
	}
}

func errorCode(err error) string {
	var (
		netErr  *fault.NetworkError
		httpErr *fault.HTTPError
		bizErr  *fault.BusinessError
	)

	switch {
	case errors.As(err, &netErr):
		return "NETWORK_ERROR"
	case errors.As(err, &httpErr):
		return "HTTP_ERROR"
	case errors.As(err, &bizErr):
		return "BUSINESS_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}
