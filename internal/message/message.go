package message

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventPaymentDispatched = "payment.dispatched"

// PaymentRecord is the payload published for every successful dispatch.
type PaymentRecord struct {
	TransactionID string          `json:"transactionId"`
	StudentID     string          `json:"studentId"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	DispatchedAt  time.Time       `json:"dispatchedAt"`
}

type PaymentEvent struct {
	ID      uuid.UUID     `json:"id"`
	Event   string        `json:"event"`
	Payload PaymentRecord `json:"payload"`
}

// SettlementEvent arrives on the settlement engine's topic when a previously
// dispatched transaction reaches a terminal state.
type SettlementEvent struct {
	ID            uuid.UUID `json:"id"`
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	Message       string    `json:"message,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}
