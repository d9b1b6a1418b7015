package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Request is built per submission and never persisted locally.
type Request struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	StudentID     string          `json:"student_id"`
	StudentName   string          `json:"student_name"`
	PaymentMethod string          `json:"payment_method"`
	PaymentType   string          `json:"payment_type"`
	Description   string          `json:"description,omitempty"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
}

// Result is returned once per dispatch and not mutated afterward.
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	ErrorCode     string `json:"error_code,omitempty"`
}

// Status is a read-only settlement snapshot fetched on demand.
type Status struct {
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Timestamp     time.Time       `json:"timestamp"`
	Message       string          `json:"message,omitempty"`
}
