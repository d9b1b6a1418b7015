package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

// SyncStatus is owned by the server; this subsystem only reads it and
// triggers server-side changes.
type SyncStatus struct {
	Connected       bool       `json:"connected"`
	LastSync        *time.Time `json:"last_sync"`
	LastSyncSuccess bool       `json:"last_sync_success"`
	RecordsSynced   int        `json:"records_synced"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	RealmID         string     `json:"realm_id,omitempty"`
}

type SyncResult struct {
	TotalPayments int       `json:"total_payments"`
	DateRange     string    `json:"date_range"`
	SyncTimestamp time.Time `json:"sync_timestamp"`
}

type ClearResult struct {
	DeletedFiles int    `json:"deleted_files"`
	Message      string `json:"message"`
}

type MethodBreakdown struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type DailyTrend struct {
	Date   string          `json:"date"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// AnalyticsSummary is derived entirely from the synced cache and is
// undefined before the first completed sync.
type AnalyticsSummary struct {
	TotalPayments  int               `json:"total_payments"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	AveragePayment decimal.Decimal   `json:"average_payment"`
	SyncTimestamp  time.Time         `json:"sync_timestamp"`
	DateRange      string            `json:"date_range"`
	PaymentMethods []MethodBreakdown `json:"payment_methods"`
	DailyTrends    []DailyTrend      `json:"daily_trends"`
}
