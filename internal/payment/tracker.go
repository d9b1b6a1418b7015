package payment

import (
	"context"
	"log/slog"

	"feeconsole-service/internal/rest"
	"github.com/pkg/errors"
)

// StatusTracker reads settlement status for previously submitted
// transactions. Lookups are a hard dependency of status display, so errors
// propagate instead of being folded into a soft failure value.
type StatusTracker struct {
	client *rest.Client
	logger *slog.Logger
}

func NewStatusTracker(client *rest.Client, logger *slog.Logger) *StatusTracker {
	return &StatusTracker{client: client, logger: logger}
}

func (t *StatusTracker) Check(ctx context.Context, transactionID string) (*Status, error) {
	if transactionID == "" {
		return nil, errors.New("transaction id is required")
	}

	var status Status
	if err := t.client.Get(ctx, "/payments/"+transactionID+"/status", &status); err != nil {
		t.logger.ErrorContext(ctx, "Error fetching payment status", "error", err, "transactionId", transactionID)
		return nil, err
	}

	return &status, nil
}
