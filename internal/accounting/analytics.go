package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"feeconsole-service/internal/fault"
	"feeconsole-service/internal/rest"
)

// Analytics reads aggregate summaries from the synced cache.
type Analytics struct {
	client *rest.Client
	logger *slog.Logger
}

func NewAnalytics(client *rest.Client, logger *slog.Logger) *Analytics {
	return &Analytics{client: client, logger: logger}
}

// PaymentSummary returns the cache-derived aggregates. When the cache has
// never been synced (or was just cleared) the backend refuses the read; that
// is surfaced as ErrSyncRequired so callers can prompt for a sync instead of
// treating it as a transient fault.
func (a *Analytics) PaymentSummary(ctx context.Context) (*AnalyticsSummary, error) {
	var summary AnalyticsSummary
	if err := a.client.Get(ctx, "/quickbooks/analytics/payments", &summary); err != nil {
		if isSyncRequired(err) {
			a.logger.InfoContext(ctx, "Analytics unavailable until a sync completes")
			return nil, fmt.Errorf("%w: %s", ErrSyncRequired, fault.UserMessage(err, "no synced data"))
		}
		a.logger.ErrorContext(ctx, "Error fetching payment analytics", "error", err)
		return nil, err
	}

	return &summary, nil
}

// isSyncRequired distinguishes "cache empty" refusals from transport faults.
// The backend reports an empty cache as either a not-found or an
// envelope-level failure.
func isSyncRequired(err error) bool {
	var bizErr *fault.BusinessError
	if errors.As(err, &bizErr) {
		return true
	}

	var httpErr *fault.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusNotFound
	}

	return false
}
