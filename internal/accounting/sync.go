package accounting

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"feeconsole-service/internal/activity"
	"feeconsole-service/internal/fault"
	"feeconsole-service/internal/logcontext"
	"feeconsole-service/internal/rest"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	defaultMaxDaysBack = 365

	genericSyncFailure  = "Failed to sync payments to cache"
	genericClearFailure = "Failed to clear cache"

	integrationName = "quickbooks"
)

var (
	ErrSyncInFlight = errors.New("a sync is already in progress")
	ErrSyncRequired = errors.New("sync required")
)

var (
	syncSuccessCounter  = metrics.GetOrCreateCounter(`accounting_sync_total{result="success"}`)
	syncErrorCounter    = metrics.GetOrCreateCounter(`accounting_sync_total{result="failed"}`)
	syncInFlightCounter = metrics.GetOrCreateCounter(`accounting_sync_total{result="in_flight_rejected"}`)

	syncDurationHistogram = metrics.GetOrCreateHistogram(`accounting_sync_duration_milliseconds`)

	clearCacheCounter = metrics.GetOrCreateCounter(`accounting_clear_cache_total`)
)

// SyncManager drives the external-ledger cache: bulk sync, status reads and
// the destructive cache clear. At most one sync is in flight at a time;
// concurrent callers get ErrSyncInFlight instead of racing the server.
type SyncManager struct {
	client      *rest.Client
	log         activity.Log
	logger      *slog.Logger
	maxDaysBack int
	inFlight    atomic.Bool
}

func NewSyncManager(client *rest.Client, log activity.Log, maxDaysBack int, logger *slog.Logger) *SyncManager {
	if maxDaysBack <= 0 {
		maxDaysBack = defaultMaxDaysBack
	}
	return &SyncManager{
		client:      client,
		log:         log,
		logger:      logger,
		maxDaysBack: maxDaysBack,
	}
}

// Sync triggers a bulk sync of settled payments into the server-side cache.
// daysBack is validated here, at the subsystem boundary, not left to the UI.
func (m *SyncManager) Sync(ctx context.Context, daysBack int) (*SyncResult, error) {
	if daysBack < 1 || daysBack > m.maxDaysBack {
		return nil, &fault.ValidationError{
			Field:  "days_back",
			Reason: fmt.Sprintf("days_back must be between 1 and %d", m.maxDaysBack),
		}
	}

	if !m.inFlight.CompareAndSwap(false, true) {
		m.logger.WarnContext(ctx, "Rejected concurrent sync request")
		syncInFlightCounter.Inc()
		return nil, ErrSyncInFlight
	}
	defer m.inFlight.Store(false)

	startTime := time.Now()
	defer func() {
		syncDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))
	}()

	// runId correlates all log lines of one sync run
	ctx = logcontext.AppendCtx(ctx, slog.String("runId", uuid.New().String()))

	m.logger.InfoContext(ctx, "Starting payment sync", "daysBack", daysBack)

	var result SyncResult
	path := fmt.Sprintf("/quickbooks/sync-payments-to-cache?days_back=%d", daysBack)
	if err := m.client.Post(ctx, path, nil, &result); err != nil {
		m.logger.ErrorContext(ctx, "Payment sync failed", "error", err)
		syncErrorCounter.Inc()
		m.append(ctx, "Sync Payments", activity.StatusFailed, fault.UserMessage(err, genericSyncFailure))
		return nil, err
	}

	m.logger.InfoContext(ctx, "Payment sync completed",
		"totalPayments", result.TotalPayments, "dateRange", result.DateRange)
	syncSuccessCounter.Inc()
	m.append(ctx, "Sync Payments", activity.StatusSuccess,
		fmt.Sprintf("Synced %d payments (%s)", result.TotalPayments, result.DateRange))

	return &result, nil
}

// Status reads the server-owned sync status. Reads are not audited.
func (m *SyncManager) Status(ctx context.Context) (*SyncStatus, error) {
	var status SyncStatus
	if err := m.client.Get(ctx, "/quickbooks/sync-status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ClearCache destroys the server-side cache. Irreversible; callers must
// obtain confirmation before invoking, the manager performs none. Analytics
// already held by callers are not invalidated here.
func (m *SyncManager) ClearCache(ctx context.Context) (*ClearResult, error) {
	clearCacheCounter.Inc()

	var result ClearResult
	if err := m.client.Post(ctx, "/quickbooks/clear-cache", nil, &result); err != nil {
		m.logger.ErrorContext(ctx, "Cache clear failed", "error", err)
		m.append(ctx, "Clear Cache", activity.StatusFailed, fault.UserMessage(err, genericClearFailure))
		return nil, err
	}

	m.logger.InfoContext(ctx, "Cache cleared", "deletedFiles", result.DeletedFiles)
	m.append(ctx, "Clear Cache", activity.StatusSuccess, result.Message)

	return &result, nil
}

func (m *SyncManager) append(ctx context.Context, action, status, details string) {
	_, err := m.log.Append(ctx, activity.Entry{
		Integration: integrationName,
		Activity:    action,
		Status:      status,
		Details:     details,
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "Error appending activity entry", "error", err, "activity", action)
	}
}
