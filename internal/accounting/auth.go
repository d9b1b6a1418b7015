package accounting

import (
	"context"
	"log/slog"
	"time"

	"feeconsole-service/internal/activity"
	"feeconsole-service/internal/fault"
	"feeconsole-service/internal/rest"
	"github.com/VictoriaMetrics/metrics"
)

const (
	defaultPollIntervalMs = 1_000
	defaultAuthTimeoutMs  = 300_000
)

// ConsentSession is an open consent window. Closure is the only observable
// signal of user-flow completion; the code/token exchange happens out of
// band on the backend.
type ConsentSession interface {
	Closed() bool
	Close()
}

// ConsentOpener opens a consent window pointed at the authorization URL.
type ConsentOpener interface {
	Open(url string) (ConsentSession, error)
}

type AuthOutcome int

const (
	AuthCompleted AuthOutcome = iota
	AuthTimedOut
	AuthCanceled
)

func (o AuthOutcome) String() string {
	switch o {
	case AuthCompleted:
		return "completed"
	case AuthTimedOut:
		return "timed-out"
	case AuthCanceled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	authCompletedCounter = metrics.GetOrCreateCounter(`accounting_auth_total{outcome="completed"}`)
	authTimedOutCounter  = metrics.GetOrCreateCounter(`accounting_auth_total{outcome="timed_out"}`)
	authCanceledCounter  = metrics.GetOrCreateCounter(`accounting_auth_total{outcome="cancelled"}`)
	authErrorCounter     = metrics.GetOrCreateCounter(`accounting_auth_total{outcome="error"}`)
)

// AuthManager runs the external-accounting authorization handshake: fetch
// the auth URL, open a consent window and wait for it to close. The wait is
// bounded by a hard timeout and honors context cancellation, so the poll can
// never outlive its caller.
type AuthManager struct {
	client       *rest.Client
	opener       ConsentOpener
	sync         *SyncManager
	log          activity.Log
	logger       *slog.Logger
	pollInterval time.Duration
	timeout      time.Duration
}

func NewAuthManager(client *rest.Client, opener ConsentOpener, sync *SyncManager,
	log activity.Log, pollIntervalMs, timeoutMs int, logger *slog.Logger) *AuthManager {
	if pollIntervalMs <= 0 {
		pollIntervalMs = defaultPollIntervalMs
	}
	if timeoutMs <= 0 {
		timeoutMs = defaultAuthTimeoutMs
	}
	return &AuthManager{
		client:       client,
		opener:       opener,
		sync:         sync,
		log:          log,
		logger:       logger,
		pollInterval: time.Duration(pollIntervalMs) * time.Millisecond,
		timeout:      time.Duration(timeoutMs) * time.Millisecond,
	}
}

type authURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// AuthURL fetches the authorization URL for the consent window.
func (m *AuthManager) AuthURL(ctx context.Context) (string, error) {
	var resp authURLResponse
	if err := m.client.Get(ctx, "/quickbooks/auth-url", &resp); err != nil {
		return "", err
	}
	return resp.AuthURL, nil
}

// Authorize opens the consent window and waits for the user to finish. One
// pending activity entry is appended when the window opens and resolved to a
// terminal state for every outcome, so no entry is left dangling. On
// completion the fresh sync status is fetched and returned.
func (m *AuthManager) Authorize(ctx context.Context) (AuthOutcome, *SyncStatus, error) {
	url, err := m.AuthURL(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Error fetching auth URL", "error", err)
		authErrorCounter.Inc()
		m.appendFailed(ctx, fault.UserMessage(err, "Failed to obtain authorization URL"))
		return AuthCanceled, nil, err
	}

	session, err := m.opener.Open(url)
	if err != nil {
		m.logger.ErrorContext(ctx, "Error opening consent window", "error", err)
		authErrorCounter.Inc()
		m.appendFailed(ctx, "Failed to open consent window")
		return AuthCanceled, nil, err
	}

	entry, err := m.log.Append(ctx, activity.Entry{
		Integration: integrationName,
		Activity:    "Authorization Initiated",
		Status:      activity.StatusPending,
		Details:     "Waiting for consent window",
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "Error appending activity entry", "error", err)
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(m.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			session.Close()
			m.resolve(entry, activity.StatusFailed, "Authorization cancelled")
			m.logger.InfoContext(ctx, "Authorization cancelled by caller")
			authCanceledCounter.Inc()
			return AuthCanceled, nil, ctx.Err()

		case <-deadline.C:
			session.Close()
			m.resolve(entry, activity.StatusFailed, "Authorization timed out")
			m.logger.WarnContext(ctx, "Authorization timed out", "timeout", m.timeout)
			authTimedOutCounter.Inc()
			return AuthTimedOut, nil, nil

		case <-ticker.C:
			if !session.Closed() {
				continue
			}

			m.logger.InfoContext(ctx, "Consent window closed, refreshing sync status")
			authCompletedCounter.Inc()

			status, err := m.sync.Status(ctx)
			if err != nil {
				m.resolve(entry, activity.StatusFailed, fault.UserMessage(err, "Failed to confirm connection"))
				return AuthCompleted, nil, err
			}

			if status.Connected {
				m.resolve(entry, activity.StatusSuccess, "Connected to accounting ledger")
			} else {
				m.resolve(entry, activity.StatusFailed, "Consent window closed without connecting")
			}

			return AuthCompleted, status, nil
		}
	}
}

func (m *AuthManager) appendFailed(ctx context.Context, details string) {
	_, err := m.log.Append(ctx, activity.Entry{
		Integration: integrationName,
		Activity:    "Authorization Initiated",
		Status:      activity.StatusFailed,
		Details:     details,
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "Error appending activity entry", "error", err)
	}
}

func (m *AuthManager) resolve(entry activity.Entry, status, details string) {
	// resolution must run even when the caller's context is already done
	if err := m.log.Resolve(context.Background(), entry.ID, status, details); err != nil {
		m.logger.Error("Error resolving activity entry", "error", err, "id", entry.ID)
	}
}
