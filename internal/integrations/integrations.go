package integrations

import (
	"context"
	"fmt"
	"log/slog"

	"feeconsole-service/internal/activity"
	"feeconsole-service/internal/fault"
	"feeconsole-service/internal/rest"
	"github.com/VictoriaMetrics/metrics"
)

var (
	actionSuccessCounter = metrics.GetOrCreateCounter(`integration_action_total{result="success"}`)
	actionErrorCounter   = metrics.GetOrCreateCounter(`integration_action_total{result="failed"}`)
)

// Manager drives integration lifecycle actions. Every action, successful or
// failed, appends exactly one activity entry with the outcome known at call
// time.
type Manager struct {
	client *rest.Client
	log    activity.Log
	logger *slog.Logger
}

func NewManager(client *rest.Client, log activity.Log, logger *slog.Logger) *Manager {
	return &Manager{client: client, log: log, logger: logger}
}

type actionResponse struct {
	Message string `json:"message"`
}

func (m *Manager) Connect(ctx context.Context, id string, config map[string]any) (string, error) {
	return m.perform(ctx, id, "connect", "Connect", config)
}

func (m *Manager) Disconnect(ctx context.Context, id string) (string, error) {
	return m.perform(ctx, id, "disconnect", "Disconnect", nil)
}

func (m *Manager) Test(ctx context.Context, id string) (string, error) {
	return m.perform(ctx, id, "test", "Test Connection", nil)
}

func (m *Manager) perform(ctx context.Context, id, action, label string, body map[string]any) (string, error) {
	path := fmt.Sprintf("/integrations/%s/%s", id, action)

	var resp actionResponse
	if err := m.client.Post(ctx, path, body, &resp); err != nil {
		m.logger.ErrorContext(ctx, "Integration action failed", "error", err, "integration", id, "action", action)
		actionErrorCounter.Inc()
		m.append(ctx, id, label, activity.StatusFailed,
			fault.UserMessage(err, fmt.Sprintf("Failed to %s integration", action)))
		return "", err
	}

	m.logger.InfoContext(ctx, "Integration action completed", "integration", id, "action", action)
	actionSuccessCounter.Inc()
	m.append(ctx, id, label, activity.StatusSuccess, resp.Message)

	return resp.Message, nil
}

func (m *Manager) append(ctx context.Context, integration, action, status, details string) {
	_, err := m.log.Append(ctx, activity.Entry{
		Integration: integration,
		Activity:    action,
		Status:      status,
		Details:     details,
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "Error appending activity entry", "error", err, "activity", action)
	}
}
