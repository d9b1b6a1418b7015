package integrations_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"feeconsole-service/internal/activity"
	"feeconsole-service/internal/integrations"
	"feeconsole-service/internal/rest"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backendURL = "http://backend.local"

func newManager(log activity.Log) *integrations.Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return integrations.NewManager(rest.NewClient(backendURL, "", 5000, logger), log, logger)
}

func TestConnect_AppendsOneSuccessEntry(t *testing.T) {
	defer gock.Off()

	gock.New(backendURL).
		Post("/integrations/quickbooks/connect").
		Reply(200).
		JSON(map[string]any{
			"success": true,
			"data":    map[string]any{"message": "Connected"},
		})

	auditLog := activity.NewMemoryLog()
	sut := newManager(auditLog)

	msg, err := sut.Connect(context.Background(), "quickbooks", map[string]any{"realm_id": "realm-7"})

	require.NoError(t, err)
	assert.Equal(t, "Connected", msg)

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, "quickbooks", entries[0].Integration)
	assert.Equal(t, "Connect", entries[0].Activity)
	assert.Equal(t, activity.StatusSuccess, entries[0].Status)
}

func TestDisconnect_FailureAppendsFailedEntry(t *testing.T) {
	defer gock.Off()

	gock.New(backendURL).
		Post("/integrations/quickbooks/disconnect").
		Reply(500).
		JSON(map[string]any{"detail": "backend exploded"})

	auditLog := activity.NewMemoryLog()
	sut := newManager(auditLog)

	_, err := sut.Disconnect(context.Background(), "quickbooks")
	require.Error(t, err)

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, "Disconnect", entries[0].Activity)
	assert.Equal(t, activity.StatusFailed, entries[0].Status)
	assert.Equal(t, "backend exploded", entries[0].Details)
}

func TestTest_AppendsEntryAtHead(t *testing.T) {
	defer gock.Off()

	gock.New(backendURL).
		Post("/integrations/quickbooks/connect").
		Reply(200).
		JSON(map[string]any{"success": true, "data": map[string]any{"message": "Connected"}})
	gock.New(backendURL).
		Post("/integrations/quickbooks/test").
		Reply(200).
		JSON(map[string]any{"success": true, "data": map[string]any{"message": "Connection OK"}})

	auditLog := activity.NewMemoryLog()
	sut := newManager(auditLog)

	_, err := sut.Connect(context.Background(), "quickbooks", nil)
	require.NoError(t, err)
	_, err = sut.Test(context.Background(), "quickbooks")
	require.NoError(t, err)

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 2)
	assert.Equal(t, "Test Connection", entries[0].Activity)
	assert.Equal(t, "Connect", entries[1].Activity)
}
