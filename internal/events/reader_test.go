package events_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"feeconsole-service/internal/activity"
	"feeconsole-service/internal/events"
	"feeconsole-service/internal/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSettlementProcessor_MirrorsFailure(t *testing.T) {
	auditLog := activity.NewMemoryLog()
	sut := events.NewSettlementProcessor(auditLog, testLogger())

	err := sut.Process(context.Background(), message.SettlementEvent{
		ID:            uuid.New(),
		TransactionID: "pay-42",
		Status:        "failed",
		Message:       "Insufficient funds",
		OccurredAt:    time.Now(),
	})
	require.NoError(t, err)

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, "settlement", entries[0].Integration)
	assert.Equal(t, "Settlement Update", entries[0].Activity)
	assert.Equal(t, activity.StatusFailed, entries[0].Status)
	assert.Equal(t, "Insufficient funds", entries[0].Details)
}

func TestSettlementProcessor_MirrorsCompletion(t *testing.T) {
	auditLog := activity.NewMemoryLog()
	sut := events.NewSettlementProcessor(auditLog, testLogger())

	err := sut.Process(context.Background(), message.SettlementEvent{
		ID:            uuid.New(),
		TransactionID: "pay-43",
		Status:        "completed",
		OccurredAt:    time.Now(),
	})
	require.NoError(t, err)

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, activity.StatusSuccess, entries[0].Status)
	assert.Contains(t, entries[0].Details, "pay-43")
}

func TestSettlementProcessor_SkipsNonTerminalStatuses(t *testing.T) {
	auditLog := activity.NewMemoryLog()
	sut := events.NewSettlementProcessor(auditLog, testLogger())

	for _, status := range []string{"pending", "processing", ""} {
		err := sut.Process(context.Background(), message.SettlementEvent{
			ID:            uuid.New(),
			TransactionID: "pay-44",
			Status:        status,
			OccurredAt:    time.Now(),
		})
		require.NoError(t, err)
	}

	entries, _ := auditLog.Entries(context.Background())
	assert.Empty(t, entries)
}
