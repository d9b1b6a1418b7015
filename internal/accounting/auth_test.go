package accounting

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"feeconsole-service/internal/activity"
	"feeconsole-service/internal/rest"
	"github.com/h2non/gock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	closed atomic.Bool
}

func (s *fakeSession) Closed() bool { return s.closed.Load() }
func (s *fakeSession) Close()       { s.closed.Store(true) }

type fakeOpener struct {
	session *fakeSession
	openErr error
	url     string
}

func (o *fakeOpener) Open(url string) (ConsentSession, error) {
	o.url = url
	if o.openErr != nil {
		return nil, o.openErr
	}
	return o.session, nil
}

func newAuthManager(opener ConsentOpener, log activity.Log, timeoutMs int) *AuthManager {
	logger := testLogger()
	client := rest.NewClient(accountingURL, "", 5000, logger)
	sync := NewSyncManager(client, log, 365, logger)
	return NewAuthManager(client, opener, sync, log, 10, timeoutMs, logger)
}

func mockAuthURL() {
	gock.New(accountingURL).
		Get("/quickbooks/auth-url").
		Reply(200).
		JSON(map[string]any{
			"success": true,
			"data":    map[string]any{"auth_url": "https://ledger.example/consent"},
		})
}

func TestAuthorize_Completed(t *testing.T) {
	defer gock.Off()

	mockAuthURL()
	gock.New(accountingURL).
		Get("/quickbooks/sync-status").
		Reply(200).
		JSON(map[string]any{
			"success": true,
			"data":    map[string]any{"connected": true, "records_synced": 10},
		})

	session := &fakeSession{}
	opener := &fakeOpener{session: session}
	auditLog := activity.NewMemoryLog()
	sut := newAuthManager(opener, auditLog, 5000)

	// user finishes the consent flow shortly after the window opens
	time.AfterFunc(25*time.Millisecond, session.Close)

	outcome, status, err := sut.Authorize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, AuthCompleted, outcome)
	require.NotNil(t, status)
	assert.True(t, status.Connected)
	assert.Equal(t, "https://ledger.example/consent", opener.url)

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, "Authorization Initiated", entries[0].Activity)
	assert.Equal(t, activity.StatusSuccess, entries[0].Status)
}

func TestAuthorize_TimedOut(t *testing.T) {
	defer gock.Off()

	mockAuthURL()

	session := &fakeSession{}
	auditLog := activity.NewMemoryLog()
	sut := newAuthManager(&fakeOpener{session: session}, auditLog, 60)

	outcome, status, err := sut.Authorize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, AuthTimedOut, outcome)
	assert.Nil(t, status)
	assert.True(t, session.Closed(), "the window must be closed when the wait expires")

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, activity.StatusFailed, entries[0].Status)
	assert.Equal(t, "Authorization timed out", entries[0].Details)
}

func TestAuthorize_Cancelled(t *testing.T) {
	defer gock.Off()

	mockAuthURL()

	session := &fakeSession{}
	auditLog := activity.NewMemoryLog()
	sut := newAuthManager(&fakeOpener{session: session}, auditLog, 5000)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(25*time.Millisecond, cancel)

	outcome, status, err := sut.Authorize(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, AuthCanceled, outcome)
	assert.Nil(t, status)
	assert.True(t, session.Closed())

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, activity.StatusFailed, entries[0].Status)
}

func TestAuthorize_AuthURLFailure(t *testing.T) {
	defer gock.Off()

	gock.New(accountingURL).
		Get("/quickbooks/auth-url").
		Reply(500).
		JSON(map[string]any{"detail": "auth service down"})

	auditLog := activity.NewMemoryLog()
	sut := newAuthManager(&fakeOpener{session: &fakeSession{}}, auditLog, 5000)

	_, _, err := sut.Authorize(context.Background())
	require.Error(t, err)

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, activity.StatusFailed, entries[0].Status)
	assert.Equal(t, "auth service down", entries[0].Details)
}

func TestAuthorize_OpenerFailure(t *testing.T) {
	defer gock.Off()

	mockAuthURL()

	auditLog := activity.NewMemoryLog()
	sut := newAuthManager(&fakeOpener{openErr: errors.New("no display")}, auditLog, 5000)

	_, _, err := sut.Authorize(context.Background())
	require.Error(t, err)

	entries, _ := auditLog.Entries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, activity.StatusFailed, entries[0].Status)
}
