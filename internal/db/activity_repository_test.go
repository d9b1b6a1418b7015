package db_test

import (
	"context"
	"log"
	"testing"
	"time"

	"feeconsole-service/internal/activity"
	"feeconsole-service/internal/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type ActivityRepositoryTestSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	sut         *db.ActivityRepository
	ctx         context.Context
}

func (s *ActivityRepositoryTestSuite) SetupSuite() {
	time.Local = time.UTC

	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("feeconsole_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		log.Fatal(err)
	}
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	if err != nil {
		log.Fatal(err)
	}

	db.RunMigrations(connStr, "../../migrations")

	pool, err := db.GetPool(connStr)
	if err != nil {
		log.Fatal(err)
	}

	s.pool = pool
	s.sut = db.NewActivityRepository(pool)
}

func (s *ActivityRepositoryTestSuite) TearDownSuite() {
	s.pool.Close()

	if err := s.pgContainer.Terminate(s.ctx); err != nil {
		log.Fatalf("error terminating postgres container: %s", err)
	}
}

func (s *ActivityRepositoryTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "DELETE FROM activity_log")
	if err != nil {
		log.Fatalf("error truncating activity_log table: %s", err)
	}
}

func (s *ActivityRepositoryTestSuite) TestAppend() {
	t := s.T()

	entry, err := s.sut.Append(s.ctx, activity.Entry{
		Integration: "quickbooks",
		Activity:    "Connect",
		Status:      activity.StatusSuccess,
		Details:     "Connected",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.Datetime.IsZero())
}

func (s *ActivityRepositoryTestSuite) TestEntriesNewestFirst() {
	t := s.T()

	older, err := s.sut.Append(s.ctx, activity.Entry{
		Datetime:    time.Now().Add(-time.Hour),
		Integration: "quickbooks",
		Activity:    "Connect",
		Status:      activity.StatusSuccess,
	})
	assert.NoError(t, err)

	newer, err := s.sut.Append(s.ctx, activity.Entry{
		Integration: "quickbooks",
		Activity:    "Sync Payments",
		Status:      activity.StatusSuccess,
	})
	assert.NoError(t, err)

	entries, err := s.sut.Entries(s.ctx)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, older.ID, entries[1].ID)
}

func (s *ActivityRepositoryTestSuite) TestResolvePending() {
	t := s.T()

	entry, err := s.sut.Append(s.ctx, activity.Entry{
		Integration: "quickbooks",
		Activity:    "Authorization Initiated",
		Status:      activity.StatusPending,
	})
	assert.NoError(t, err)

	err = s.sut.Resolve(s.ctx, entry.ID, activity.StatusSuccess, "Connected to accounting ledger")
	assert.NoError(t, err)

	entries, err := s.sut.Entries(s.ctx)
	assert.NoError(t, err)
	assert.Equal(t, activity.StatusSuccess, entries[0].Status)
	assert.Equal(t, "Connected to accounting ledger", entries[0].Details)
}

func (s *ActivityRepositoryTestSuite) TestResolveTerminalEntryFails() {
	t := s.T()

	entry, err := s.sut.Append(s.ctx, activity.Entry{
		Integration: "quickbooks",
		Activity:    "Connect",
		Status:      activity.StatusSuccess,
	})
	assert.NoError(t, err)

	err = s.sut.Resolve(s.ctx, entry.ID, activity.StatusFailed, "")
	assert.ErrorIs(t, err, activity.ErrNotPending)
}

func (s *ActivityRepositoryTestSuite) TestResolveUnknownEntry() {
	t := s.T()

	err := s.sut.Resolve(s.ctx, uuid.New(), activity.StatusSuccess, "")
	assert.ErrorIs(t, err, activity.ErrEntryNotFound)
}

func TestActivityRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ActivityRepositoryTestSuite))
}
