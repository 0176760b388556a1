package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// TestStoreWithSQLite tests store operations with SQLite
func TestStoreWithSQLite(t *testing.T) {
	testBasicOperations(t, DriverSQLite, nil)
}

// TestStoreWithPostgres tests store operations with PostgreSQL
func TestStoreWithPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	// Recover from panic if Docker is not available
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping PostgreSQL test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("Skipping PostgreSQL test: Docker not available (%v)", err)
		return
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	testBasicOperations(t, DriverPostgres, pgContainer)
}

// createFreshStore creates a new store instance for test isolation.
// SQLite gets a fresh :memory: database; PostgreSQL a uniquely-named
// database inside the shared container.
func createFreshStore(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) *Store {
	t.Helper()
	ctx := context.Background()

	var dsn string
	switch driver {
	case DriverSQLite:
		dsn = ":memory:"
	case DriverPostgres:
		dbName := "test_" + uuid.New().String()[:8]

		_, _, err := pgContainer.Exec(
			ctx,
			[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", "CREATE DATABASE " + dbName},
		)
		require.NoError(t, err)

		host, err := pgContainer.Host(ctx)
		require.NoError(t, err)
		port, err := pgContainer.MappedPort(ctx, "5432")
		require.NoError(t, err)
		dsn = fmt.Sprintf(
			"host=%s port=%s user=testuser password=testpass dbname=%s sslmode=disable",
			host, port.Port(), dbName,
		)

		t.Cleanup(func() {
			_, _, _ = pgContainer.Exec(
				context.Background(),
				[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", "DROP DATABASE IF EXISTS " + dbName},
			)
		})
	default:
		t.Fatalf("unsupported driver: %s", driver)
	}

	s, err := New(ctx, driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store) *models.User {
	t.Helper()
	email := uuid.New().String() + "@example.com"
	u := &models.User{Email: &email, Name: "Test User", Role: "user"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newPendingAuthorization(t *testing.T, s *Store, userCode string) *models.DeviceAuthorization {
	t.Helper()
	da := &models.DeviceAuthorization{
		DeviceCodeHash: uuid.New().String(),
		UserCode:       userCode,
		ExpiresAt:      testNow.Add(10 * time.Minute),
		Interval:       2,
		CreatedAt:      testNow,
	}
	require.NoError(t, s.CreateDeviceAuthorization(context.Background(), da))
	return da
}

func newCliToken(userID string, createdAt time.Time) *models.CliToken {
	return &models.CliToken{
		TokenHash: uuid.New().String(),
		UserID:    userID,
		Label:     "laptop",
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(30 * 24 * time.Hour),
	}
}

func testBasicOperations(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) {
	ctx := context.Background()

	t.Run("DeviceAuthorizationLookup", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		da := newPendingAuthorization(t, s, "ABCDEFGH")

		byHash, err := s.GetDeviceAuthorizationByHash(ctx, da.DeviceCodeHash)
		require.NoError(t, err)
		assert.Equal(t, da.ID, byHash.ID)
		assert.Nil(t, byHash.UserID)

		byCode, err := s.GetDeviceAuthorizationByUserCode(ctx, "ABCDEFGH")
		require.NoError(t, err)
		assert.Equal(t, da.ID, byCode.ID)

		_, err = s.GetDeviceAuthorizationByHash(ctx, "missing")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("DuplicateUserCode", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		newPendingAuthorization(t, s, "ABCDEFGH")

		dup := &models.DeviceAuthorization{
			DeviceCodeHash: uuid.New().String(),
			UserCode:       "ABCDEFGH",
			ExpiresAt:      testNow.Add(time.Minute),
			Interval:       2,
		}
		assert.ErrorIs(t, s.CreateDeviceAuthorization(ctx, dup), ErrDuplicateKey)
	})

	t.Run("PollUpdateKeepsApproval", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		u := newTestUser(t, s)
		da := newPendingAuthorization(t, s, "PQRSTUVW")

		ok, err := s.ApproveDeviceAuthorization(ctx, da.ID, u.ID, testNow)
		require.NoError(t, err)
		require.True(t, ok)

		// da is the stale pre-approval copy; poll bookkeeping must not undo approval
		pollAt := testNow.Add(time.Second)
		da.Attempts = 3
		da.LastPollAt = &pollAt
		da.Interval = 4
		require.NoError(t, s.UpdateDeviceAuthorizationPoll(ctx, da))

		got, err := s.GetDeviceAuthorizationByHash(ctx, da.DeviceCodeHash)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Attempts)
		assert.Equal(t, 4, got.Interval)
		require.NotNil(t, got.UserID)
		assert.Equal(t, u.ID, *got.UserID)
	})

	t.Run("ApproveOnlyOnce", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		first := newTestUser(t, s)
		second := newTestUser(t, s)
		da := newPendingAuthorization(t, s, "HJKMNPQR")

		ok, err := s.ApproveDeviceAuthorization(ctx, da.ID, first.ID, testNow)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.ApproveDeviceAuthorization(ctx, da.ID, second.ID, testNow.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.GetDeviceAuthorizationByHash(ctx, da.DeviceCodeHash)
		require.NoError(t, err)
		assert.Equal(t, first.ID, *got.UserID)
	})

	t.Run("ClaimRequiresApproval", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		u := newTestUser(t, s)
		da := newPendingAuthorization(t, s, "ZXCVBNMA")

		err := s.ClaimDeviceAuthorization(ctx, da.ID, newCliToken(u.ID, testNow))
		assert.ErrorIs(t, err, ErrDeviceAuthorizationClaimed)

		tokens, err := s.ListCliTokensByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, tokens, "no token may be written for an unapproved record")
	})

	t.Run("ClaimExactlyOnceUnderConcurrency", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		u := newTestUser(t, s)
		da := newPendingAuthorization(t, s, "QWERTYUP")
		_, err := s.ApproveDeviceAuthorization(ctx, da.ID, u.ID, testNow)
		require.NoError(t, err)

		const pollers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			wins    int
			claimed int
		)
		for range pollers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.ClaimDeviceAuthorization(ctx, da.ID, newCliToken(u.ID, testNow))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case assert.ErrorIs(t, err, ErrDeviceAuthorizationClaimed):
					claimed++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
		assert.Equal(t, pollers-1, claimed)

		tokens, err := s.ListCliTokensByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, tokens, 1)

		_, err = s.GetDeviceAuthorizationByHash(ctx, da.DeviceCodeHash)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("DeleteExpiredDeviceAuthorizations", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		old := newPendingAuthorization(t, s, "OLDCODE2")
		require.NoError(t, s.DB().Model(old).Update("expires_at", testNow.Add(-2*time.Hour)).Error)
		live := newPendingAuthorization(t, s, "LIVECODE")

		n, err := s.DeleteExpiredDeviceAuthorizations(ctx, testNow.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = s.GetDeviceAuthorizationByHash(ctx, live.DeviceCodeHash)
		assert.NoError(t, err)
	})

	t.Run("CliTokenLifecycle", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		owner := newTestUser(t, s)
		other := newTestUser(t, s)

		older := newCliToken(owner.ID, testNow.Add(-time.Hour))
		newer := newCliToken(owner.ID, testNow)
		older.ID, newer.ID = uuid.New().String(), uuid.New().String()
		require.NoError(t, s.DB().Create(older).Error)
		require.NoError(t, s.DB().Create(newer).Error)

		list, err := s.ListCliTokensByUserID(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)

		ok, err := s.RevokeCliToken(ctx, other.ID, older.ID, testNow)
		require.NoError(t, err)
		assert.False(t, ok, "foreign user cannot revoke")

		ok, err = s.RevokeCliToken(ctx, owner.ID, older.ID, testNow)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.RevokeCliToken(ctx, owner.ID, older.ID, testNow.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, ok, "second revoke changes nothing")

		got, err := s.GetCliTokenForUser(ctx, owner.ID, older.ID)
		require.NoError(t, err)
		require.NotNil(t, got.RevokedAt)
		assert.True(t, got.RevokedAt.Equal(testNow))

		ok, err = s.RenameCliToken(ctx, owner.ID, newer.ID, "work laptop")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.RenameCliToken(ctx, other.ID, newer.ID, "stolen")
		require.NoError(t, err)
		assert.False(t, ok)

		byHash, err := s.GetCliTokenByHash(ctx, newer.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, "work laptop", byHash.Label)

		_, err = s.GetCliTokenForUser(ctx, other.ID, newer.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("TouchCliToken", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		u := newTestUser(t, s)
		tok := newCliToken(u.ID, testNow)
		tok.ID = uuid.New().String()
		require.NoError(t, s.DB().Create(tok).Error)

		require.NoError(t, s.TouchCliToken(ctx, tok.ID, testNow, testNow.Add(-time.Minute)))
		// A second touch within the interval is skipped.
		require.NoError(t, s.TouchCliToken(ctx, tok.ID, testNow.Add(10*time.Second), testNow.Add(-50*time.Second)))

		got, err := s.GetCliTokenByHash(ctx, tok.TokenHash)
		require.NoError(t, err)
		require.NotNil(t, got.LastUsedAt)
		assert.True(t, got.LastUsedAt.Equal(testNow))
	})

	t.Run("RateLimitWindow", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		const limit = 3

		for i := range limit {
			ok, err := s.TakeRateLimitSlot(ctx, "device_code", "10.0.0.1", limit, time.Hour, testNow.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
			assert.True(t, ok)
		}

		ok, err := s.TakeRateLimitSlot(ctx, "device_code", "10.0.0.1", limit, time.Hour, testNow.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, ok)

		// Other keys and scopes are independent.
		ok, err = s.TakeRateLimitSlot(ctx, "device_code", "10.0.0.2", limit, time.Hour, testNow.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.TakeRateLimitSlot(ctx, "other", "10.0.0.1", limit, time.Hour, testNow.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.TakeRateLimitSlot(ctx, "device_code", "10.0.0.1", limit, time.Hour, testNow.Add(time.Hour+time.Second))
		require.NoError(t, err)
		assert.True(t, ok, "window has elapsed for the first event")

		n, err := s.PruneRateLimitEvents(ctx, testNow.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(limit), n)
	})

	t.Run("RefreshTokenSlot", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		u := newTestUser(t, s)
		exp := testNow.Add(24 * time.Hour)

		require.NoError(t, s.SetRefreshToken(ctx, u.ID, "hash-1", exp))
		got, err := s.GetUserByRefreshTokenHash(ctx, "hash-1")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		require.NoError(t, s.RotateRefreshToken(ctx, u.ID, "hash-1", "hash-2", exp))
		assert.ErrorIs(t, s.RotateRefreshToken(ctx, u.ID, "hash-1", "hash-3", exp), ErrRefreshTokenStale)

		_, err = s.GetUserByRefreshTokenHash(ctx, "hash-1")
		assert.ErrorIs(t, err, ErrRecordNotFound)

		require.NoError(t, s.ClearRefreshToken(ctx, u.ID))
		cleared, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, cleared.RefreshTokenHash)
		assert.Nil(t, cleared.RefreshTokenExpiresAt)

		assert.ErrorIs(t, s.SetRefreshToken(ctx, "missing", "hash-9", exp), ErrRecordNotFound)
	})

	t.Run("UpsertExternalUser", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)

		created, err := s.UpsertExternalUser(ctx, core.ExternalProfile{
			ExternalID: "google-1",
			Email:      "ada@example.com",
			Name:       "Ada",
		}, models.AuthSourceGoogle)
		require.NoError(t, err)
		assert.Equal(t, "Ada", created.Name)

		updated, err := s.UpsertExternalUser(ctx, core.ExternalProfile{
			ExternalID: "google-1",
			Email:      "ada@example.com",
			Name:       "Ada Lovelace",
			Picture:    "https://example.com/a.png",
		}, models.AuthSourceGoogle)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Ada Lovelace", updated.Name)
		assert.Equal(t, "https://example.com/a.png", updated.Picture)
	})

	t.Run("UpsertExternalUserLinksByEmail", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		existing := newTestUser(t, s)

		linked, err := s.UpsertExternalUser(ctx, core.ExternalProfile{
			ExternalID: "google-2",
			Email:      existing.EmailOrEmpty(),
		}, models.AuthSourceGoogle)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, linked.ID)
		require.NotNil(t, linked.ExternalID)
		assert.Equal(t, "google-2", *linked.ExternalID)
		assert.Equal(t, "Test User", linked.Name, "empty profile fields keep stored values")
	})

	t.Run("MetricsCounts", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		u := newTestUser(t, s)

		pending := newPendingAuthorization(t, s, "PENDING2")
		approved := newPendingAuthorization(t, s, "APPROVED")
		_, err := s.ApproveDeviceAuthorization(ctx, approved.ID, u.ID, testNow)
		require.NoError(t, err)
		_ = pending

		active := newCliToken(u.ID, testNow)
		active.ID = uuid.New().String()
		revoked := newCliToken(u.ID, testNow)
		revoked.ID = uuid.New().String()
		revoked.RevokedAt = &testNow
		require.NoError(t, s.DB().Create(active).Error)
		require.NoError(t, s.DB().Create(revoked).Error)

		live, err := s.CountLiveDeviceAuthorizations(ctx, testNow)
		require.NoError(t, err)
		assert.Equal(t, int64(2), live)

		waiting, err := s.CountPendingDeviceAuthorizations(ctx, testNow)
		require.NoError(t, err)
		assert.Equal(t, int64(1), waiting)

		tokens, err := s.CountActiveCliTokens(ctx, testNow)
		require.NoError(t, err)
		assert.Equal(t, int64(1), tokens)
	})

	t.Run("AuditLogs", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)

		logs := []*models.AuditLog{
			{
				ID:          uuid.New().String(),
				EventType:   models.EventCliTokenRevoked,
				EventTime:   testNow.Add(-48 * time.Hour),
				Severity:    models.SeverityInfo,
				ActorUserID: "user-1",
				Action:      "revoke",
				Success:     true,
				CreatedAt:   testNow.Add(-48 * time.Hour),
			},
			{
				ID:          uuid.New().String(),
				EventType:   models.EventSessionRefreshed,
				EventTime:   testNow,
				Severity:    models.SeverityInfo,
				ActorUserID: "user-1",
				Action:      "refresh",
				Success:     true,
				CreatedAt:   testNow,
			},
		}
		require.NoError(t, s.CreateAuditLogBatch(ctx, logs))

		got, err := s.ListAuditLogsByActor(ctx, "user-1", 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, models.EventSessionRefreshed, got[0].EventType)

		n, err := s.DeleteOldAuditLogs(ctx, testNow.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)
		u := newTestUser(t, s)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.GetUserByID(canceled, u.ID)
		assert.ErrorIs(t, err, context.Canceled)

		email := "late@example.com"
		err = s.CreateUser(canceled, &models.User{Email: &email, Name: "Late"})
		assert.ErrorIs(t, err, context.Canceled)

		_, err = s.ListAuditLogsByActor(canceled, u.ID, 10)
		assert.ErrorIs(t, err, context.Canceled)

		err = s.CreateAuditLogBatch(canceled, []*models.AuditLog{{
			ID:          uuid.New().String(),
			EventType:   models.EventSessionRefreshed,
			EventTime:   testNow,
			Severity:    models.SeverityInfo,
			ActorUserID: u.ID,
			Action:      "refresh",
			Success:     true,
		}})
		assert.ErrorIs(t, err, context.Canceled)

		_, err = s.CountActiveCliTokens(canceled, testNow)
		assert.ErrorIs(t, err, context.Canceled)

		got, err := s.ListAuditLogsByActor(ctx, u.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		name        string
		driver      string
		dsn         string
		wantName    string
		expectError bool
	}{
		{name: "sqlite memory", driver: DriverSQLite, dsn: ":memory:", wantName: "sqlite"},
		{name: "sqlite file", driver: DriverSQLite, dsn: "orca.db", wantName: "sqlite"},
		{name: "postgres", driver: DriverPostgres, dsn: "host=localhost", wantName: "postgres"},
		{name: "mysql is not supported", driver: "mysql", dsn: "user:pass@tcp(localhost:3306)/db", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialector, err := dialectorFor(tt.driver, tt.dsn)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrUnsupportedDriver)
				assert.Nil(t, dialector)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, dialector.Name())
		})
	}
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "orca.db?_busy_timeout=5000", sqliteDSN("orca.db"))
	assert.Equal(t, "orca.db?_foreign_keys=1", sqliteDSN("orca.db?_foreign_keys=1"))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), "mysql", "dsn")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
