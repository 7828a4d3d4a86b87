package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nomvote/nomvote/internal/model"
	"github.com/nomvote/nomvote/internal/repository"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema empties every application table.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE nominees, user_tokens, users CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// NewSQLiteStore opens a migrated SQLite store in a per-test directory.
func NewSQLiteStore(t testing.TB) repository.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nomvote.db")
	store, err := repository.Open(context.Background(), repository.Options{
		Driver:     repository.DriverSQLite,
		SQLitePath: path,
	})
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// NewMiniRedis starts an in-process Redis server and returns a client for it.
func NewMiniRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with sensible defaults. The password hash is a
// placeholder; tests that log in should go through the user service.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	return &model.User{
		ID:           NewID(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		Tokens:       []model.AuthToken{},
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

// NewTestNominee creates an untallied nominee owned by creatorID.
func NewTestNominee(t testing.TB, creatorID, name string) *model.Nominee {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Nominee{
		ID:        NewID(),
		CreatorID: creatorID,
		Name:      name,
		Email:     UniqueEmail(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewID returns a fresh record id.
func NewID() string {
	return ulid.Make().String()
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, ulid.Make().String())
}
