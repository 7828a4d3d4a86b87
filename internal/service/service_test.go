package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nomvote/nomvote/internal/auth"
	"github.com/nomvote/nomvote/internal/cache"
	"github.com/nomvote/nomvote/internal/metrics"
	"github.com/nomvote/nomvote/internal/model"
	"github.com/nomvote/nomvote/internal/repository"
	"github.com/nomvote/nomvote/internal/service"
	"github.com/nomvote/nomvote/internal/testutil"
)

const testSecret = "test-secret-0123456789abcdef"

type fixture struct {
	store    repository.Store
	signer   *auth.TokenSigner
	recorder *metrics.InMemoryRecorder
	tokens   *service.TokenService
	users    *service.UserService
	nominees *service.NomineeService
}

func newFixture(t *testing.T, sessions cache.SessionStore) *fixture {
	t.Helper()

	store := testutil.NewSQLiteStore(t)
	signer, err := auth.NewTokenSigner(testSecret, 0)
	require.NoError(t, err)

	recorder := metrics.NewInMemory()
	hasher := auth.NewPasswordHasher(auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1})
	tokens := service.NewTokenService(store, signer, sessions, recorder, nil)

	return &fixture{
		store:    store,
		signer:   signer,
		recorder: recorder,
		tokens:   tokens,
		users:    service.NewUserService(store, hasher, tokens, recorder),
		nominees: service.NewNomineeService(store, recorder),
	}
}

// signup registers a user and returns it with its first token.
func (f *fixture) signup(t *testing.T, email string) (*model.User, string) {
	t.Helper()
	user, token, err := f.users.Signup(context.Background(), email, "pw-"+email)
	require.NoError(t, err)
	return user, token
}

func (f *fixture) tokenCount(t *testing.T, userID string) int {
	t.Helper()
	user, err := f.store.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	return len(user.Tokens)
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }
