package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomvote/nomvote/internal/auth"
	"github.com/nomvote/nomvote/internal/cache"
	"github.com/nomvote/nomvote/internal/model"
	"github.com/nomvote/nomvote/internal/service"
	"github.com/nomvote/nomvote/internal/testutil"
)

func TestTokenService_AuthenticateRejects(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	user, _ := f.signup(t, "a@example.com")

	foreign, err := auth.NewTokenSigner("another-secret-0123456789", 0)
	require.NoError(t, err)
	forged, err := foreign.Sign(user.ID)
	require.NoError(t, err)

	// Signed correctly but never stored for the user.
	unstored, err := f.signer.Sign(user.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"foreign secret", forged},
		{"not in active set", unstored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tokens.Authenticate(ctx, tt.token)
			assert.ErrorIs(t, err, service.ErrUnauthenticated)
		})
	}
}

func TestTokenService_SessionCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr, client := testutil.NewMiniRedis(t)
	f := newFixture(t, cache.NewWithClient(client, 0))

	user, token := f.signup(t, "a@example.com")

	first, err := f.tokens.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, first.UserID)
	assert.Equal(t, token, first.Token)

	second, err := f.tokens.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, second.UserID)
	assert.Equal(t, "a@example.com", second.Email)

	snap := f.recorder.Snapshot()
	assert.Equal(t, uint64(1), snap.AuthCacheMisses)
	assert.Equal(t, uint64(1), snap.AuthCacheHits)

	key := "session:" + auth.TokenDigest(token)
	require.True(t, mr.Exists(key))

	require.NoError(t, f.tokens.Revoke(ctx, user.ID, token))
	assert.False(t, mr.Exists(key), "revoke must evict the cached session")

	_, err = f.tokens.Authenticate(ctx, token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

// revokeDuringLookup revokes the token right after the store has confirmed
// it, before Authenticate gets to fill the cache.
type revokeDuringLookup struct {
	service.TokenStore
	revoke func()
	once   sync.Once
}

func (r *revokeDuringLookup) GetUserByToken(ctx context.Context, userID, token string) (*model.User, error) {
	user, err := r.TokenStore.GetUserByToken(ctx, userID, token)
	r.once.Do(r.revoke)
	return user, err
}

func TestTokenService_RevokeRacingCacheFill(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr, client := testutil.NewMiniRedis(t)
	sessions := cache.NewWithClient(client, 0)
	f := newFixture(t, sessions)

	user, token := f.signup(t, "a@example.com")

	store := &revokeDuringLookup{
		TokenStore: f.store,
		revoke: func() {
			require.NoError(t, f.tokens.Revoke(ctx, user.ID, token))
		},
	}
	racing := service.NewTokenService(store, f.signer, sessions, nil, nil)

	// The lookup saw the token before it was revoked.
	_, err := racing.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, 0, f.tokenCount(t, user.ID))

	assert.False(t, mr.Exists("session:"+auth.TokenDigest(token)), "revoked session must not be cached")

	_, err = f.tokens.Authenticate(ctx, token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}
