package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nomvote/nomvote/internal/auth"
	"github.com/nomvote/nomvote/internal/cache"
	"github.com/nomvote/nomvote/internal/metrics"
	"github.com/nomvote/nomvote/internal/model"
	"github.com/nomvote/nomvote/internal/repository"
)

// TokenStore persists each user's active session tokens.
type TokenStore interface {
	GetUserByToken(ctx context.Context, userID, token string) (*model.User, error)
	AddUserToken(ctx context.Context, userID string, token model.AuthToken) error
	RemoveUserToken(ctx context.Context, userID, token string) error
}

// TokenService issues, resolves, and revokes session tokens.
type TokenService struct {
	store    TokenStore
	signer   *auth.TokenSigner
	sessions cache.SessionStore
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewTokenService creates a new TokenService. A nil sessions cache disables
// caching; a nil recorder or logger falls back to a no-op or the default.
func NewTokenService(store TokenStore, signer *auth.TokenSigner, sessions cache.SessionStore, recorder metrics.Recorder, logger *slog.Logger) *TokenService {
	if sessions == nil {
		sessions = cache.Noop{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenService{
		store:    store,
		signer:   signer,
		sessions: sessions,
		metrics:  recorder,
		logger:   logger,
	}
}

// Issue signs a new token for userID and appends it to the user's active set.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	token, err := s.signer.Sign(userID)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	entry := model.AuthToken{Access: model.AccessAuth, Token: token}
	if err := s.store.AddUserToken(ctx, userID, entry); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}

// Verify checks signature and purpose and returns the embedded user id.
func (s *TokenService) Verify(token string) (string, error) {
	return s.signer.Verify(token)
}

// Authenticate resolves a presented token to its principal. The token must
// verify and still be in the user's active set.
func (s *TokenService) Authenticate(ctx context.Context, token string) (*model.AuthContext, error) {
	userID, err := s.signer.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	digest := auth.TokenDigest(token)

	cached, err := s.sessions.GetSession(ctx, digest)
	switch {
	case err == nil && cached.UserID == userID:
		s.metrics.IncAuthCacheHit()
		cached.Token = token
		return cached, nil
	case err == nil, errors.Is(err, cache.ErrCacheMiss):
		s.metrics.IncAuthCacheMiss()
	default:
		s.logger.Warn("session cache lookup failed", "error", err)
	}

	user, err := s.store.GetUserByToken(ctx, userID, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	if !user.HasToken(token) {
		return nil, ErrUnauthenticated
	}

	principal := &model.AuthContext{UserID: user.ID, Email: user.Email}
	if err := s.sessions.SetSession(ctx, digest, principal); err != nil {
		s.logger.Warn("session cache fill failed", "error", err)
	}

	principal.Token = token
	return principal, nil
}

// Revoke removes token from userID's active set. Revoking an unknown
// token succeeds.
func (s *TokenService) Revoke(ctx context.Context, userID, token string) error {
	if err := s.store.RemoveUserToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	// The marker written here stops a concurrent Authenticate from caching
	// the token again after the store lookup already returned it.
	if err := s.sessions.RevokeSession(ctx, auth.TokenDigest(token)); err != nil {
		// The stale entry expires on its own TTL.
		s.logger.Warn("session cache eviction failed", "user_id", userID, "error", err)
	}

	s.metrics.IncTokenRevoked()
	return nil
}
