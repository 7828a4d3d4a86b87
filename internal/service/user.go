package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nomvote/nomvote/internal/auth"
	"github.com/nomvote/nomvote/internal/metrics"
	"github.com/nomvote/nomvote/internal/model"
	"github.com/nomvote/nomvote/internal/repository"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserService handles registration and credential checks.
type UserService struct {
	store   UserStore
	hasher  *auth.PasswordHasher
	tokens  *TokenService
	metrics metrics.Recorder

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, hasher *auth.PasswordHasher, tokens *TokenService, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		metrics: recorder,
	}
}

// Register validates and stores a new account.
func (s *UserService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email, err := normalizeEmail("email", email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		Tokens:       []model.AuthToken{},
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Signup registers an account and issues its first session token.
func (s *UserService) Signup(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.Register(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issue(ctx, user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// FindByCredentials returns the user whose password matches. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) FindByCredentials(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.burnVerify(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login checks credentials and issues a new session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.FindByCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.IncLogin("failed")
		}
		return nil, "", err
	}

	token, err := s.issue(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.metrics.IncLogin("success")
	return user, token, nil
}

// RemoveToken revokes one session token.
func (s *UserService) RemoveToken(ctx context.Context, userID, token string) error {
	return s.tokens.Revoke(ctx, userID, token)
}

// Me reloads the account behind an authenticated request.
func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *UserService) issue(ctx context.Context, user *model.User) (string, error) {
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", err
	}
	user.Tokens = append(user.Tokens, model.AuthToken{Access: model.AccessAuth, Token: token})
	return token, nil
}

// burnVerify runs one verification against a fixed hash so a lookup miss
// costs about as much as a wrong password.
func (s *UserService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
