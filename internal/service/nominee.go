package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nomvote/nomvote/internal/metrics"
	"github.com/nomvote/nomvote/internal/model"
	"github.com/nomvote/nomvote/internal/repository"
)

// NomineeStore persists nominees. Every method except CreateNominee is
// scoped to one creator.
type NomineeStore interface {
	CreateNominee(ctx context.Context, nominee *model.Nominee) error
	ListNomineesByCreator(ctx context.Context, creatorID string) ([]*model.Nominee, error)
	GetNomineeForCreator(ctx context.Context, id, creatorID string) (*model.Nominee, error)
	UpdateNomineeForCreator(ctx context.Context, id, creatorID string, patch model.NomineePatch) (*model.Nominee, error)
	IncrementNomineeVotes(ctx context.Context, id, creatorID string, delta int64) (*model.Nominee, error)
	DeleteNomineeForCreator(ctx context.Context, id, creatorID string) (*model.Nominee, error)
}

// NomineeService handles nominee business logic.
type NomineeService struct {
	store   NomineeStore
	metrics metrics.Recorder
}

// NewNomineeService creates a new NomineeService.
func NewNomineeService(store NomineeStore, recorder metrics.Recorder) *NomineeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &NomineeService{store: store, metrics: recorder}
}

// CreateNomineeInput defines input for creating a nominee.
type CreateNomineeInput struct {
	Name  string
	Email string
	Votes *int64
}

// Create stores a new nominee owned by creatorID.
func (s *NomineeService) Create(ctx context.Context, creatorID string, input CreateNomineeInput) (*model.Nominee, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail("email", input.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	nominee := &model.Nominee{
		ID:        newID(),
		CreatorID: creatorID,
		Name:      name,
		Email:     email,
		Votes:     input.Votes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateNominee(ctx, nominee); err != nil {
		return nil, translateNomineeError("create", err)
	}

	s.metrics.IncNomineeCreated()

	return nominee, nil
}

// List returns the caller's nominees, or an empty slice.
func (s *NomineeService) List(ctx context.Context, creatorID string) ([]*model.Nominee, error) {
	nominees, err := s.store.ListNomineesByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nominees: %w", err)
	}
	if nominees == nil {
		nominees = []*model.Nominee{}
	}
	return nominees, nil
}

// Get retrieves one of the caller's nominees.
func (s *NomineeService) Get(ctx context.Context, id, creatorID string) (*model.Nominee, error) {
	if !ValidID(id) {
		return nil, ErrNomineeNotFound
	}

	nominee, err := s.store.GetNomineeForCreator(ctx, id, creatorID)
	if err != nil {
		return nil, translateNomineeError("get", err)
	}
	return nominee, nil
}

// Update applies a partial update to one of the caller's nominees.
func (s *NomineeService) Update(ctx context.Context, id, creatorID string, patch model.NomineePatch) (*model.Nominee, error) {
	if !ValidID(id) {
		return nil, ErrNomineeNotFound
	}

	if patch.Name != nil {
		name, err := normalizeName(*patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Email != nil {
		email, err := normalizeEmail("email", *patch.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}

	if patch.IsEmpty() {
		return s.Get(ctx, id, creatorID)
	}

	nominee, err := s.store.UpdateNomineeForCreator(ctx, id, creatorID, patch)
	if err != nil {
		return nil, translateNomineeError("update", err)
	}

	s.metrics.IncNomineeUpdated()

	return nominee, nil
}

// Vote adds delta to the nominee's tally. An untallied nominee counts as 0.
func (s *NomineeService) Vote(ctx context.Context, id, creatorID string, delta int64) (*model.Nominee, error) {
	if !ValidID(id) {
		return nil, ErrNomineeNotFound
	}

	nominee, err := s.store.IncrementNomineeVotes(ctx, id, creatorID, delta)
	if err != nil {
		return nil, translateNomineeError("vote on", err)
	}

	s.metrics.AddVotes(delta)

	return nominee, nil
}

// Delete removes one of the caller's nominees and returns it.
func (s *NomineeService) Delete(ctx context.Context, id, creatorID string) (*model.Nominee, error) {
	if !ValidID(id) {
		return nil, ErrNomineeNotFound
	}

	nominee, err := s.store.DeleteNomineeForCreator(ctx, id, creatorID)
	if err != nil {
		return nil, translateNomineeError("delete", err)
	}

	s.metrics.IncNomineeDeleted()

	return nominee, nil
}

func translateNomineeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNomineeNotFound):
		return ErrNomineeNotFound
	case errors.Is(err, repository.ErrNomineeEmailExists):
		return ErrDuplicateEmail
	default:
		return fmt.Errorf("failed to %s nominee: %w", op, err)
	}
}
