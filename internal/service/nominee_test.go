package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomvote/nomvote/internal/model"
	"github.com/nomvote/nomvote/internal/service"
)

func TestNomineeService_CreateGetRoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, _ := f.signup(t, "owner@example.com")

	created, err := f.nominees.Create(ctx, owner.ID, service.CreateNomineeInput{
		Name:  " n1 ",
		Email: "n1@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, created.CreatorID)
	assert.Equal(t, "n1", created.Name)
	assert.Nil(t, created.Votes)

	got, err := f.nominees.Get(ctx, created.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, created.CreatorID, got.CreatorID)
}

func TestNomineeService_CreateValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, _ := f.signup(t, "owner@example.com")

	tests := []struct {
		name  string
		input service.CreateNomineeInput
	}{
		{"missing name", service.CreateNomineeInput{Email: "n@example.com"}},
		{"blank name", service.CreateNomineeInput{Name: "  ", Email: "n@example.com"}},
		{"missing email", service.CreateNomineeInput{Name: "n"}},
		{"bad email", service.CreateNomineeInput{Name: "n", Email: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.nominees.Create(ctx, owner.ID, tt.input)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}

	list, err := f.nominees.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNomineeService_DuplicateEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, _ := f.signup(t, "owner@example.com")

	_, err := f.nominees.Create(ctx, owner.ID, service.CreateNomineeInput{Name: "n1", Email: "n@example.com"})
	require.NoError(t, err)

	_, err = f.nominees.Create(ctx, owner.ID, service.CreateNomineeInput{Name: "n2", Email: "n@example.com"})
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)
}

func TestNomineeService_ForeignOwnerSeesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	a, _ := f.signup(t, "a@example.com")
	b, _ := f.signup(t, "b@example.com")

	n, err := f.nominees.Create(ctx, a.ID, service.CreateNomineeInput{
		Name:  "n1",
		Email: "n1@example.com",
		Votes: int64Ptr(4),
	})
	require.NoError(t, err)

	list, err := f.nominees.List(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.nominees.Get(ctx, n.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrNomineeNotFound)

	_, err = f.nominees.Update(ctx, n.ID, b.ID, model.NomineePatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, service.ErrNomineeNotFound)

	_, err = f.nominees.Vote(ctx, n.ID, b.ID, 1)
	assert.ErrorIs(t, err, service.ErrNomineeNotFound)

	_, err = f.nominees.Delete(ctx, n.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrNomineeNotFound)

	got, err := f.nominees.Get(ctx, n.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "n1", got.Name)
	assert.Equal(t, int64(4), got.VoteCount())
}

func TestNomineeService_InvalidIDSkipsStore(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, _ := f.signup(t, "owner@example.com")

	for _, id := range []string{"123", "", "not-a-ulid", "01HZZZZZZZZZZZZZZZZZZZZZZZZZZ"} {
		_, err := f.nominees.Get(ctx, id, owner.ID)
		assert.ErrorIs(t, err, service.ErrNomineeNotFound, "id %q", id)
		_, err = f.nominees.Delete(ctx, id, owner.ID)
		assert.ErrorIs(t, err, service.ErrNomineeNotFound, "id %q", id)
	}
}

func TestNomineeService_Update(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, _ := f.signup(t, "owner@example.com")

	n, err := f.nominees.Create(ctx, owner.ID, service.CreateNomineeInput{Name: "n1", Email: "n1@example.com"})
	require.NoError(t, err)

	updated, err := f.nominees.Update(ctx, n.ID, owner.ID, model.NomineePatch{Name: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "n1@example.com", updated.Email)
	assert.Equal(t, owner.ID, updated.CreatorID)

	same, err := f.nominees.Update(ctx, n.ID, owner.ID, model.NomineePatch{})
	require.NoError(t, err)
	assert.Equal(t, "renamed", same.Name)

	_, err = f.nominees.Update(ctx, n.ID, owner.ID, model.NomineePatch{Email: strPtr("bad")})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.nominees.Update(ctx, n.ID, owner.ID, model.NomineePatch{Name: strPtr(" ")})
	assert.ErrorIs(t, err, service.ErrValidation)

	withVotes, err := f.nominees.Update(ctx, n.ID, owner.ID, model.NomineePatch{Votes: int64Ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(10), withVotes.VoteCount())
}

func TestNomineeService_ConcurrentVotes(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, _ := f.signup(t, "owner@example.com")

	n, err := f.nominees.Create(ctx, owner.ID, service.CreateNomineeInput{
		Name:  "n1",
		Email: "n1@example.com",
		Votes: int64Ptr(3),
	})
	require.NoError(t, err)

	const voters = 30
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.nominees.Vote(ctx, n.ID, owner.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.nominees.Get(ctx, n.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3+voters), got.VoteCount())

	snap := f.recorder.Snapshot()
	assert.Equal(t, uint64(voters), snap.VotesCast)
	assert.Equal(t, int64(voters), snap.VotesNet)
}

func TestNomineeService_DeleteReturnsRecord(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, _ := f.signup(t, "owner@example.com")

	n, err := f.nominees.Create(ctx, owner.ID, service.CreateNomineeInput{Name: "n1", Email: "n1@example.com"})
	require.NoError(t, err)

	deleted, err := f.nominees.Delete(ctx, n.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, deleted.ID)

	_, err = f.nominees.Get(ctx, n.ID, owner.ID)
	assert.ErrorIs(t, err, service.ErrNomineeNotFound)

	_, err = f.nominees.Delete(ctx, n.ID, owner.ID)
	assert.ErrorIs(t, err, service.ErrNomineeNotFound)
}
