// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
	"github.com/hybridworkplace/theneighbourhood/internal/users/auth"
)

// # Test Doubles

type fakeUserRepository struct {
	byID map[string]*auth.User
}

func (repository *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := repository.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (repository *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range repository.byID {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repository.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	copied := *user
	repository.byID[user.ID] = &copied
	return nil
}

func (repository *fakeUserRepository) Update(_ context.Context, user *auth.User) error {
	if _, ok := repository.byID[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	copied := *user
	repository.byID[user.ID] = &copied
	return nil
}

func (repository *fakeUserRepository) SetRefreshTokenHash(_ context.Context, userID, hash string) error {
	user, ok := repository.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.RefreshTokenHash = hash
	return nil
}

func (repository *fakeUserRepository) ClearRefreshTokenHash(_ context.Context, userID string) error {
	user, ok := repository.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.RefreshTokenHash = ""
	return nil
}

func (repository *fakeUserRepository) Delete(_ context.Context, id string) error {
	delete(repository.byID, id)
	return nil
}

type fakePresenceStore struct {
	online map[string]bool
	broken bool
}

func (store *fakePresenceStore) Ping(_ context.Context, userID string) error {
	if store.broken {
		return errors.New("redis unavailable")
	}
	store.online[userID] = true
	return nil
}

func (store *fakePresenceStore) IsOnline(_ context.Context, userID string) (bool, error) {
	if store.broken {
		return false, errors.New("redis unavailable")
	}
	return store.online[userID], nil
}

func (store *fakePresenceStore) Clear(_ context.Context, userID string) error {
	delete(store.online, userID)
	return nil
}

// # Fixtures

func newAccountTestService() (*Service, *fakeUserRepository, *fakePresenceStore) {
	repository := &fakeUserRepository{byID: map[string]*auth.User{
		"user-1": {
			ID:        "user-1",
			Username:  "amara",
			Email:     "amara@gov.example",
			FirstName: "Amara",
			LastName:  "Osei",
			Ministry:  "Digital Services",
		},
	}}
	presence := &fakePresenceStore{online: map[string]bool{}}
	return NewService(repository, presence), repository, presence
}

// # Tests

func TestGetProfileHidesPrivateFields(t *testing.T) {
	service, _, presence := newAccountTestService()
	require.NoError(t, presence.Ping(context.Background(), "user-1"))

	profile, err := service.GetProfile(context.Background(), "amara")
	require.NoError(t, err)

	assert.Equal(t, "amara", profile.Username)
	assert.Equal(t, "Digital Services", profile.Ministry)
	assert.True(t, profile.IsOnline)
}

func TestGetProfileDegradesToOfflineOnPresenceFailure(t *testing.T) {
	service, _, presence := newAccountTestService()
	presence.broken = true

	profile, err := service.GetProfile(context.Background(), "amara")
	require.NoError(t, err)
	assert.False(t, profile.IsOnline)
}

func TestUpdateProfileAppliesOnlyProvidedFields(t *testing.T) {
	service, repository, _ := newAccountTestService()

	bio := "Leading the records digitization programme."
	updated, err := service.UpdateProfile(context.Background(), "user-1", UpdateInput{Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, "Amara", updated.FirstName)
	assert.Equal(t, bio, repository.byID["user-1"].Bio)
}

func TestDeleteAccountClearsPresence(t *testing.T) {
	service, repository, presence := newAccountTestService()
	require.NoError(t, presence.Ping(context.Background(), "user-1"))

	require.NoError(t, service.DeleteAccount(context.Background(), "user-1"))

	assert.NotContains(t, repository.byID, "user-1")
	assert.NotContains(t, presence.online, "user-1")
}

func TestPingMarksUserOnline(t *testing.T) {
	service, _, presence := newAccountTestService()

	require.NoError(t, service.Ping(context.Background(), "user-1"))

	online, err := presence.IsOnline(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, online)
}
