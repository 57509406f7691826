// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
)

// # Test Doubles

// fakeUserRepository is an in-memory [UserRepository] for service tests.
type fakeUserRepository struct {
	users map[string]*User // keyed by ID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*User{}}
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	if user, ok := f.users[id]; ok {
		return cloneUser(user), nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) Create(_ context.Context, user *User) error {
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeUserRepository) Update(_ context.Context, user *User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeUserRepository) SetRefreshTokenHash(_ context.Context, userID, tokenHash string) error {
	if user, ok := f.users[userID]; ok {
		user.RefreshTokenHash = tokenHash
		return nil
	}
	return apperr.NotFound("User")
}

func (f *fakeUserRepository) ClearRefreshTokenHash(_ context.Context, userID string) error {
	if user, ok := f.users[userID]; ok {
		user.RefreshTokenHash = ""
		return nil
	}
	return apperr.NotFound("User")
}

func (f *fakeUserRepository) Delete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func cloneUser(user *User) *User {
	copied := *user
	return &copied
}

// stubTokenProvider issues predictable token strings without real signing.
//
// Refresh tokens carry a generation counter so tests can distinguish tokens
// minted by successive logins.
type stubTokenProvider struct {
	generation int
}

func (s *stubTokenProvider) GenerateAccessToken(_, username, _, _, _ string) (string, error) {
	return "access." + username, nil
}

func (s *stubTokenProvider) GenerateRefreshToken(username string) (string, error) {
	s.generation++
	return "refresh." + username + "." + strings.Repeat("g", s.generation), nil
}

func (s *stubTokenProvider) VerifyRefreshToken(tokenString string) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[0] != "refresh" {
		return "", errors.New("malformed refresh token")
	}
	return parts[1], nil
}

func (s *stubTokenProvider) RefreshTokenTTL() time.Duration { return time.Hour }

// # Helpers

func newTestService(t *testing.T) (*Service, *fakeUserRepository) {
	t.Helper()
	repo := newFakeUserRepository()
	return NewService(repo, &stubTokenProvider{}), repo
}

func registerTestUser(t *testing.T, service *Service, username string) *User {
	t.Helper()
	user, err := service.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@ministry.example",
		Password:  "correct-horse-battery",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Ministry:  "Finance",
	})
	require.NoError(t, err)
	return user
}

// # Registration

func TestRegisterRejectsDuplicateIdentity(t *testing.T) {
	service, _ := newTestService(t)
	registerTestUser(t, service, "ada")

	// Same username, different email
	_, err := service.Register(context.Background(), RegisterInput{
		Username: "ada",
		Email:    "other@ministry.example",
		Password: "correct-horse-battery",
	})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)

	// Same email, different username
	_, err = service.Register(context.Background(), RegisterInput{
		Username: "ada2",
		Email:    "ada@ministry.example",
		Password: "correct-horse-battery",
	})
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

func TestRegisterHashesPassword(t *testing.T) {
	service, repo := newTestService(t)
	user := registerTestUser(t, service, "ada")

	stored := repo.users[user.ID]
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct-horse-battery", stored.PasswordHash)
	assert.Equal(t, NotificationAll, stored.NotificationPreference)
}

// # Login

func TestLoginIssuesTokensAndStoresFingerprint(t *testing.T) {
	service, repo := newTestService(t)
	user := registerTestUser(t, service, "ada")

	session, err := service.Login(context.Background(), LoginInput{
		Username: "ada",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	assert.Equal(t, "access.ada", session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "ada", session.User.Username)

	// The stored fingerprint must never equal the raw token.
	stored := repo.users[user.ID]
	assert.NotEmpty(t, stored.RefreshTokenHash)
	assert.NotEqual(t, session.RefreshToken, stored.RefreshTokenHash)
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	service, _ := newTestService(t)
	registerTestUser(t, service, "ada")

	_, err := service.Login(context.Background(), LoginInput{
		Username: "ada",
		Password: "wrong-password-entirely",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
}

func TestLoginUnknownUserIsUnauthorized(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Login(context.Background(), LoginInput{
		Username: "ghost",
		Password: "whatever-password",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	// Same generic failure as a wrong password, to prevent user enumeration.
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

// # Refresh

func TestRefreshIssuesNewAccessTokenWithoutRotation(t *testing.T) {
	service, _ := newTestService(t)
	registerTestUser(t, service, "ada")

	session, err := service.Login(context.Background(), LoginInput{
		Username: "ada",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	// The same refresh token works repeatedly: it is not rotated.
	for i := 0; i < 3; i++ {
		accessToken, user, err := service.Refresh(context.Background(), session.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "access.ada", accessToken)
		assert.Equal(t, "ada", user.Username)
	}
}

func TestRefreshWithSupersededTokenIsForbidden(t *testing.T) {
	service, _ := newTestService(t)
	registerTestUser(t, service, "ada")

	first, err := service.Login(context.Background(), LoginInput{
		Username: "ada",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	// A second login replaces the stored fingerprint (single-session refresh).
	second, err := service.Login(context.Background(), LoginInput{
		Username: "ada",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, _, err = service.Refresh(context.Background(), first.RefreshToken)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	// The latest token still works.
	_, _, err = service.Refresh(context.Background(), second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshWithMalformedTokenIsForbidden(t *testing.T) {
	service, _ := newTestService(t)

	_, _, err := service.Refresh(context.Background(), "not-a-real-token")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)
}

// # Logout

func TestLogoutClearsStoredFingerprint(t *testing.T) {
	service, repo := newTestService(t)
	user := registerTestUser(t, service, "ada")

	session, err := service.Login(context.Background(), LoginInput{
		Username: "ada",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), session.RefreshToken))
	assert.Empty(t, repo.users[user.ID].RefreshTokenHash)

	// The token is now dead for refresh purposes.
	_, _, err = service.Refresh(context.Background(), session.RefreshToken)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)
}

func TestLogoutForDeletedUserIsNotFound(t *testing.T) {
	service, repo := newTestService(t)
	user := registerTestUser(t, service, "ada")

	session, err := service.Login(context.Background(), LoginInput{
		Username: "ada",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), user.ID))

	err = service.Logout(context.Background(), session.RefreshToken)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}
