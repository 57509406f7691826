// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/sec"
	"github.com/hybridworkplace/theneighbourhood/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and verifying security tokens.
//
// It is satisfied by [sec.TokenService] and kept as an interface so the
// service layer can be tested without real signing keys.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT embedding the user's identity
	// and display profile.
	GenerateAccessToken(userID, username, email, firstName, lastName string) (string, error)

	// GenerateRefreshToken creates a signed long-lived JWT carrying only the username.
	GenerateRefreshToken(username string) (string, error)

	// VerifyRefreshToken checks a refresh token and returns the embedded username.
	VerifyRefreshToken(tokenString string) (string, error)

	// RefreshTokenTTL returns the configured refresh token lifetime.
	RefreshTokenTTL() time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed before merging.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new employee.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Title     string
	Ministry  string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrollment of a new employee, handling password hashing and
identity uniqueness checks.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:                     uuid.New(),
		Username:               input.Username,
		Email:                  input.Email,
		PasswordHash:           hashedPassword,
		FirstName:              input.FirstName,
		LastName:               input.LastName,
		Title:                  input.Title,
		Ministry:               input.Ministry,
		NotificationPreference: NotificationAll,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and records the refresh-token fingerprint on the user record. A new login
replaces any previously stored fingerprint, so at most one refresh token is
valid per account at any time.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	// Look up by username. Generic failure message to prevent enumeration.
	user, err := service.userRepository.FindByUsername(context, input.Username)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Generate short-lived Access Token embedding the display profile
	accessToken, err := service.tokenProvider.GenerateAccessToken(
		user.ID, user.Username, user.Email, user.FirstName, user.LastName)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token carrying only the username
	refreshToken, err := service.tokenProvider.GenerateRefreshToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Store the fingerprint of the refresh token on the user record,
	// replacing any prior one.
	if err := service.userRepository.SetRefreshTokenHash(context, user.ID, sec.HashToken(refreshToken)); err != nil {
		return nil, fmt.Errorf("auth_service_store_refresh_hash_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: time.Now().Add(service.tokenProvider.RefreshTokenTTL()),
		User:                  user,
	}, nil
}

// # Session Management

/*
Refresh mints a new access token from a valid refresh token.

Description: Verifies the refresh token's signature and expiry, loads the
user it names, and compares the token fingerprint against the one stored at
login. The refresh token itself is NOT rotated: the same cookie keeps working
until it expires or the user logs out.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - string: New access token
  - *User: The authenticated user
  - err: Forbidden on any token failure
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (string, *User, error) {

	// Verify signature and expiry; the embedded username identifies the account.
	username, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", nil, apperr.Forbidden("Invalid or expired refresh token")
	}

	user, err := service.userRepository.FindByUsername(context, username)
	if err != nil {
		return "", nil, apperr.Forbidden("Invalid or expired refresh token")
	}

	// The presented token must match the fingerprint stored at login.
	// A mismatch means the token was superseded by a newer login or revoked.
	if user.RefreshTokenHash == "" || user.RefreshTokenHash != sec.HashToken(refreshToken) {
		return "", nil, apperr.Forbidden("Invalid or expired refresh token")
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(
		user.ID, user.Username, user.Email, user.FirstName, user.LastName)
	if err != nil {
		return "", nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	return accessToken, user, nil
}

/*
Logout invalidates the user's refresh token.

Description: Verifies the refresh token and clears the stored fingerprint so
the token can never be used again.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: NotFound if the user no longer exists, Forbidden on an invalid token
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	// Verify the presented token before touching state.
	username, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		return apperr.Forbidden("Invalid refresh token")
	}

	user, err := service.userRepository.FindByUsername(context, username)
	if err != nil {
		return apperr.NotFound("User")
	}

	// Clear the stored fingerprint. The access token remains valid until
	// its own (short) expiry.
	if err := service.userRepository.ClearRefreshTokenHash(context, user.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}
