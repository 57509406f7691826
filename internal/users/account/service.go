// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package account

import (
	"context"
	"fmt"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/ctxutil"
	"github.com/hybridworkplace/theneighbourhood/internal/users/auth"
)

// # Contracts & Types

// Profile is the public view of an employee account.
//
// It deliberately exposes less than [auth.User]: no email, no timestamps,
// no credential material. Anything a fellow member may see lives here.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio,omitempty"`
	Title     string `json:"title,omitempty"`
	Ministry  string `json:"ministry,omitempty"`
	IsOnline  bool   `json:"is_online"`
}

// Service implements account profile and presence use cases.
type Service struct {
	userRepository auth.UserRepository
	presenceStore  PresenceStore
}

// NewService constructs a new account [Service] with necessary dependencies.
func NewService(userRepo auth.UserRepository, presence PresenceStore) *Service {
	return &Service{
		userRepository: userRepo,
		presenceStore:  presence,
	}
}

// # Profile Access

/*
Me returns the full account record of the authenticated user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: Full account entity (credential fields are JSON-hidden)
  - err: NotFound or storage failures
*/
func (service *Service) Me(context context.Context, userID string) (*auth.User, error) {
	return service.userRepository.FindByID(context, userID)
}

/*
GetProfile returns the public profile of any user by username.

Description: Resolves the account and annotates it with live presence data.
Presence lookup failures degrade to "offline" rather than failing the request.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *Profile: Public view with online status
  - err: NotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, username string) (*Profile, error) {
	user, err := service.userRepository.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	online, err := service.presenceStore.IsOnline(context, user.ID)
	if err != nil {
		// Presence is best-effort. Log and treat the user as offline.
		ctxutil.GetLogger(context).Warn("presence_lookup_failed", "user_id", user.ID, "error", err)
		online = false
	}

	return &Profile{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Title:     user.Title,
		Ministry:  user.Ministry,
		IsOnline:  online,
	}, nil
}

// # Profile Mutation

// UpdateInput holds the mutable profile fields. Nil pointers mean "unchanged".
type UpdateInput struct {
	FirstName              *string
	LastName               *string
	Bio                    *string
	Title                  *string
	Ministry               *string
	NotificationPreference *string
}

/*
UpdateProfile applies a partial update to the authenticated user's profile.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateInput

Returns:
  - *auth.User: Updated entity
  - err: NotFound or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateInput) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Title != nil {
		user.Title = *input.Title
	}
	if input.Ministry != nil {
		user.Ministry = *input.Ministry
	}
	if input.NotificationPreference != nil {
		user.NotificationPreference = *input.NotificationPreference
	}

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	return user, nil
}

/*
DeleteAccount permanently removes the authenticated user's own account.

Description: Accounts are deleted on explicit self-delete only; the handler
derives the ID from the access token, never from the request path, so one
user can never delete another.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Deletion failures
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {
	if err := service.userRepository.Delete(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	// Best-effort presence cleanup; an orphaned key would expire on its own anyway.
	_ = service.presenceStore.Clear(context, userID)

	return nil
}

// # Presence

/*
Ping refreshes the authenticated user's online-status window.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Storage failures
*/
func (service *Service) Ping(context context.Context, userID string) error {
	return service.presenceStore.Ping(context, userID)
}
