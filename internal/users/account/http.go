// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/middleware"
	requestutil "github.com/hybridworkplace/theneighbourhood/internal/platform/request"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/respond"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/validate"
	"github.com/hybridworkplace/theneighbourhood/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements account profile and presence HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with account-specific routes.
//
// # Endpoints
//   - GET    /me              : Full own profile.
//   - PATCH  /me              : Partial profile update.
//   - DELETE /me              : Explicit self-delete.
//   - POST   /me/ping         : Online-status heartbeat.
//   - GET    /{username}      : Public profile of any user.
//
// All routes require authentication; public profiles are still member-only.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.me)
	router.Patch("/me", handler.updateProfile)
	router.Delete("/me", handler.deleteAccount)
	router.Post("/me/ping", handler.ping)
	router.Get("/{username}", handler.getProfile)

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	FirstName              *string `json:"first_name"`
	LastName               *string `json:"last_name"`
	Bio                    *string `json:"bio"`
	Title                  *string `json:"title"`
	Ministry               *string `json:"ministry"`
	NotificationPreference *string `json:"notification_preference"`
}

/*
Me returns the authenticated user's full account record.

GET /api/v1/users/me

Response:
  - 200: User: Full own profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateProfile applies a partial update to the caller's own profile.

PATCH /api/v1/users/me

Request:
  - Body: updateProfileRequest (all fields optional)

Response:
  - 200: User: Updated profile
  - 400: ErrInvalidJSON: Validation failure
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.FirstName != nil {
		validator.MaxLen(auth.FieldFirstName, *input.FirstName, auth.NameMaxLen)
	}
	if input.LastName != nil {
		validator.MaxLen(auth.FieldLastName, *input.LastName, auth.NameMaxLen)
	}
	if input.Bio != nil {
		validator.MaxLen(auth.FieldBio, *input.Bio, auth.BioMaxLen)
	}
	if input.NotificationPreference != nil {
		validator.OneOf(auth.FieldPreference, *input.NotificationPreference,
			auth.NotificationAll, auth.NotificationDigest, auth.NotificationNone)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateInput{
		FirstName:              input.FirstName,
		LastName:               input.LastName,
		Bio:                    input.Bio,
		Title:                  input.Title,
		Ministry:               input.Ministry,
		NotificationPreference: input.NotificationPreference,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DeleteAccount permanently removes the caller's own account.

DELETE /api/v1/users/me

Description: The target is always the authenticated user; no path parameter
is accepted, so deleting another user's account is structurally impossible.

Response:
  - 204: No Content: Account removed
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Ping refreshes the caller's online-status window.

POST /api/v1/users/me/ping

Response:
  - 204: No Content: Presence refreshed
*/
func (handler *Handler) ping(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Ping(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GetProfile returns the public profile of a user by username.

GET /api/v1/users/{username}

Response:
  - 200: Profile: Public profile with online status
  - 404: ErrNotFound: Unknown username
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")

	profile, err := handler.accountService.GetProfile(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
