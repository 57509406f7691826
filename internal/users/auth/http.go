// Copyright (c) 2026 theNeighbourhood. All rights reserved.

/*
HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle: account creation,
login, access-token refresh, and logout.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/constants"
	requestutil "github.com/hybridworkplace/theneighbourhood/internal/platform/request"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/respond"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points
// (Registration, Login, Token refresh, Logout).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /login    : Authenticates and returns a JWT plus a refresh cookie.
//   - GET  /token    : Mints a new access token from the refresh cookie.
//   - GET  /logout   : Revokes the refresh token and clears the cookie.
//
// The refresh and logout endpoints are deliberately GETs keyed on the cookie
// alone; the legacy frontend calls them without a request body.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Get("/token", handler.token)
	router.Get("/logout", handler.logout)

	return router
}

// # Request Payloads

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title"`
	Ministry  string `json:"ministry"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, and persists
a new employee profile to the database.

Request:
  - Body: registerRequest (Username, Email, Password, profile fields)

Response:
  - 201: User: Created user profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLen).
		MaxLen(FieldUsername, input.Username, UsernameMaxLen).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLen).
		MaxLen(FieldFirstName, input.FirstName, NameMaxLen).
		MaxLen(FieldLastName, input.LastName, NameMaxLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Title:     input.Title,
		Ministry:  input.Ministry,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, generates JWT access tokens, and injects
a secure refresh token cookie into the response.

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 201: Session: Access token and User profile
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session)

	respond.Created(writer, map[string]any{
		FieldToken: session.AccessToken,
		FieldUser:  session.User,
	})
}

/*
Token issues a new access token using the refresh cookie.

GET /api/v1/auth/token

Description: Validates the refresh token cookie and mints a fresh access
token. The refresh token itself is not rotated; the cookie is left untouched.

Response:
  - 200: {token}: New access token
  - 404: ErrNotFound: No refresh cookie present
  - 403: ErrForbidden: Invalid or expired refresh token
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.NotFound("Session cookie"))
		return
	}

	accessToken, _, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldToken: accessToken,
	})
}

/*
Logout terminates the current user session.

GET /api/v1/auth/logout

Description: Invalidates the refresh token and clears the security cookie
from the client.

Response:
  - 204: No Content: Session terminated
  - 404: ErrNotFound: No refresh cookie present, or user no longer exists
  - 403: ErrForbidden: Invalid refresh token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.NotFound("Session cookie"))
		return
	}

	if err := handler.authService.Logout(request.Context(), cookie.Value); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

// # Cookie Management

// setRefreshCookie injects the HTTP-only refresh token cookie.
//
// SameSite=None is required because the frontend is served from a different
// origin than the API; Secure is mandatory whenever SameSite=None is set.
func setRefreshCookie(writer http.ResponseWriter, session *LoginSession) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// clearRefreshCookie expires the refresh token cookie on the client.
func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
