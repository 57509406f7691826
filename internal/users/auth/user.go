// Copyright (c) 2026 theNeighbourhood. All rights reserved.

/*
Package auth implements the user identity layer of theNeighbourhood.

It defines the core User entity and the logic for registration, login,
token refresh, and logout.

# Architecture

This layer is the "Truth" of the identity system. The User entity carries the
employee profile fields (name, title, ministry) that are embedded into access
tokens, plus the hashed refresh token that backs the single-session refresh
design: each login replaces the previous refresh-token hash, so at most one
refresh token is ever valid per account.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered public-service employee.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.

	// Profile fields. These travel inside the access token so that most
	// requests never need a database round trip for display data.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio,omitempty"`
	Title     string `json:"title,omitempty"`
	Ministry  string `json:"ministry,omitempty"`

	// NotificationPreference controls outbound email behaviour
	// (see [NotificationAll] and friends).
	NotificationPreference string `json:"notification_preference"`

	// RefreshTokenHash is the SHA-256 fingerprint of the currently valid
	// refresh token, or empty when the user is logged out. Omitted for security.
	RefreshTokenHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldBio         = "bio"
	FieldTitle       = "title"
	FieldMinistry    = "ministry"
	FieldToken       = "token"
	FieldUser        = "user"
	FieldMessage     = "message"
	FieldPreference  = "notification_preference"
	FieldAccessToken = "token"
)
