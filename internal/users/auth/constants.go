// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package auth

// # Validation Constraints

const (
	// UsernameMinLen is the minimum username length accepted at registration.
	UsernameMinLen = 3

	// UsernameMaxLen is the maximum username length accepted at registration.
	UsernameMaxLen = 30

	// PasswordMinLen is the minimum password length accepted at registration.
	PasswordMinLen = 8

	// NameMaxLen is the maximum length for first and last names.
	NameMaxLen = 50

	// BioMaxLen is the maximum length for the free-text profile bio.
	BioMaxLen = 500
)

// # Notification Preferences

// Allowed values for [User.NotificationPreference].
const (
	// NotificationAll sends an email for every reply and mention.
	NotificationAll = "all"

	// NotificationDigest batches activity into the daily digest email.
	NotificationDigest = "digest"

	// NotificationNone disables all outbound email.
	NotificationNone = "none"
)
