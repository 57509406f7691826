// Copyright (c) 2026 theNeighbourhood. All rights reserved.

/*
Package account implements profile management and online presence.

It covers everything an employee does with their own account after
authentication: viewing and editing the profile, the explicit self-delete,
and the online-status ping.

# Architecture

The account service reuses the auth package's [auth.UserRepository] for
persistent profile data and adds a volatile [PresenceStore] for online
status. Presence is a TTL key per user: the user counts as online while the
key lives, and going offline is simply the key expiring. No background
offline-status job is needed.
*/
package account

import "context"

// # Volatile Data Access

// PresenceStore defines the contract for tracking online status.
type PresenceStore interface {

	/*
		Ping marks the user as online for the presence window.

		Each call resets the TTL, so a client pinging at any interval shorter
		than the window keeps the user continuously online.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Storage failures
	*/
	Ping(context context.Context, userID string) error

	/*
		IsOnline reports whether the user's presence key is still alive.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - bool: Online status
		  - error: Storage failures
	*/
	IsOnline(context context.Context, userID string) (bool, error)

	/*
		Clear removes the user's presence key (logout or account deletion).

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Storage failures
	*/
	Clear(context context.Context, userID string) error
}
