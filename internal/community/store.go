// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package community

import (
	"context"
	"errors"
	"time"

	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
)

// ErrVersionConflict is returned by mutating repository methods when the
// community's version changed between the caller's snapshot read and the
// conditional commit. The service retries the whole read-decide-commit cycle
// against a fresh snapshot.
var ErrVersionConflict = errors.New("community: version conflict")

// # Identity Resolution

// UserDirectory resolves usernames to user IDs for moderation endpoints,
// which address targets by username rather than by opaque ID.
type UserDirectory interface {

	/*
		ResolveUsername returns the user ID for a username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - string: User ID
		  - error: apperr.NotFound for unknown usernames
	*/
	ResolveUsername(context context.Context, username string) (string, error)
}

// # Community Data Access

// Repository defines the data access contract for the community aggregate.
//
// Every mutating method that takes a version parameter commits conditionally:
// the write only lands if the stored version still equals the given value, in
// which case the version is atomically incremented. Otherwise the method
// returns [ErrVersionConflict] and leaves the aggregate untouched.
type Repository interface {

	/*
		Create persists a new community aggregate, including the creator's
		initial membership and moderator entry.

		Parameters:
		  - context: context.Context
		  - community: *Community

		Returns:
		  - error: Conflict on duplicate title/slug, or persistence failures
	*/
	Create(context context.Context, community *Community) error

	/*
		FindBySlug returns the fully hydrated aggregate for a slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Community: Aggregate with members, moderators, and kicked lists
		  - error: apperr.NotFound or retrieval failures
	*/
	FindBySlug(context context.Context, slug string) (*Community, error)

	/*
		FindByID returns the fully hydrated aggregate for an ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Community: Aggregate with members, moderators, and kicked lists
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Community, error)

	/*
		List returns a page of community summaries plus the total count.

		Summaries carry the core record only; the attached lists are not
		hydrated for listings.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []Community: Page of summaries
		  - int: Total community count
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]Community, int, error)

	/*
		UpdateMeta commits changes to the core record (description, rules,
		tags, flags), conditional on the version.

		Parameters:
		  - context: context.Context
		  - community: *Community (mutated snapshot; Version is the expected value)

		Returns:
		  - error: ErrVersionConflict or persistence failures
	*/
	UpdateMeta(context context.Context, community *Community) error

	/*
		Delete permanently removes the community and, via cascades, its
		memberships, moderators, kick entries, posts, and comments.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		AddMember appends a membership, conditional on the version.

		Parameters:
		  - context: context.Context
		  - communityID: string
		  - member: Member
		  - version: int64

		Returns:
		  - error: ErrVersionConflict or persistence failures
	*/
	AddMember(context context.Context, communityID string, member Member, version int64) error

	/*
		RemoveMember deletes a membership, conditional on the version.

		Parameters:
		  - context: context.Context
		  - communityID: string
		  - userID: string
		  - version: int64

		Returns:
		  - error: ErrVersionConflict or persistence failures
	*/
	RemoveMember(context context.Context, communityID, userID string, version int64) error

	/*
		AddModerator appends a moderator entry, conditional on the version.

		Parameters:
		  - context: context.Context
		  - communityID: string
		  - moderator: Moderator
		  - version: int64

		Returns:
		  - error: ErrVersionConflict or persistence failures
	*/
	AddModerator(context context.Context, communityID string, moderator Moderator, version int64) error

	/*
		RemoveModerator deletes a moderator entry, conditional on the version.

		Parameters:
		  - context: context.Context
		  - communityID: string
		  - userID: string
		  - version: int64

		Returns:
		  - error: ErrVersionConflict or persistence failures
	*/
	RemoveModerator(context context.Context, communityID, userID string, version int64) error

	/*
		SetModeratorPermissions replaces a moderator's permission set,
		conditional on the version.

		Parameters:
		  - context: context.Context
		  - communityID: string
		  - userID: string
		  - permissions: []Permission
		  - version: int64

		Returns:
		  - error: ErrVersionConflict or persistence failures
	*/
	SetModeratorPermissions(context context.Context, communityID, userID string, permissions []Permission, version int64) error

	/*
		AddKicked appends a kick entry (replacing any previous entry for the
		same user) and removes the membership, conditional on the version.

		Parameters:
		  - context: context.Context
		  - communityID: string
		  - entry: KickedEntry
		  - version: int64

		Returns:
		  - error: ErrVersionConflict or persistence failures
	*/
	AddKicked(context context.Context, communityID string, entry KickedEntry, version int64) error

	/*
		RemoveExpiredKicks deletes every non-forever kick entry across ALL
		communities whose window has passed.

		This is hygiene, not correctness: join attempts independently ignore
		expired entries, so a lagging sweep never extends a ban. It is
		therefore not version-guarded.

		Parameters:
		  - context: context.Context
		  - now: time.Time

		Returns:
		  - int64: Number of entries removed
		  - error: Persistence failures
	*/
	RemoveExpiredKicks(context context.Context, now time.Time) (int64, error)

	/*
		IncrementEngagement bumps a member's engagement counter by one.

		Plain counter update; racing increments are commutative, so no
		version guard is applied.

		Parameters:
		  - context: context.Context
		  - communityID: string
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	IncrementEngagement(context context.Context, communityID, userID string) error
}
