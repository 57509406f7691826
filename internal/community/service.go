// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package community

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/ctxutil"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
	"github.com/hybridworkplace/theneighbourhood/pkg/slug"
	"github.com/hybridworkplace/theneighbourhood/pkg/uuid"
)

// maxMutationRetries bounds the read-decide-commit retry loop. Conflicts are
// rare (two moderators editing the same community in the same instant), so a
// small bound is enough; exhaustion surfaces as a client-visible 409.
const maxMutationRetries = 3

// # Contracts & Types

// Service implements community and moderation use cases.
//
// # Concurrency
//
// Every mutation follows the same cycle: load a fresh aggregate snapshot,
// run the pure authorization predicate against it, and commit conditionally
// on the snapshot's version. A concurrent writer bumps the version, the
// commit fails with [ErrVersionConflict], and the cycle restarts — so a
// decision is never applied to state it was not made against.
type Service struct {
	repository Repository
	users      UserDirectory
}

// NewService constructs a new community [Service] with necessary dependencies.
func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{
		repository: repo,
		users:      users,
	}
}

// # Community Lifecycle

// CreateInput holds the data required to found a new community.
type CreateInput struct {
	Title       string
	Description string
	Rules       []Rule
	Tags        []string
	Flags       []string
}

/*
Create founds a new community with the caller as its first member and sole
moderator holding every permission.

Parameters:
  - context: context.Context
  - creatorID: string
  - input: CreateInput

Returns:
  - *Community: Created aggregate
  - err: Conflict on duplicate title, or storage errors
*/
func (service *Service) Create(context context.Context, creatorID string, input CreateInput) (*Community, error) {
	now := time.Now()

	communityEntity := &Community{
		ID:          uuid.New(),
		Title:       input.Title,
		Slug:        slug.From(input.Title),
		Description: input.Description,
		CreatorID:   creatorID,
		Rules:       input.Rules,
		Tags:        input.Tags,
		Flags:       input.Flags,
		Members: []Member{
			{UserID: creatorID, JoinedAt: now},
		},
		Moderators: []Moderator{
			{UserID: creatorID, Permissions: AllPermissions(), AssignedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.repository.Create(context, communityEntity); err != nil {
		return nil, err
	}

	return communityEntity, nil
}

/*
GetBySlug returns the fully hydrated community aggregate.

Parameters:
  - context: context.Context
  - communitySlug: string

Returns:
  - *Community: Aggregate with members, moderators, and kicked lists
  - err: NotFound or storage errors
*/
func (service *Service) GetBySlug(context context.Context, communitySlug string) (*Community, error) {
	return service.repository.FindBySlug(context, communitySlug)
}

/*
GetByID returns the fully hydrated community aggregate by primary key.

Used by the content layer, which stores community references by ID.

Parameters:
  - context: context.Context
  - communityID: string

Returns:
  - *Community: Aggregate with members, moderators, and kicked lists
  - err: NotFound or storage errors
*/
func (service *Service) GetByID(context context.Context, communityID string) (*Community, error) {
	return service.repository.FindByID(context, communityID)
}

/*
List returns a page of community summaries.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Community: Page of summaries
  - int: Total count
  - err: Storage errors
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]Community, int, error) {
	return service.repository.List(context, params)
}

// UpdateInput holds the mutable core-record fields. Nil pointers mean "unchanged".
type UpdateInput struct {
	Description *string
	Rules       *[]Rule
	Tags        *[]string
	Flags       *[]string
}

/*
Update applies a partial update to the community's core record.

Description: Moderator-only. Rules, tags, and flags are replaced wholesale
when present; the commit is version-guarded and retried on conflict.

Parameters:
  - context: context.Context
  - communitySlug: string
  - actorID: string
  - input: UpdateInput

Returns:
  - *Community: Updated aggregate
  - err: Forbidden, Conflict, or storage errors
*/
func (service *Service) Update(context context.Context, communitySlug, actorID string, input UpdateInput) (*Community, error) {
	var updated *Community

	err := service.retryMutation(context, communitySlug, func(snapshot *Community) error {
		if !snapshot.IsModerator(actorID) {
			return apperr.Forbidden("Only moderators can edit the community")
		}

		if input.Description != nil {
			snapshot.Description = *input.Description
		}
		if input.Rules != nil {
			snapshot.Rules = *input.Rules
		}
		if input.Tags != nil {
			snapshot.Tags = *input.Tags
		}
		if input.Flags != nil {
			snapshot.Flags = *input.Flags
		}

		if err := service.repository.UpdateMeta(context, snapshot); err != nil {
			return err
		}
		updated = snapshot
		return nil
	})

	return updated, err
}

/*
Remove permanently deletes the community.

Description: Requires the remove_community permission. Memberships, kick
entries, posts, and comments are removed by schema cascades.

Parameters:
  - context: context.Context
  - communitySlug: string
  - actorID: string

Returns:
  - err: Forbidden or storage errors
*/
func (service *Service) Remove(context context.Context, communitySlug, actorID string) error {
	snapshot, err := service.repository.FindBySlug(context, communitySlug)
	if err != nil {
		return err
	}

	if err := snapshot.CanRemoveCommunity(actorID); err != nil {
		return err
	}

	if err := service.repository.Delete(context, snapshot.ID); err != nil {
		return fmt.Errorf("community_service_remove_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("community_removed",
		"community_id", snapshot.ID,
		"actor_id", actorID,
	)

	return nil
}

// # Membership

/*
Join adds the user to the community's member list.

Description: Denied for existing members and for users with an active kick
entry. Expired kick entries are ignored even before the reconciler removes
them.

Parameters:
  - context: context.Context
  - communitySlug: string
  - userID: string

Returns:
  - err: Forbidden, NotFound, or storage errors
*/
func (service *Service) Join(context context.Context, communitySlug, userID string) error {
	return service.retryMutation(context, communitySlug, func(snapshot *Community) error {
		if err := snapshot.CanJoin(userID, time.Now()); err != nil {
			return err
		}

		member := Member{UserID: userID, JoinedAt: time.Now()}
		return service.repository.AddMember(context, snapshot.ID, member, snapshot.Version)
	})
}

/*
Leave removes the user from the community's member list.

Parameters:
  - context: context.Context
  - communitySlug: string
  - userID: string

Returns:
  - err: Forbidden, NotFound, or storage errors
*/
func (service *Service) Leave(context context.Context, communitySlug, userID string) error {
	return service.retryMutation(context, communitySlug, func(snapshot *Community) error {
		if err := snapshot.CanLeave(userID); err != nil {
			return err
		}

		return service.repository.RemoveMember(context, snapshot.ID, userID, snapshot.Version)
	})
}

// # Moderation

/*
AddModerator promotes a member to moderator with an empty permission set.

Description: Any moderator can promote; permissions are granted separately
via [Service.SetPermissions].

Parameters:
  - context: context.Context
  - communitySlug: string
  - actorID: string
  - targetUsername: string

Returns:
  - err: Forbidden, NotFound, Conflict, or storage errors
*/
func (service *Service) AddModerator(context context.Context, communitySlug, actorID, targetUsername string) error {
	targetID, err := service.users.ResolveUsername(context, targetUsername)
	if err != nil {
		return err
	}

	return service.retryMutation(context, communitySlug, func(snapshot *Community) error {
		if err := snapshot.CanAddModerator(actorID, targetID); err != nil {
			return err
		}

		moderator := Moderator{UserID: targetID, Permissions: []Permission{}, AssignedAt: time.Now()}
		return service.repository.AddModerator(context, snapshot.ID, moderator, snapshot.Version)
	})
}

/*
RemoveModerator demotes a moderator back to plain member.

Description: Requires set_moderators. The last moderator cannot be demoted,
nor can a moderator who is the sole holder of any assigned permission.

Parameters:
  - context: context.Context
  - communitySlug: string
  - actorID: string
  - targetUsername: string

Returns:
  - err: Forbidden, NotFound, or storage errors
*/
func (service *Service) RemoveModerator(context context.Context, communitySlug, actorID, targetUsername string) error {
	targetID, err := service.users.ResolveUsername(context, targetUsername)
	if err != nil {
		return err
	}

	return service.retryMutation(context, communitySlug, func(snapshot *Community) error {
		if err := snapshot.CanRemoveModerator(actorID, targetID); err != nil {
			return err
		}

		return service.repository.RemoveModerator(context, snapshot.ID, targetID, snapshot.Version)
	})
}

/*
SetPermissions replaces a moderator's permission set.

Description: Requires set_permissions. Self-edits may not drop a permission
of which the actor is the sole holder.

Parameters:
  - context: context.Context
  - communitySlug: string
  - actorID: string
  - targetUsername: string
  - permissions: []Permission

Returns:
  - err: Forbidden, NotFound, validation, or storage errors
*/
func (service *Service) SetPermissions(context context.Context, communitySlug, actorID, targetUsername string, permissions []Permission) error {
	targetID, err := service.users.ResolveUsername(context, targetUsername)
	if err != nil {
		return err
	}

	return service.retryMutation(context, communitySlug, func(snapshot *Community) error {
		if err := snapshot.CanSetPermissions(actorID, targetID, permissions); err != nil {
			return err
		}

		return service.repository.SetModeratorPermissions(context, snapshot.ID, targetID, permissions, snapshot.Version)
	})
}

/*
Kick bans a member for the given period and removes their membership.

Description: Requires kick_members. The expiry instant is computed once, at
kick time; "forever" entries carry no expiry and never leave the kicked list.

Parameters:
  - context: context.Context
  - communitySlug: string
  - actorID: string
  - targetUsername: string
  - period: KickPeriod

Returns:
  - err: Forbidden, NotFound, validation, or storage errors
*/
func (service *Service) Kick(context context.Context, communitySlug, actorID, targetUsername string, period KickPeriod) error {
	targetID, err := service.users.ResolveUsername(context, targetUsername)
	if err != nil {
		return err
	}

	return service.retryMutation(context, communitySlug, func(snapshot *Community) error {
		if err := snapshot.CanKick(actorID, targetID, period); err != nil {
			return err
		}

		entry := KickedEntry{
			UserID:   targetID,
			Period:   period,
			KickedAt: time.Now(),
		}
		if duration, bounded := period.Duration(); bounded {
			expiresAt := entry.KickedAt.Add(duration)
			entry.ExpiresAt = &expiresAt
		}

		return service.repository.AddKicked(context, snapshot.ID, entry, snapshot.Version)
	})
}

// # Engagement

/*
NoteEngagement bumps a member's engagement counter after they post or comment.

Description: Best-effort counter; failures are logged and swallowed so a
counter hiccup never fails the content write it decorates.

Parameters:
  - context: context.Context
  - communityID: string
  - userID: string
*/
func (service *Service) NoteEngagement(context context.Context, communityID, userID string) {
	if err := service.repository.IncrementEngagement(context, communityID, userID); err != nil {
		ctxutil.GetLogger(context).Warn("engagement_increment_failed",
			"community_id", communityID,
			"user_id", userID,
			"error", err,
		)
	}
}

// # Internal Helpers

// retryMutation runs the read-decide-commit cycle for a slug-addressed
// mutation, retrying on [ErrVersionConflict] with a fresh snapshot each time.
func (service *Service) retryMutation(context context.Context, communitySlug string, mutate func(snapshot *Community) error) error {
	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		snapshot, err := service.repository.FindBySlug(context, communitySlug)
		if err != nil {
			return err
		}

		err = mutate(snapshot)
		if errors.Is(err, ErrVersionConflict) {
			ctxutil.GetLogger(context).Debug("community_mutation_retry",
				"slug", communitySlug,
				"attempt", attempt+1,
			)
			continue
		}
		return err
	}

	return apperr.Conflict("The community was modified concurrently, please retry")
}
