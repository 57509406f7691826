// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package community

import (
	"time"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
)

// Moderation authorization engine.
//
// Every function in this file is a deterministic, side-effect-free predicate
// over a Community snapshot. Nothing here touches storage or the clock except
// where a time.Time is passed in explicitly. Callers must re-check under a
// fresh snapshot before mutating; the version-guarded commit in the store
// turns a stale decision into [ErrVersionConflict] instead of a lost update.

// # Membership Predicates

// IsMember reports whether the user appears in the community's member list.
func (c *Community) IsMember(userID string) bool {
	for _, member := range c.Members {
		if member.UserID == userID {
			return true
		}
	}
	return false
}

// IsModerator reports whether the user appears in the community's moderator list.
func (c *Community) IsModerator(userID string) bool {
	return c.moderatorByID(userID) != nil
}

// HasPermission reports whether the user is a moderator holding the permission.
func (c *Community) HasPermission(userID string, permission Permission) bool {
	moderator := c.moderatorByID(userID)
	return moderator != nil && moderator.Holds(permission)
}

// moderatorByID returns the moderator entry for the user, or nil.
func (c *Community) moderatorByID(userID string) *Moderator {
	for i := range c.Moderators {
		if c.Moderators[i].UserID == userID {
			return &c.Moderators[i]
		}
	}
	return nil
}

// ActiveKick returns the user's kick entry if it is still in force at the
// given instant, or nil. Forever kicks are always in force.
func (c *Community) ActiveKick(userID string, now time.Time) *KickedEntry {
	for i := range c.Kicked {
		entry := &c.Kicked[i]
		if entry.UserID == userID && !entry.Expired(now) {
			return entry
		}
	}
	return nil
}

// # Moderation Decisions

/*
CanJoin decides whether a user may join the community.

Rules:
  - An existing member cannot join again.
  - A user with an active (unexpired or forever) kick entry is denied.

Expired kick entries are ignored here even before the reconciler has swept
them away, so a lagging sweep never extends a ban.
*/
func (c *Community) CanJoin(userID string, now time.Time) error {
	if c.IsMember(userID) {
		return apperr.Forbidden("Already a member of this community")
	}
	if c.ActiveKick(userID, now) != nil {
		return apperr.Forbidden("You are currently banned from this community")
	}
	return nil
}

/*
CanAddModerator decides whether actor may promote target to moderator.

Rules:
  - Actor must be an existing moderator (no specific permission required).
  - Target must already be a member.
  - Target must not already be a moderator.
*/
func (c *Community) CanAddModerator(actorID, targetID string) error {
	if !c.IsModerator(actorID) {
		return apperr.Forbidden("Only moderators can add moderators")
	}
	if !c.IsMember(targetID) {
		return apperr.Forbidden("Target must be a member of the community")
	}
	if c.IsModerator(targetID) {
		return apperr.Conflict("User is already a moderator")
	}
	return nil
}

/*
CanRemoveModerator decides whether actor may demote target.

Rules:
  - Actor must hold [PermSetModerators].
  - Target must currently be a moderator.
  - The last remaining moderator cannot be demoted.
  - If target is the sole holder of any permission currently assigned,
    demotion is denied: it would orphan that permission.
*/
func (c *Community) CanRemoveModerator(actorID, targetID string) error {
	if !c.HasPermission(actorID, PermSetModerators) {
		return apperr.Forbidden("Missing permission: " + string(PermSetModerators))
	}

	target := c.moderatorByID(targetID)
	if target == nil {
		return apperr.NotFound("Moderator")
	}

	if len(c.Moderators) == 1 {
		return apperr.Forbidden("The last moderator cannot be removed")
	}

	for _, permission := range target.Permissions {
		if c.permissionHolderCount(permission) == 1 {
			return apperr.Forbidden("Removal would orphan permission: " + string(permission))
		}
	}

	return nil
}

/*
CanSetPermissions decides whether actor may replace target's permission set.

Rules:
  - Actor must hold [PermSetPermissions].
  - Target must currently be a moderator.
  - Every permission in the new set must be a known value.
  - An actor editing THEMSELVES may not drop a permission of which they are
    the sole holder — some moderator must always retain each assigned
    permission.
*/
func (c *Community) CanSetPermissions(actorID, targetID string, newPermissions []Permission) error {
	if !c.HasPermission(actorID, PermSetPermissions) {
		return apperr.Forbidden("Missing permission: " + string(PermSetPermissions))
	}

	target := c.moderatorByID(targetID)
	if target == nil {
		return apperr.NotFound("Moderator")
	}

	for _, permission := range newPermissions {
		if !permission.Valid() {
			return apperr.ValidationError("Unknown permission: " + string(permission))
		}
	}

	if actorID == targetID {
		for _, held := range target.Permissions {
			if containsPermission(newPermissions, held) {
				continue
			}
			// Dropping a held permission: someone else must still hold it.
			if c.permissionHolderCount(held) == 1 {
				return apperr.Forbidden("Cannot drop sole-held permission: " + string(held))
			}
		}
	}

	return nil
}

/*
CanKick decides whether actor may kick target for the given period.

Rules:
  - Actor must hold [PermKickMembers].
  - Period must be one of the enumerated values (empty is rejected).
  - Target must be a member.
  - Moderators cannot be kicked; demote first.
*/
func (c *Community) CanKick(actorID, targetID string, period KickPeriod) error {
	if !c.HasPermission(actorID, PermKickMembers) {
		return apperr.Forbidden("Missing permission: " + string(PermKickMembers))
	}
	if !period.Valid() {
		return apperr.ValidationError("Invalid or missing kick period")
	}
	if !c.IsMember(targetID) {
		return apperr.NotFound("Member")
	}
	if c.IsModerator(targetID) {
		return apperr.Forbidden("Moderators cannot be kicked")
	}
	return nil
}

/*
CanRemoveCommunity decides whether actor may delete the community.

Rules:
  - Actor must hold [PermRemoveCommunity].
*/
func (c *Community) CanRemoveCommunity(actorID string) error {
	if !c.HasPermission(actorID, PermRemoveCommunity) {
		return apperr.Forbidden("Missing permission: " + string(PermRemoveCommunity))
	}
	return nil
}

/*
CanLeave decides whether a member may leave the community.

Rules:
  - The user must be a member.
  - A moderator must be demoted before leaving (the moderator list must
    never reference a non-member).
*/
func (c *Community) CanLeave(userID string) error {
	if !c.IsMember(userID) {
		return apperr.Forbidden("Not a member of this community")
	}
	if c.IsModerator(userID) {
		return apperr.Forbidden("Moderators must step down before leaving")
	}
	return nil
}

// # Internal Helpers

// permissionHolderCount counts the moderators currently holding the permission.
func (c *Community) permissionHolderCount(permission Permission) int {
	count := 0
	for _, moderator := range c.Moderators {
		if moderator.Holds(permission) {
			count++
		}
	}
	return count
}

// containsPermission reports whether the slice contains the permission.
func containsPermission(permissions []Permission, permission Permission) bool {
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}
