// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package community

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
)

// newTestCommunity builds a community founded by "creator" with full control.
func newTestCommunity() *Community {
	now := time.Now()
	return &Community{
		ID:        "community-1",
		Title:     "Hybrid Workplace",
		Slug:      "hybrid-workplace",
		CreatorID: "creator",
		Members: []Member{
			{UserID: "creator", JoinedAt: now},
		},
		Moderators: []Moderator{
			{UserID: "creator", Permissions: AllPermissions(), AssignedAt: now},
		},
	}
}

// addMember appends a plain member to the snapshot.
func addMember(c *Community, userID string) {
	c.Members = append(c.Members, Member{UserID: userID, JoinedAt: time.Now()})
}

// addModerator appends a moderator with the given permissions.
func addModerator(c *Community, userID string, permissions ...Permission) {
	addMember(c, userID)
	c.Moderators = append(c.Moderators, Moderator{
		UserID:      userID,
		Permissions: permissions,
		AssignedAt:  time.Now(),
	})
}

func assertForbidden(t *testing.T, err error) {
	t.Helper()
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got %v", err)
	assert.Equal(t, 403, appError.HTTPStatus)
}

// # Membership Predicates

func TestMembershipPredicates(t *testing.T) {
	c := newTestCommunity()
	addMember(c, "bea")

	assert.True(t, c.IsMember("creator"))
	assert.True(t, c.IsMember("bea"))
	assert.False(t, c.IsMember("stranger"))

	assert.True(t, c.IsModerator("creator"))
	assert.False(t, c.IsModerator("bea"))

	assert.True(t, c.HasPermission("creator", PermKickMembers))
	assert.False(t, c.HasPermission("bea", PermKickMembers))
	assert.False(t, c.HasPermission("stranger", PermKickMembers))
}

// # Adding Moderators

func TestCanAddModerator(t *testing.T) {
	c := newTestCommunity()
	addMember(c, "bea")

	// Any moderator can promote a member.
	assert.NoError(t, c.CanAddModerator("creator", "bea"))

	// Non-moderators cannot promote.
	assertForbidden(t, c.CanAddModerator("bea", "bea"))

	// Target must be a member.
	assertForbidden(t, c.CanAddModerator("creator", "stranger"))

	// Target must not already be a moderator.
	err := c.CanAddModerator("creator", "creator")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 409, appError.HTTPStatus)
}

// # Removing Moderators

func TestModeratorWithoutSetModeratorsCannotRemove(t *testing.T) {
	// A moderator promoted with NO permissions cannot remove the founder.
	c := newTestCommunity()
	addModerator(c, "bea") // no permissions

	assertForbidden(t, c.CanRemoveModerator("bea", "creator"))

	// The founder, who holds set_moderators, can remove bea.
	assert.NoError(t, c.CanRemoveModerator("creator", "bea"))
}

func TestLastModeratorCannotBeRemoved(t *testing.T) {
	c := newTestCommunity()

	// Only one moderator exists; even a fully-privileged actor cannot demote them.
	assertForbidden(t, c.CanRemoveModerator("creator", "creator"))
}

func TestRemovalCannotOrphanAPermission(t *testing.T) {
	c := newTestCommunity()
	c.Moderators = nil
	addModerator(c, "alma", PermSetModerators)
	addModerator(c, "bea", PermSetPermissions)

	// bea is the sole holder of set_permissions: removing her would orphan it.
	assertForbidden(t, c.CanRemoveModerator("alma", "bea"))

	// Give alma set_permissions too; now bea's removal orphans nothing.
	c.Moderators[0].Permissions = append(c.Moderators[0].Permissions, PermSetPermissions)
	assert.NoError(t, c.CanRemoveModerator("alma", "bea"))
}

func TestRemoveUnknownModeratorIsNotFound(t *testing.T) {
	c := newTestCommunity()
	addModerator(c, "bea", PermSetModerators)

	err := c.CanRemoveModerator("creator", "stranger")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

// # Setting Permissions

func TestCanSetPermissions(t *testing.T) {
	c := newTestCommunity()
	addModerator(c, "bea")

	// Actor must hold set_permissions.
	assertForbidden(t, c.CanSetPermissions("bea", "bea", []Permission{PermKickMembers}))

	// Granting to another moderator is fine.
	assert.NoError(t, c.CanSetPermissions("creator", "bea", []Permission{PermKickMembers}))

	// Unknown permission values are rejected.
	err := c.CanSetPermissions("creator", "bea", []Permission{"launch_missiles"})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)

	// Target must be a moderator.
	addMember(c, "cleo")
	err = c.CanSetPermissions("creator", "cleo", nil)
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

func TestSelfStripOfSoleHeldPermissionIsDenied(t *testing.T) {
	c := newTestCommunity()
	addModerator(c, "bea", PermSetPermissions)

	// The creator is the sole holder of kick_members. Dropping it from their
	// own set would leave the permission unheld.
	reduced := []Permission{PermSetModerators, PermSetPermissions, PermRemoveCommunity}
	assertForbidden(t, c.CanSetPermissions("creator", "creator", reduced))

	// Once bea also holds kick_members, the creator may drop it.
	c.Moderators[1].Permissions = append(c.Moderators[1].Permissions, PermKickMembers)
	assert.NoError(t, c.CanSetPermissions("creator", "creator", reduced))
}

// # Kicking

func TestCanKick(t *testing.T) {
	c := newTestCommunity()
	addModerator(c, "bea") // moderator without kick rights
	addMember(c, "cleo")

	// Requires kick_members.
	assertForbidden(t, c.CanKick("bea", "cleo", PeriodDay))

	// Period must be one of the enumerated values; empty is rejected.
	err := c.CanKick("creator", "cleo", "")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)

	err = c.CanKick("creator", "cleo", "fortnight")
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)

	// Target must be a member.
	err = c.CanKick("creator", "stranger", PeriodDay)
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)

	// Moderators cannot be kicked.
	assertForbidden(t, c.CanKick("creator", "bea", PeriodDay))

	// Happy path.
	assert.NoError(t, c.CanKick("creator", "cleo", PeriodWeek))
}

// # Joining & Leaving

func TestCanJoinRespectsKickWindows(t *testing.T) {
	c := newTestCommunity()
	now := time.Now()

	// Existing member cannot re-join.
	assertForbidden(t, c.CanJoin("creator", now))

	// Active kick blocks joining.
	future := now.Add(time.Hour)
	c.Kicked = []KickedEntry{{UserID: "cleo", Period: PeriodHour, ExpiresAt: &future}}
	assertForbidden(t, c.CanJoin("cleo", now))

	// Expired kick is ignored even before the reconciler sweeps it.
	past := now.Add(-time.Minute)
	c.Kicked = []KickedEntry{{UserID: "cleo", Period: PeriodHour, ExpiresAt: &past}}
	assert.NoError(t, c.CanJoin("cleo", now))

	// Forever kicks never expire.
	c.Kicked = []KickedEntry{{UserID: "cleo", Period: PeriodForever}}
	assertForbidden(t, c.CanJoin("cleo", now))

	// Clean slate joins fine.
	assert.NoError(t, c.CanJoin("dara", now))
}

func TestCanLeave(t *testing.T) {
	c := newTestCommunity()
	addMember(c, "bea")

	assert.NoError(t, c.CanLeave("bea"))
	assertForbidden(t, c.CanLeave("stranger"))

	// Moderators must step down first.
	assertForbidden(t, c.CanLeave("creator"))
}

// # Community Removal

func TestCanRemoveCommunity(t *testing.T) {
	c := newTestCommunity()
	addModerator(c, "bea", PermSetModerators)

	assert.NoError(t, c.CanRemoveCommunity("creator"))
	assertForbidden(t, c.CanRemoveCommunity("bea"))
	assertForbidden(t, c.CanRemoveCommunity("stranger"))
}
