// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package community

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
)

// # Test Doubles

// fakeRepository is an in-memory [Repository] with real version semantics.
//
// forcedConflicts makes the next N guarded mutations fail with
// [ErrVersionConflict] without applying, to exercise the service retry loop.
type fakeRepository struct {
	byID            map[string]*Community
	forcedConflicts int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: map[string]*Community{}}
}

func cloneCommunity(c *Community) *Community {
	copied := *c
	copied.Rules = append([]Rule(nil), c.Rules...)
	copied.Tags = append([]string(nil), c.Tags...)
	copied.Flags = append([]string(nil), c.Flags...)
	copied.Members = append([]Member(nil), c.Members...)
	copied.Kicked = append([]KickedEntry(nil), c.Kicked...)
	copied.Moderators = make([]Moderator, len(c.Moderators))
	for i, moderator := range c.Moderators {
		copied.Moderators[i] = moderator
		copied.Moderators[i].Permissions = append([]Permission(nil), moderator.Permissions...)
	}
	return &copied
}

func (f *fakeRepository) Create(_ context.Context, community *Community) error {
	for _, existing := range f.byID {
		if existing.Title == community.Title || existing.Slug == community.Slug {
			return apperr.Conflict("Community already exists")
		}
	}
	f.byID[community.ID] = cloneCommunity(community)
	return nil
}

func (f *fakeRepository) FindBySlug(_ context.Context, slug string) (*Community, error) {
	for _, community := range f.byID {
		if community.Slug == slug {
			return cloneCommunity(community), nil
		}
	}
	return nil, apperr.NotFound("Community")
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*Community, error) {
	if community, ok := f.byID[id]; ok {
		return cloneCommunity(community), nil
	}
	return nil, apperr.NotFound("Community")
}

func (f *fakeRepository) List(_ context.Context, params pagination.Params) ([]Community, int, error) {
	var all []Community
	for _, community := range f.byID {
		all = append(all, *cloneCommunity(community))
	}
	return all, len(all), nil
}

// guard enforces the optimistic version check shared by all mutations.
func (f *fakeRepository) guard(communityID string, version int64) (*Community, error) {
	if f.forcedConflicts > 0 {
		f.forcedConflicts--
		return nil, ErrVersionConflict
	}
	community, ok := f.byID[communityID]
	if !ok {
		return nil, apperr.NotFound("Community")
	}
	if community.Version != version {
		return nil, ErrVersionConflict
	}
	community.Version++
	return community, nil
}

func (f *fakeRepository) UpdateMeta(_ context.Context, updated *Community) error {
	community, err := f.guard(updated.ID, updated.Version)
	if err != nil {
		return err
	}
	community.Description = updated.Description
	community.Rules = append([]Rule(nil), updated.Rules...)
	community.Tags = append([]string(nil), updated.Tags...)
	community.Flags = append([]string(nil), updated.Flags...)
	updated.Version = community.Version
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeRepository) AddMember(_ context.Context, communityID string, member Member, version int64) error {
	community, err := f.guard(communityID, version)
	if err != nil {
		return err
	}
	community.Members = append(community.Members, member)
	return nil
}

func (f *fakeRepository) RemoveMember(_ context.Context, communityID, userID string, version int64) error {
	community, err := f.guard(communityID, version)
	if err != nil {
		return err
	}
	community.Members = removeMemberEntry(community.Members, userID)
	return nil
}

func (f *fakeRepository) AddModerator(_ context.Context, communityID string, moderator Moderator, version int64) error {
	community, err := f.guard(communityID, version)
	if err != nil {
		return err
	}
	community.Moderators = append(community.Moderators, moderator)
	return nil
}

func (f *fakeRepository) RemoveModerator(_ context.Context, communityID, userID string, version int64) error {
	community, err := f.guard(communityID, version)
	if err != nil {
		return err
	}
	for i, moderator := range community.Moderators {
		if moderator.UserID == userID {
			community.Moderators = append(community.Moderators[:i], community.Moderators[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRepository) SetModeratorPermissions(_ context.Context, communityID, userID string, permissions []Permission, version int64) error {
	community, err := f.guard(communityID, version)
	if err != nil {
		return err
	}
	for i := range community.Moderators {
		if community.Moderators[i].UserID == userID {
			community.Moderators[i].Permissions = append([]Permission(nil), permissions...)
		}
	}
	return nil
}

func (f *fakeRepository) AddKicked(_ context.Context, communityID string, entry KickedEntry, version int64) error {
	community, err := f.guard(communityID, version)
	if err != nil {
		return err
	}
	filtered := community.Kicked[:0]
	for _, existing := range community.Kicked {
		if existing.UserID != entry.UserID {
			filtered = append(filtered, existing)
		}
	}
	community.Kicked = append(filtered, entry)
	community.Members = removeMemberEntry(community.Members, entry.UserID)
	return nil
}

func (f *fakeRepository) RemoveExpiredKicks(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	for _, community := range f.byID {
		kept := community.Kicked[:0]
		for _, entry := range community.Kicked {
			if entry.Expired(now) {
				removed++
				continue
			}
			kept = append(kept, entry)
		}
		community.Kicked = kept
	}
	return removed, nil
}

func (f *fakeRepository) IncrementEngagement(_ context.Context, communityID, userID string) error {
	community, ok := f.byID[communityID]
	if !ok {
		return apperr.NotFound("Community")
	}
	for i := range community.Members {
		if community.Members[i].UserID == userID {
			community.Members[i].Engagement++
		}
	}
	return nil
}

func removeMemberEntry(members []Member, userID string) []Member {
	for i, member := range members {
		if member.UserID == userID {
			return append(members[:i], members[i+1:]...)
		}
	}
	return members
}

// fakeDirectory resolves usernames to IDs from a fixed map.
type fakeDirectory struct {
	ids map[string]string
}

func (f *fakeDirectory) ResolveUsername(_ context.Context, username string) (string, error) {
	if id, ok := f.ids[username]; ok {
		return id, nil
	}
	return "", apperr.NotFound("User")
}

// # Helpers

func newTestCommunityService() (*Service, *fakeRepository) {
	repo := newFakeRepository()
	directory := &fakeDirectory{ids: map[string]string{
		"creator": "creator",
		"bea":     "bea",
		"cleo":    "cleo",
	}}
	return NewService(repo, directory), repo
}

func mustCreate(t *testing.T, service *Service, creatorID, title string) *Community {
	t.Helper()
	community, err := service.Create(context.Background(), creatorID, CreateInput{
		Title:       title,
		Description: "Cross-ministry discussion",
		Tags:        []string{"policy", "remote-work"},
	})
	require.NoError(t, err)
	return community
}

// # Lifecycle

func TestCreateGrantsCreatorFullControl(t *testing.T) {
	service, _ := newTestCommunityService()

	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	assert.Equal(t, "hybrid-workplace", community.Slug)
	require.Len(t, community.Members, 1)
	require.Len(t, community.Moderators, 1)
	assert.Equal(t, "creator", community.Moderators[0].UserID)
	for _, permission := range AllPermissions() {
		assert.True(t, community.HasPermission("creator", permission), string(permission))
	}
}

func TestCreateDuplicateTitleConflicts(t *testing.T) {
	service, _ := newTestCommunityService()
	mustCreate(t, service, "creator", "Hybrid Workplace")

	_, err := service.Create(context.Background(), "bea", CreateInput{Title: "Hybrid Workplace"})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 409, appError.HTTPStatus)
}

// # The Promotion / Demotion Scenario

func TestPromotedModeratorWithoutPermissionsCannotRemoveFounder(t *testing.T) {
	service, _ := newTestCommunityService()
	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	ctx := context.Background()
	require.NoError(t, service.Join(ctx, community.Slug, "bea"))
	require.NoError(t, service.AddModerator(ctx, community.Slug, "creator", "bea"))

	// bea holds no permissions, so removing the founder is forbidden.
	err := service.RemoveModerator(ctx, community.Slug, "bea", "creator")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	// The founder removes bea; moderator count returns to one.
	require.NoError(t, service.RemoveModerator(ctx, community.Slug, "creator", "bea"))

	fresh, err := service.GetBySlug(ctx, community.Slug)
	require.NoError(t, err)
	assert.Len(t, fresh.Moderators, 1)
	assert.True(t, fresh.IsMember("bea"), "demotion must not remove membership")
}

func TestSetPermissionsFlow(t *testing.T) {
	service, _ := newTestCommunityService()
	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	ctx := context.Background()
	require.NoError(t, service.Join(ctx, community.Slug, "bea"))
	require.NoError(t, service.AddModerator(ctx, community.Slug, "creator", "bea"))
	require.NoError(t, service.SetPermissions(ctx, community.Slug, "creator", "bea",
		[]Permission{PermKickMembers}))

	fresh, err := service.GetBySlug(ctx, community.Slug)
	require.NoError(t, err)
	assert.True(t, fresh.HasPermission("bea", PermKickMembers))
	assert.False(t, fresh.HasPermission("bea", PermSetModerators))
}

// # Kicking

func TestKickEvictsMemberAndBlocksRejoin(t *testing.T) {
	service, repo := newTestCommunityService()
	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	ctx := context.Background()
	require.NoError(t, service.Join(ctx, community.Slug, "cleo"))
	require.NoError(t, service.Kick(ctx, community.Slug, "creator", "cleo", PeriodHour))

	fresh, err := service.GetBySlug(ctx, community.Slug)
	require.NoError(t, err)
	assert.False(t, fresh.IsMember("cleo"))
	require.Len(t, fresh.Kicked, 1)
	require.NotNil(t, fresh.Kicked[0].ExpiresAt)

	// Rejoin while the window is active is forbidden.
	err = service.Join(ctx, community.Slug, "cleo")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	// Backdate the expiry: rejoin succeeds even before any sweep runs.
	past := time.Now().Add(-time.Minute)
	repo.byID[community.ID].Kicked[0].ExpiresAt = &past
	assert.NoError(t, service.Join(ctx, community.Slug, "cleo"))
}

func TestKickForeverHasNoExpiry(t *testing.T) {
	service, _ := newTestCommunityService()
	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	ctx := context.Background()
	require.NoError(t, service.Join(ctx, community.Slug, "cleo"))
	require.NoError(t, service.Kick(ctx, community.Slug, "creator", "cleo", PeriodForever))

	fresh, err := service.GetBySlug(ctx, community.Slug)
	require.NoError(t, err)
	require.Len(t, fresh.Kicked, 1)
	assert.Nil(t, fresh.Kicked[0].ExpiresAt)

	err = service.Join(ctx, community.Slug, "cleo")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)
}

func TestKickMissingPeriodIsRejected(t *testing.T) {
	service, _ := newTestCommunityService()
	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	ctx := context.Background()
	require.NoError(t, service.Join(ctx, community.Slug, "cleo"))

	err := service.Kick(ctx, community.Slug, "creator", "cleo", "")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
}

// # Optimistic Concurrency

func TestMutationRetriesOnVersionConflict(t *testing.T) {
	service, repo := newTestCommunityService()
	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	// Two lost races, then success on the third attempt.
	repo.forcedConflicts = 2
	require.NoError(t, service.Join(context.Background(), community.Slug, "bea"))

	fresh, err := service.GetBySlug(context.Background(), community.Slug)
	require.NoError(t, err)
	assert.True(t, fresh.IsMember("bea"))
}

func TestMutationGivesUpAfterRetryBudget(t *testing.T) {
	service, repo := newTestCommunityService()
	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	repo.forcedConflicts = maxMutationRetries
	err := service.Join(context.Background(), community.Slug, "bea")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 409, appError.HTTPStatus)
}

// # Leaving & Removal

func TestLeaveRequiresStepDown(t *testing.T) {
	service, _ := newTestCommunityService()
	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	ctx := context.Background()
	err := service.Leave(ctx, community.Slug, "creator")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	require.NoError(t, service.Join(ctx, community.Slug, "bea"))
	require.NoError(t, service.Leave(ctx, community.Slug, "bea"))

	fresh, err := service.GetBySlug(ctx, community.Slug)
	require.NoError(t, err)
	assert.False(t, fresh.IsMember("bea"))
}

func TestRemoveRequiresPermission(t *testing.T) {
	service, _ := newTestCommunityService()
	community := mustCreate(t, service, "creator", "Hybrid Workplace")

	ctx := context.Background()
	require.NoError(t, service.Join(ctx, community.Slug, "bea"))

	err := service.Remove(ctx, community.Slug, "bea")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	require.NoError(t, service.Remove(ctx, community.Slug, "creator"))
	_, err = service.GetBySlug(ctx, community.Slug)
	assert.Error(t, err)
}
