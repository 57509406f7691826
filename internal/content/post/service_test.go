// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package post

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybridworkplace/theneighbourhood/internal/community"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
)

// # Test Doubles

type fakePostRepository struct {
	byID map[string]*Post
}

func newFakePostRepository() *fakePostRepository {
	return &fakePostRepository{byID: map[string]*Post{}}
}

func clonePost(post *Post) *Post {
	copied := *post
	copied.Tags = append([]string(nil), post.Tags...)
	copied.Flags = append([]Flag(nil), post.Flags...)
	return &copied
}

func (repository *fakePostRepository) Create(_ context.Context, post *Post) error {
	repository.byID[post.ID] = clonePost(post)
	return nil
}

func (repository *fakePostRepository) FindByID(_ context.Context, id string) (*Post, error) {
	post, ok := repository.byID[id]
	if !ok {
		return nil, apperr.NotFound("Post")
	}
	return clonePost(post), nil
}

func (repository *fakePostRepository) ListByCommunity(_ context.Context, communityID string, params pagination.Params) ([]Post, int, error) {
	var posts []Post
	for _, post := range repository.byID {
		if post.CommunityID == communityID {
			posts = append(posts, *clonePost(post))
		}
	}
	return posts, len(posts), nil
}

func (repository *fakePostRepository) Update(_ context.Context, post *Post) error {
	if _, ok := repository.byID[post.ID]; !ok {
		return apperr.NotFound("Post")
	}
	repository.byID[post.ID] = clonePost(post)
	return nil
}

func (repository *fakePostRepository) Delete(_ context.Context, id string) error {
	delete(repository.byID, id)
	return nil
}

func (repository *fakePostRepository) AddFlag(_ context.Context, postID string, flag Flag) error {
	post, ok := repository.byID[postID]
	if !ok {
		return apperr.NotFound("Post")
	}
	post.Flags = append(post.Flags, flag)
	return nil
}

type fakeCommunityGateway struct {
	bySlug      map[string]*community.Community
	engagements map[string]int // userID -> bump count
}

func newFakeCommunityGateway(communities ...*community.Community) *fakeCommunityGateway {
	gateway := &fakeCommunityGateway{
		bySlug:      map[string]*community.Community{},
		engagements: map[string]int{},
	}
	for _, entity := range communities {
		gateway.bySlug[entity.Slug] = entity
	}
	return gateway
}

func (gateway *fakeCommunityGateway) GetBySlug(_ context.Context, slug string) (*community.Community, error) {
	entity, ok := gateway.bySlug[slug]
	if !ok {
		return nil, apperr.NotFound("Community")
	}
	return entity, nil
}

func (gateway *fakeCommunityGateway) GetByID(_ context.Context, id string) (*community.Community, error) {
	for _, entity := range gateway.bySlug {
		if entity.ID == id {
			return entity, nil
		}
	}
	return nil, apperr.NotFound("Community")
}

func (gateway *fakeCommunityGateway) NoteEngagement(_ context.Context, _, userID string) {
	gateway.engagements[userID]++
}

// # Fixtures

const (
	authorID    = "user-author"
	moderatorID = "user-moderator"
	outsiderID  = "user-outsider"
)

func newPostTestCommunity() *community.Community {
	now := time.Now()
	return &community.Community{
		ID:        "community-1",
		Title:     "Digital Services",
		Slug:      "digital-services",
		CreatorID: moderatorID,
		Tags:      []string{"announcement", "question"},
		Flags:     []string{"spam", "off-topic"},
		Members: []community.Member{
			{UserID: moderatorID, JoinedAt: now},
			{UserID: authorID, JoinedAt: now},
		},
		Moderators: []community.Moderator{
			{UserID: moderatorID, Permissions: community.AllPermissions(), AssignedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newPostTestService() (*Service, *fakePostRepository, *fakeCommunityGateway) {
	repository := newFakePostRepository()
	gateway := newFakeCommunityGateway(newPostTestCommunity())
	return NewService(repository, gateway), repository, gateway
}

func mustCreatePost(t *testing.T, service *Service, authorID string, tags ...string) *Post {
	t.Helper()
	post, err := service.Create(context.Background(), authorID, CreateInput{
		CommunitySlug: "digital-services",
		Title:         "Quarterly roadmap",
		Content:       "What landed this quarter and what is next.",
		Tags:          tags,
	})
	require.NoError(t, err)
	return post
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, status, appError.HTTPStatus)
}

// # Tests

func TestCreateRequiresMembership(t *testing.T) {
	service, _, _ := newPostTestService()

	_, err := service.Create(context.Background(), outsiderID, CreateInput{
		CommunitySlug: "digital-services",
		Title:         "Hello",
		Content:       "First post",
	})

	assertStatus(t, err, http.StatusForbidden)
}

func TestCreateValidatesTagsAgainstCommunity(t *testing.T) {
	service, _, _ := newPostTestService()

	_, err := service.Create(context.Background(), authorID, CreateInput{
		CommunitySlug: "digital-services",
		Title:         "Hello",
		Content:       "First post",
		Tags:          []string{"announcement", "meme"},
	})

	assertStatus(t, err, http.StatusBadRequest)
}

func TestCreateBumpsEngagement(t *testing.T) {
	service, _, gateway := newPostTestService()

	post := mustCreatePost(t, service, authorID, "announcement")

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "community-1", post.CommunityID)
	assert.Equal(t, 1, gateway.engagements[authorID])
}

func TestUpdateIsAuthorOnly(t *testing.T) {
	service, _, _ := newPostTestService()
	post := mustCreatePost(t, service, authorID)

	title := "Edited"
	_, err := service.Update(context.Background(), post.ID, moderatorID, UpdateInput{Title: &title})

	assertStatus(t, err, http.StatusForbidden)
}

func TestUpdateRevalidatesReplacementTags(t *testing.T) {
	service, _, _ := newPostTestService()
	post := mustCreatePost(t, service, authorID, "announcement")

	bad := []string{"meme"}
	_, err := service.Update(context.Background(), post.ID, authorID, UpdateInput{Tags: &bad})
	assertStatus(t, err, http.StatusBadRequest)

	good := []string{"question"}
	updated, err := service.Update(context.Background(), post.ID, authorID, UpdateInput{Tags: &good})
	require.NoError(t, err)
	assert.Equal(t, []string{"question"}, updated.Tags)
}

func TestDeleteAllowsAuthorAndModerator(t *testing.T) {
	service, repository, _ := newPostTestService()

	first := mustCreatePost(t, service, authorID)
	require.NoError(t, service.Delete(context.Background(), first.ID, authorID))
	assert.NotContains(t, repository.byID, first.ID)

	second := mustCreatePost(t, service, authorID)
	require.NoError(t, service.Delete(context.Background(), second.ID, moderatorID))
	assert.NotContains(t, repository.byID, second.ID)

	third := mustCreatePost(t, service, authorID)
	err := service.Delete(context.Background(), third.ID, outsiderID)
	assertStatus(t, err, http.StatusForbidden)
}

func TestFlagEnforcesCommunityReasons(t *testing.T) {
	service, repository, _ := newPostTestService()
	post := mustCreatePost(t, service, authorID)

	err := service.RaiseFlag(context.Background(), post.ID, moderatorID, "boring")
	assertStatus(t, err, http.StatusBadRequest)

	require.NoError(t, service.RaiseFlag(context.Background(), post.ID, moderatorID, "spam"))
	assert.Len(t, repository.byID[post.ID].Flags, 1)
}

func TestFlagRejectsNonMembersAndDuplicates(t *testing.T) {
	service, _, _ := newPostTestService()
	post := mustCreatePost(t, service, authorID)

	err := service.RaiseFlag(context.Background(), post.ID, outsiderID, "spam")
	assertStatus(t, err, http.StatusForbidden)

	require.NoError(t, service.RaiseFlag(context.Background(), post.ID, moderatorID, "spam"))
	err = service.RaiseFlag(context.Background(), post.ID, moderatorID, "off-topic")
	assertStatus(t, err, http.StatusConflict)
}
