// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package post

import (
	"context"
	"fmt"
	"time"

	"github.com/hybridworkplace/theneighbourhood/internal/community"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
	"github.com/hybridworkplace/theneighbourhood/pkg/uuid"
)

// # Contracts & Types

// Service implements post use cases.
type Service struct {
	repository  Repository
	communities CommunityGateway
}

// NewService constructs a new post [Service] with necessary dependencies.
func NewService(repo Repository, communities CommunityGateway) *Service {
	return &Service{
		repository:  repo,
		communities: communities,
	}
}

// # Creation

// CreateInput holds the data required to publish a post.
type CreateInput struct {
	CommunitySlug string
	Title         string
	Content       string
	Tags          []string
}

/*
Create publishes a new post into a community.

Description: The author must be a member of the community, and every applied
tag must exist in the community's tag list. A successful write bumps the
author's engagement counter.

Parameters:
  - context: context.Context
  - authorID: string
  - input: CreateInput

Returns:
  - *Post: Created entity
  - err: Forbidden, validation, or storage errors
*/
func (service *Service) Create(context context.Context, authorID string, input CreateInput) (*Post, error) {
	communityEntity, err := service.communities.GetBySlug(context, input.CommunitySlug)
	if err != nil {
		return nil, err
	}

	if !communityEntity.IsMember(authorID) {
		return nil, apperr.Forbidden("Only members can post in this community")
	}

	if err := validateTags(communityEntity, input.Tags); err != nil {
		return nil, err
	}

	now := time.Now()
	postEntity := &Post{
		ID:          uuid.New(),
		CommunityID: communityEntity.ID,
		AuthorID:    authorID,
		Title:       input.Title,
		Content:     input.Content,
		Tags:        input.Tags,
		Flags:       []Flag{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := service.repository.Create(context, postEntity); err != nil {
		return nil, fmt.Errorf("post_service_create_failed: %w", err)
	}

	service.communities.NoteEngagement(context, communityEntity.ID, authorID)

	return postEntity, nil
}

// # Retrieval

/*
Get returns a single post by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Post: Hydrated entity
  - err: NotFound or storage errors
*/
func (service *Service) Get(context context.Context, id string) (*Post, error) {
	return service.repository.FindByID(context, id)
}

/*
ListByCommunity returns a page of a community's posts, newest first.

Parameters:
  - context: context.Context
  - communitySlug: string
  - params: pagination.Params

Returns:
  - []Post: Page of posts
  - int: Total count
  - err: NotFound or storage errors
*/
func (service *Service) ListByCommunity(context context.Context, communitySlug string, params pagination.Params) ([]Post, int, error) {
	communityEntity, err := service.communities.GetBySlug(context, communitySlug)
	if err != nil {
		return nil, 0, err
	}

	return service.repository.ListByCommunity(context, communityEntity.ID, params)
}

// # Mutation

// UpdateInput holds the mutable post fields. Nil pointers mean "unchanged".
type UpdateInput struct {
	Title   *string
	Content *string
	Tags    *[]string
}

/*
Update edits a post's title, content, or tags.

Description: Author-only. Replacement tags are re-validated against the
community's current tag list.

Parameters:
  - context: context.Context
  - id: string
  - actorID: string
  - input: UpdateInput

Returns:
  - *Post: Updated entity
  - err: Forbidden, validation, or storage errors
*/
func (service *Service) Update(context context.Context, id, actorID string, input UpdateInput) (*Post, error) {
	postEntity, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if postEntity.AuthorID != actorID {
		return nil, apperr.Forbidden("Only the author can edit a post")
	}

	if input.Tags != nil {
		communityEntity, err := service.communities.GetByID(context, postEntity.CommunityID)
		if err != nil {
			return nil, err
		}
		if err := validateTags(communityEntity, *input.Tags); err != nil {
			return nil, err
		}
		postEntity.Tags = *input.Tags
	}
	if input.Title != nil {
		postEntity.Title = *input.Title
	}
	if input.Content != nil {
		postEntity.Content = *input.Content
	}

	if err := service.repository.Update(context, postEntity); err != nil {
		return nil, fmt.Errorf("post_service_update_failed: %w", err)
	}

	return postEntity, nil
}

/*
Delete removes a post.

Description: Allowed for the author and for any moderator of the owning
community.

Parameters:
  - context: context.Context
  - id: string
  - actorID: string

Returns:
  - err: Forbidden, NotFound, or storage errors
*/
func (service *Service) Delete(context context.Context, id, actorID string) error {
	postEntity, err := service.repository.FindByID(context, id)
	if err != nil {
		return err
	}

	if postEntity.AuthorID != actorID {
		communityEntity, err := service.communities.GetByID(context, postEntity.CommunityID)
		if err != nil {
			return err
		}
		if !communityEntity.IsModerator(actorID) {
			return apperr.Forbidden("Only the author or a moderator can delete a post")
		}
	}

	if err := service.repository.Delete(context, id); err != nil {
		return fmt.Errorf("post_service_delete_failed: %w", err)
	}

	return nil
}

// # Flagging

/*
RaiseFlag reports a post using one of the community's flag reasons.

Description: The reporter must be a member; the reason must be one of the
community's enumerated flag reasons; repeated flags by the same user are
rejected.

Parameters:
  - context: context.Context
  - id: string
  - actorID: string
  - reason: string

Returns:
  - err: Forbidden, validation, Conflict, or storage errors
*/
func (service *Service) RaiseFlag(context context.Context, id, actorID, reason string) error {
	postEntity, err := service.repository.FindByID(context, id)
	if err != nil {
		return err
	}

	communityEntity, err := service.communities.GetByID(context, postEntity.CommunityID)
	if err != nil {
		return err
	}

	if !communityEntity.IsMember(actorID) {
		return apperr.Forbidden("Only members can flag posts")
	}
	if !communityEntity.HasFlag(reason) {
		return apperr.ValidationError("Unknown flag reason: " + reason)
	}
	if postEntity.FlaggedBy(actorID) {
		return apperr.Conflict("You have already flagged this post")
	}

	flag := Flag{UserID: actorID, Reason: reason, RaisedAt: time.Now()}
	if err := service.repository.AddFlag(context, id, flag); err != nil {
		return fmt.Errorf("post_service_flag_failed: %w", err)
	}

	return nil
}

// # Internal Helpers

// validateTags ensures every applied tag exists in the community's tag list.
func validateTags(communityEntity *community.Community, tags []string) error {
	for _, tag := range tags {
		if !communityEntity.HasTag(tag) {
			return apperr.ValidationError("Tag not available in this community: " + tag)
		}
	}
	return nil
}
