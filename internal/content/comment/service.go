// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package comment

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

// Service implements comment use cases.
type Service struct {
	repository  Repository
	posts       PostGateway
	communities CommunityGateway
}

// NewService constructs a new comment [Service] with necessary dependencies.
func NewService(repo Repository, posts PostGateway, communities CommunityGateway) *Service {
	return &Service{
		repository:  repo,
		posts:       posts,
		communities: communities,
	}
}

// # Creation

// CreateInput holds the data required to publish a comment.
type CreateInput struct {
	PostID          string
	ParentCommentID *string
	Message         string
}

/*
Create publishes a comment under a post.

Description: The author must be a member of the post's community. A reply's
parent comment must exist and belong to the same post. A successful write
bumps the author's engagement counter.

Parameters:
  - context: context.Context
  - authorID: string
  - input: CreateInput

Returns:
  - *Comment: Created entity
  - err: Forbidden, validation, or storage errors
*/
func (service *Service) Create(context context.Context, authorID string, input CreateInput) (*Comment, error) {
	communityEntity, err := service.communityOfPost(context, input.PostID)
	if err != nil {
		return nil, err
	}

	if !communityEntity.IsMember(authorID) {
		return nil, apperr.Forbidden("Only members can comment in this community")
	}

	if input.ParentCommentID != nil {
		parent, err := service.repository.FindByID(context, *input.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != input.PostID {
			return nil, apperr.ValidationError("Parent comment belongs to a different post")
		}
	}

	now := time.Now()
	commentEntity := &Comment{
		ID:              uuid.New(),
		PostID:          input.PostID,
		AuthorID:        authorID,
		ParentCommentID: input.ParentCommentID,
		Message:         input.Message,
		Voters:          map[string]VoteDirection{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := service.repository.Create(context, commentEntity); err != nil {
		return nil, fmt.Errorf("comment_service_create_failed: %w", err)
	}

	service.communities.NoteEngagement(context, communityEntity.ID, authorID)

	return commentEntity, nil
}

// # Retrieval

/*
Get returns a single comment by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Comment: Hydrated entity
  - err: NotFound or storage errors
*/
func (service *Service) Get(context context.Context, id string) (*Comment, error) {
	return service.repository.FindByID(context, id)
}

/*
ListByPost returns a page of a post's comments, oldest first.

Parameters:
  - context: context.Context
  - postID: string
  - params: pagination.Params

Returns:
  - []Comment: Page of comments
  - int: Total count
  - err: NotFound or storage errors
*/
func (service *Service) ListByPost(context context.Context, postID string, params pagination.Params) ([]Comment, int, error) {
	if _, err := service.posts.Get(context, postID); err != nil {
		return nil, 0, err
	}

	return service.repository.ListByPost(context, postID, params)
}

// # Mutation

/*
Update edits a comment's message. Author-only.

Parameters:
  - context: context.Context
  - id: string
  - actorID: string
  - message: string

Returns:
  - *Comment: Updated entity
  - err: Forbidden, NotFound, or storage errors
*/
func (service *Service) Update(context context.Context, id, actorID, message string) (*Comment, error) {
	commentEntity, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if commentEntity.AuthorID != actorID {
		return nil, apperr.Forbidden("Only the author can edit a comment")
	}

	commentEntity.Message = message
	if err := service.repository.Update(context, commentEntity); err != nil {
		return nil, fmt.Errorf("comment_service_update_failed: %w", err)
	}

	return commentEntity, nil
}

/*
Delete removes a comment.

Description: Allowed for the author and for any moderator of the community
that owns the parent post.

Parameters:
  - context: context.Context
  - id: string
  - actorID: string

Returns:
  - err: Forbidden, NotFound, or storage errors
*/
func (service *Service) Delete(context context.Context, id, actorID string) error {
	commentEntity, err := service.repository.FindByID(context, id)
	if err != nil {
		return err
	}

	if commentEntity.AuthorID != actorID {
		communityEntity, err := service.communityOfPost(context, commentEntity.PostID)
		if err != nil {
			return err
		}
		if !communityEntity.IsModerator(actorID) {
			return apperr.Forbidden("Only the author or a moderator can delete a comment")
		}
	}

	if err := service.repository.Delete(context, id); err != nil {
		return fmt.Errorf("comment_service_delete_failed: %w", err)
	}

	return nil
}

// # Voting

/*
Vote records or switches a member's vote on a comment.

Description: The voter must be a member of the owning community. One vote
per user; the opposite direction switches it, the same direction conflicts.

Parameters:
  - context: context.Context
  - id: string
  - actorID: string
  - direction: VoteDirection

Returns:
  - *Comment: Updated entity with the new tally
  - err: Forbidden, Conflict, or storage errors
*/
func (service *Service) Vote(context context.Context, id, actorID string, direction VoteDirection) (*Comment, error) {
	commentEntity, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	communityEntity, err := service.communityOfPost(context, commentEntity.PostID)
	if err != nil {
		return nil, err
	}

	if !communityEntity.IsMember(actorID) {
		return nil, apperr.Forbidden("Only members can vote on comments")
	}

	if err := commentEntity.ApplyVote(actorID, direction); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, commentEntity); err != nil {
		return nil, fmt.Errorf("comment_service_vote_failed: %w", err)
	}

	return commentEntity, nil
}

// # Internal Helpers

// communityOfPost resolves the community aggregate owning the given post.
func (service *Service) communityOfPost(context context.Context, postID string) (*community.Community, error) {
	postEntity, err := service.posts.Get(context, postID)
	if err != nil {
		return nil, err
	}

	return service.communities.GetByID(context, postEntity.CommunityID)
}
