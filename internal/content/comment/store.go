// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package comment

import (
	"context"

	"github.com/hybridworkplace/theneighbourhood/internal/community"
	"github.com/hybridworkplace/theneighbourhood/internal/content/post"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
)

// # Upstream Access

// PostGateway is the slice of the post service the comment layer needs:
// resolving a comment's parent post to locate its community.
type PostGateway interface {

	// Get returns the post with the given ID.
	Get(context context.Context, id string) (*post.Post, error)
}

// CommunityGateway exposes the community aggregate for membership and
// moderation checks, plus the engagement counter bump.
type CommunityGateway interface {

	// GetByID returns the hydrated community aggregate by primary key.
	GetByID(context context.Context, id string) (*community.Community, error)

	// NoteEngagement bumps a member's engagement counter (best-effort).
	NoteEngagement(context context.Context, communityID, userID string)
}

// # Comment Data Access

// Repository defines the data access contract for comments.
type Repository interface {

	/*
		Create persists a new comment.

		Parameters:
		  - context: context.Context
		  - comment: *Comment

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, comment *Comment) error

	/*
		FindByID returns the comment with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Comment: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Comment, error)

	/*
		ListByPost returns a page of a post's comments, oldest first so
		threads read top-down.

		Parameters:
		  - context: context.Context
		  - postID: string
		  - params: pagination.Params

		Returns:
		  - []Comment: Page of comments
		  - int: Total comment count for the post
		  - error: Retrieval failures
	*/
	ListByPost(context context.Context, postID string, params pagination.Params) ([]Comment, int, error)

	/*
		Update persists changes to a comment's message and voter map.

		Parameters:
		  - context: context.Context
		  - comment: *Comment

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, comment *Comment) error

	/*
		Delete permanently removes a comment and, via cascades, its replies.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error
}
