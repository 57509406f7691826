// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package post

import (
	"context"

	"github.com/hybridworkplace/theneighbourhood/internal/community"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
)

// # Community Access

// CommunityGateway is the slice of the community service the post layer
// needs: aggregate snapshots for membership/tag checks, and the engagement
// counter bump after a successful write.
type CommunityGateway interface {

	// GetBySlug returns the hydrated community aggregate for a slug.
	GetBySlug(context context.Context, slug string) (*community.Community, error)

	// GetByID returns the hydrated community aggregate by primary key.
	GetByID(context context.Context, id string) (*community.Community, error)

	// NoteEngagement bumps a member's engagement counter (best-effort).
	NoteEngagement(context context.Context, communityID, userID string)
}

// # Post Data Access

// Repository defines the data access contract for posts.
type Repository interface {

	/*
		Create persists a new post.

		Parameters:
		  - context: context.Context
		  - post: *Post

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, post *Post) error

	/*
		FindByID returns the post with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Post: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Post, error)

	/*
		ListByCommunity returns a page of posts for a community, newest first.

		Parameters:
		  - context: context.Context
		  - communityID: string
		  - params: pagination.Params

		Returns:
		  - []Post: Page of posts
		  - int: Total post count for the community
		  - error: Retrieval failures
	*/
	ListByCommunity(context context.Context, communityID string, params pagination.Params) ([]Post, int, error)

	/*
		Update persists changes to a post's title, content, and tags.

		Parameters:
		  - context: context.Context
		  - post: *Post

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, post *Post) error

	/*
		Delete permanently removes a post and, via cascades, its comments.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		AddFlag appends a flag entry to the post.

		Parameters:
		  - context: context.Context
		  - postID: string
		  - flag: Flag

		Returns:
		  - error: Persistence failures
	*/
	AddFlag(context context.Context, postID string, flag Flag) error
}
