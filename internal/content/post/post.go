// Copyright (c) 2026 theNeighbourhood. All rights reserved.

/*
Package post implements community posts and their moderation hooks.

A post belongs to exactly one community and one author. Two community-level
rules are enforced at creation and edit time:

  - Only members of the community may post in it.
  - Tags applied to a post must be a subset of the community's tag list.

Flag entries let members report a post using one of the community's
enumerated flag reasons.
*/
package post

import "time"

// # Domain Entities

// Flag is a report raised against a post by a community member.
type Flag struct {
	UserID   string    `json:"user_id"`
	Reason   string    `json:"reason"`
	RaisedAt time.Time `json:"raised_at"`
}

// Post is a single piece of content within a community.
type Post struct {
	ID          string   `json:"id"`
	CommunityID string   `json:"community_id"`
	AuthorID    string   `json:"author_id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Flags       []Flag   `json:"flags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FlaggedBy reports whether the user has already flagged this post.
func (p *Post) FlaggedBy(userID string) bool {
	for _, flag := range p.Flags {
		if flag.UserID == userID {
			return true
		}
	}
	return false
}

// # Field Identifiers

const (
	FieldTitle     = "title"
	FieldContent   = "content"
	FieldTags      = "tags"
	FieldReason    = "reason"
	FieldCommunity = "community"
)

// # Validation Constraints

const (
	// TitleMaxLen is the maximum post title length.
	TitleMaxLen = 150

	// ContentMaxLen is the maximum post body length.
	ContentMaxLen = 10000
)
