// Copyright (c) 2026 theNeighbourhood. All rights reserved.

/*
Package comment implements threaded discussion under posts.

A comment belongs to exactly one post; an optional parent comment reference
makes it a reply. Members can vote a comment up or down. Each user holds at
most one vote per comment, and casting the opposite direction switches the
existing vote instead of stacking.
*/
package comment

import (
	"encoding/json"
	"time"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/apperr"
)

// # Voting

// VoteDirection is a single user's stance on a comment.
type VoteDirection int

const (
	VoteUp   VoteDirection = 1
	VoteDown VoteDirection = -1
)

// ParseVoteDirection maps the wire representation to a [VoteDirection].
func ParseVoteDirection(raw string) (VoteDirection, error) {
	switch raw {
	case "up":
		return VoteUp, nil
	case "down":
		return VoteDown, nil
	default:
		return 0, apperr.ValidationError("Vote direction must be \"up\" or \"down\"")
	}
}

// # Domain Entities

// Comment is a single message under a post, optionally replying to another
// comment of the same post.
type Comment struct {
	ID              string  `json:"id"`
	PostID          string  `json:"post_id"`
	AuthorID        string  `json:"author_id"`
	ParentCommentID *string `json:"parent_comment_id,omitempty"`
	Message         string  `json:"message"`

	// Voters maps user IDs to their current vote direction. The public
	// representation only carries the resulting tally.
	Voters map[string]VoteDirection `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Score is the comment's vote tally: upvotes minus downvotes.
func (c *Comment) Score() int {
	score := 0
	for _, direction := range c.Voters {
		score += int(direction)
	}
	return score
}

/*
ApplyVote records a user's vote on the comment.

Description: A first vote is stored as-is. Casting the opposite direction
switches the stored vote. Repeating the same direction is rejected so the
tally cannot be inflated.

Parameters:
  - userID: string
  - direction: VoteDirection

Returns:
  - error: apperr.Conflict when the identical vote already exists
*/
func (c *Comment) ApplyVote(userID string, direction VoteDirection) error {
	if c.Voters == nil {
		c.Voters = map[string]VoteDirection{}
	}

	if existing, ok := c.Voters[userID]; ok && existing == direction {
		return apperr.Conflict("You have already cast this vote")
	}

	c.Voters[userID] = direction
	return nil
}

// MarshalJSON augments the wire shape with the computed vote tally.
func (c *Comment) MarshalJSON() ([]byte, error) {
	type alias Comment
	return json.Marshal(struct {
		*alias
		Votes int `json:"votes"`
	}{
		alias: (*alias)(c),
		Votes: c.Score(),
	})
}

// # Field Identifiers

const (
	FieldMessage   = "message"
	FieldPost      = "post"
	FieldParent    = "parent_comment_id"
	FieldDirection = "direction"
)

// # Validation Constraints

const (
	// MessageMaxLen is the maximum comment message length.
	MessageMaxLen = 2000
)
