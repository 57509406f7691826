// Copyright (c) 2026 theNeighbourhood. All rights reserved.

/*
Package community implements topical communities and their moderation model.

A community is an aggregate: the core record (title, description, rules,
tags, flags) plus three attached lists — members, moderators with their
permission sets, and kicked users with their ban windows. Every moderation
decision in the system is a pure predicate over a snapshot of this aggregate
(see authz.go); every mutation is guarded by an optimistic version check
(see store.go).

# Architecture

  - Entity: The Community aggregate and its value types (this file).
  - Authorization: Side-effect-free decision predicates (authz.go).
  - Service: Orchestrates loads, checks, and version-retried mutations (service.go).
  - Reconciler: Background sweep of expired kick entries (kick.go).
*/
package community

import (
	"time"
)

// # Moderation Permissions

// Permission is a single moderation capability held by a moderator.
type Permission string

// The closed set of moderation permissions.
const (
	// PermSetModerators allows removing moderators.
	// (Any moderator may add new moderators; removal is the guarded action.)
	PermSetModerators Permission = "set_moderators"

	// PermSetPermissions allows editing another moderator's permission set.
	PermSetPermissions Permission = "set_permissions"

	// PermRemoveCommunity allows deleting the community outright.
	PermRemoveCommunity Permission = "remove_community"

	// PermKickMembers allows temporarily or permanently banning members.
	PermKickMembers Permission = "kick_members"
)

// AllPermissions returns the full permission set, granted to a community's creator.
func AllPermissions() []Permission {
	return []Permission{PermSetModerators, PermSetPermissions, PermRemoveCommunity, PermKickMembers}
}

// Valid reports whether the permission is one of the enumerated values.
func (p Permission) Valid() bool {
	switch p {
	case PermSetModerators, PermSetPermissions, PermRemoveCommunity, PermKickMembers:
		return true
	}
	return false
}

// # Kick Periods

// KickPeriod is the duration class of a kick/ban.
type KickPeriod string

// The enumerated kick periods. An empty or unknown period is always rejected.
const (
	// PeriodTest is a very short window used by integration tests and demos.
	PeriodTest KickPeriod = "test"

	PeriodHour    KickPeriod = "hour"
	PeriodDay     KickPeriod = "day"
	PeriodWeek    KickPeriod = "week"
	PeriodForever KickPeriod = "forever"
)

// Valid reports whether the period is one of the enumerated values.
func (p KickPeriod) Valid() bool {
	switch p {
	case PeriodTest, PeriodHour, PeriodDay, PeriodWeek, PeriodForever:
		return true
	}
	return false
}

// Duration returns the ban length for the period.
//
// The second return value is false for [PeriodForever], which has no end.
func (p KickPeriod) Duration() (time.Duration, bool) {
	switch p {
	case PeriodTest:
		return 10 * time.Second, true
	case PeriodHour:
		return time.Hour, true
	case PeriodDay:
		return 24 * time.Hour, true
	case PeriodWeek:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// # Value Types

// Rule is a single community guideline.
type Rule struct {
	Rule        string `json:"rule"`
	Description string `json:"description,omitempty"`
}

// Member is a community membership record with its engagement counter.
//
// Engagement counts the member's posts and comments within this community
// and only ever increases.
type Member struct {
	UserID     string    `json:"user_id"`
	Engagement int       `json:"engagement"`
	JoinedAt   time.Time `json:"joined_at"`
}

// Moderator is a membership promoted with a (possibly empty) permission set.
type Moderator struct {
	UserID      string       `json:"user_id"`
	Permissions []Permission `json:"permissions"`
	AssignedAt  time.Time    `json:"assigned_at"`
}

// Holds reports whether the moderator carries the given permission.
func (m Moderator) Holds(permission Permission) bool {
	for _, held := range m.Permissions {
		if held == permission {
			return true
		}
	}
	return false
}

// KickedEntry records a ban. ExpiresAt is nil for a "forever" kick.
type KickedEntry struct {
	UserID    string     `json:"user_id"`
	Period    KickPeriod `json:"period"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	KickedAt  time.Time  `json:"kicked_at"`
}

// Expired reports whether the ban window has passed at the given instant.
// Forever kicks never expire.
func (k KickedEntry) Expired(now time.Time) bool {
	if k.ExpiresAt == nil {
		return false
	}
	return !k.ExpiresAt.After(now)
}

// # Aggregate

// Community is the full aggregate: core record plus attached lists.
//
// Version is the optimistic-concurrency token. Every mutation reads a
// snapshot, decides against it, and commits conditionally on the version
// being unchanged; a lost race surfaces as [ErrVersionConflict] and is
// retried by the service against a fresh snapshot.
type Community struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	CreatorID   string `json:"creator_id"`
	Version     int64  `json:"-"`

	Rules []Rule   `json:"rules"`
	Tags  []string `json:"tags"`
	Flags []string `json:"flags"`

	Members    []Member      `json:"members"`
	Moderators []Moderator   `json:"moderators"`
	Kicked     []KickedEntry `json:"kicked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTag reports whether the tag is available for post-tagging in this community.
func (c *Community) HasTag(tag string) bool {
	for _, available := range c.Tags {
		if available == tag {
			return true
		}
	}
	return false
}

// HasFlag reports whether the flag reason is defined for this community.
func (c *Community) HasFlag(flag string) bool {
	for _, available := range c.Flags {
		if available == flag {
			return true
		}
	}
	return false
}

// # Field Identifiers

// Global field names for validation in the community domain.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldRules       = "rules"
	FieldTags        = "tags"
	FieldFlags       = "flags"
	FieldPeriod      = "period"
	FieldPermissions = "permissions"
	FieldUsername    = "username"
)

// # Validation Constraints

const (
	// TitleMinLen is the minimum community title length.
	TitleMinLen = 3

	// TitleMaxLen is the maximum community title length.
	TitleMaxLen = 80

	// DescriptionMaxLen is the maximum community description length.
	DescriptionMaxLen = 1000

	// RuleMaxLen is the maximum length of a single rule line.
	RuleMaxLen = 200

	// TagMaxLen is the maximum length of a single tag.
	TagMaxLen = 30
)
