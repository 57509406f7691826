// Copyright (c) 2026 theNeighbourhood. All rights reserved.

// PostgreSQL implementation of the community storage contract.
//
// # Optimistic Concurrency
//
// The aggregate's version column is the single serialization point. Every
// mutating method opens a transaction, performs a conditional
// version-increment UPDATE on the core row, and only proceeds with the child
// table write if exactly one row was touched. A zero row count means another
// writer got there first and the method returns [ErrVersionConflict].

package community

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/dberr"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
)

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// communityColumns is the canonical SELECT column list for the core row.
const communityColumns = `
	id, title, slug, description, creatorid, version, rules, tags, flags, createdat, updatedat`

// # Lifecycle

/*
Create persists the aggregate: core row, creator membership, and creator
moderator entry, in one transaction.

Parameters:
  - context: context.Context
  - community: *Community

Returns:
  - error: Conflict on duplicate title/slug, or persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, community *Community) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_community_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	const coreQuery = `
		INSERT INTO community.community (
			id, title, slug, description, creatorid, version, rules, tags, flags, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10)`

	_, err = transaction.Exec(context, coreQuery,
		community.ID,
		community.Title,
		community.Slug,
		community.Description,
		community.CreatorID,
		community.Rules,
		community.Tags,
		community.Flags,
		community.CreatedAt,
		community.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Community")
	}

	for _, member := range community.Members {
		const memberQuery = `
			INSERT INTO community.member (communityid, userid, engagement, joinedat)
			VALUES ($1, $2, $3, $4)`
		if _, err := transaction.Exec(context, memberQuery,
			community.ID, member.UserID, member.Engagement, member.JoinedAt); err != nil {
			return dberr.Wrap(err, "Membership")
		}
	}

	for _, moderator := range community.Moderators {
		const moderatorQuery = `
			INSERT INTO community.moderator (communityid, userid, permissions, assignedat)
			VALUES ($1, $2, $3, $4)`
		if _, err := transaction.Exec(context, moderatorQuery,
			community.ID, moderator.UserID, permissionsToStrings(moderator.Permissions), moderator.AssignedAt); err != nil {
			return dberr.Wrap(err, "Moderator")
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_community_repo_commit_failed: %w", err)
	}

	return nil
}

/*
FindBySlug returns the fully hydrated aggregate for a slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Community: Aggregate with members, moderators, and kicked lists
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Community, error) {
	const query = `SELECT ` + communityColumns + ` FROM community.community WHERE slug = $1`
	return repository.findOne(context, query, slug)
}

/*
FindByID returns the fully hydrated aggregate for an ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Community: Aggregate with members, moderators, and kicked lists
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Community, error) {
	const query = `SELECT ` + communityColumns + ` FROM community.community WHERE id = $1`
	return repository.findOne(context, query, id)
}

// findOne loads the core row and hydrates the attached lists.
func (repository *PostgresRepository) findOne(context context.Context, query string, arg any) (*Community, error) {
	community := &Community{}
	err := repository.pool.QueryRow(context, query, arg).Scan(
		&community.ID,
		&community.Title,
		&community.Slug,
		&community.Description,
		&community.CreatorID,
		&community.Version,
		&community.Rules,
		&community.Tags,
		&community.Flags,
		&community.CreatedAt,
		&community.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Community")
	}

	if err := repository.hydrateLists(context, community); err != nil {
		return nil, err
	}

	return community, nil
}

// hydrateLists loads members, moderators, and kicked entries for the aggregate.
func (repository *PostgresRepository) hydrateLists(context context.Context, community *Community) error {

	// Members
	const memberQuery = `
		SELECT userid, engagement, joinedat
		FROM community.member WHERE communityid = $1
		ORDER BY joinedat`
	memberRows, err := repository.pool.Query(context, memberQuery, community.ID)
	if err != nil {
		return dberr.Wrap(err, "Membership")
	}
	community.Members, err = pgx.CollectRows(memberRows, func(row pgx.CollectableRow) (Member, error) {
		var member Member
		err := row.Scan(&member.UserID, &member.Engagement, &member.JoinedAt)
		return member, err
	})
	if err != nil {
		return dberr.Wrap(err, "Membership")
	}

	// Moderators
	const moderatorQuery = `
		SELECT userid, permissions, assignedat
		FROM community.moderator WHERE communityid = $1
		ORDER BY assignedat`
	moderatorRows, err := repository.pool.Query(context, moderatorQuery, community.ID)
	if err != nil {
		return dberr.Wrap(err, "Moderator")
	}
	community.Moderators, err = pgx.CollectRows(moderatorRows, func(row pgx.CollectableRow) (Moderator, error) {
		var moderator Moderator
		var rawPermissions []string
		err := row.Scan(&moderator.UserID, &rawPermissions, &moderator.AssignedAt)
		moderator.Permissions = stringsToPermissions(rawPermissions)
		return moderator, err
	})
	if err != nil {
		return dberr.Wrap(err, "Moderator")
	}

	// Kicked entries
	const kickedQuery = `
		SELECT userid, period, expiresat, kickedat
		FROM community.kicked WHERE communityid = $1
		ORDER BY kickedat`
	kickedRows, err := repository.pool.Query(context, kickedQuery, community.ID)
	if err != nil {
		return dberr.Wrap(err, "Kick entry")
	}
	community.Kicked, err = pgx.CollectRows(kickedRows, func(row pgx.CollectableRow) (KickedEntry, error) {
		var entry KickedEntry
		var rawPeriod string
		err := row.Scan(&entry.UserID, &rawPeriod, &entry.ExpiresAt, &entry.KickedAt)
		entry.Period = KickPeriod(rawPeriod)
		return entry, err
	})
	if err != nil {
		return dberr.Wrap(err, "Kick entry")
	}

	return nil
}

/*
List returns a page of community summaries (core rows only) plus the total count.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Community: Page of summaries, newest first
  - int: Total community count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, params pagination.Params) ([]Community, int, error) {
	const countQuery = `SELECT COUNT(*) FROM community.community`

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Community")
	}

	const pageQuery = `
		SELECT ` + communityColumns + `
		FROM community.community
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, pageQuery, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Community")
	}

	communities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Community, error) {
		var community Community
		err := row.Scan(
			&community.ID,
			&community.Title,
			&community.Slug,
			&community.Description,
			&community.CreatorID,
			&community.Version,
			&community.Rules,
			&community.Tags,
			&community.Flags,
			&community.CreatedAt,
			&community.UpdatedAt,
		)
		return community, err
	})
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Community")
	}

	return communities, total, nil
}

/*
UpdateMeta commits core-record changes conditional on the version.

On success the snapshot's Version is advanced to the committed value.

Parameters:
  - context: context.Context
  - community: *Community

Returns:
  - error: ErrVersionConflict or persistence failures
*/
func (repository *PostgresRepository) UpdateMeta(context context.Context, community *Community) error {
	const query = `
		UPDATE community.community
		SET description = $3, rules = $4, tags = $5, flags = $6,
		    version = version + 1, updatedat = $7
		WHERE id = $1 AND version = $2`

	community.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(context, query,
		community.ID,
		community.Version,
		community.Description,
		community.Rules,
		community.Tags,
		community.Flags,
		community.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Community")
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	community.Version++
	return nil
}

/*
Delete permanently removes the community; child rows cascade.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM community.community WHERE id = $1`
	_, err := repository.pool.Exec(context, query, id)
	return dberr.Wrap(err, "Community")
}

// # Version-Guarded List Mutations

// AddMember appends a membership, conditional on the version.
func (repository *PostgresRepository) AddMember(context context.Context, communityID string, member Member, version int64) error {
	const query = `
		INSERT INTO community.member (communityid, userid, engagement, joinedat)
		VALUES ($1, $2, $3, $4)`
	return repository.guardedExec(context, communityID, version, query,
		communityID, member.UserID, member.Engagement, member.JoinedAt)
}

// RemoveMember deletes a membership, conditional on the version.
func (repository *PostgresRepository) RemoveMember(context context.Context, communityID, userID string, version int64) error {
	const query = `DELETE FROM community.member WHERE communityid = $1 AND userid = $2`
	return repository.guardedExec(context, communityID, version, query, communityID, userID)
}

// AddModerator appends a moderator entry, conditional on the version.
func (repository *PostgresRepository) AddModerator(context context.Context, communityID string, moderator Moderator, version int64) error {
	const query = `
		INSERT INTO community.moderator (communityid, userid, permissions, assignedat)
		VALUES ($1, $2, $3, $4)`
	return repository.guardedExec(context, communityID, version, query,
		communityID, moderator.UserID, permissionsToStrings(moderator.Permissions), moderator.AssignedAt)
}

// RemoveModerator deletes a moderator entry, conditional on the version.
func (repository *PostgresRepository) RemoveModerator(context context.Context, communityID, userID string, version int64) error {
	const query = `DELETE FROM community.moderator WHERE communityid = $1 AND userid = $2`
	return repository.guardedExec(context, communityID, version, query, communityID, userID)
}

// SetModeratorPermissions replaces a moderator's permission set, conditional on the version.
func (repository *PostgresRepository) SetModeratorPermissions(context context.Context, communityID, userID string, permissions []Permission, version int64) error {
	const query = `
		UPDATE community.moderator SET permissions = $3
		WHERE communityid = $1 AND userid = $2`
	return repository.guardedExec(context, communityID, version, query,
		communityID, userID, permissionsToStrings(permissions))
}

/*
AddKicked records a ban and evicts the membership in one guarded transaction.

Any previous kick entry for the same user is replaced, so re-kicking a user
whose old entry has expired but not yet been swept restarts the window.
*/
func (repository *PostgresRepository) AddKicked(context context.Context, communityID string, entry KickedEntry, version int64) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_community_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	if err := bumpVersion(context, transaction, communityID, version); err != nil {
		return err
	}

	const replaceQuery = `
		INSERT INTO community.kicked (communityid, userid, period, expiresat, kickedat)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (communityid, userid)
		DO UPDATE SET period = $3, expiresat = $4, kickedat = $5`
	if _, err := transaction.Exec(context, replaceQuery,
		communityID, entry.UserID, string(entry.Period), entry.ExpiresAt, entry.KickedAt); err != nil {
		return dberr.Wrap(err, "Kick entry")
	}

	const evictQuery = `DELETE FROM community.member WHERE communityid = $1 AND userid = $2`
	if _, err := transaction.Exec(context, evictQuery, communityID, entry.UserID); err != nil {
		return dberr.Wrap(err, "Membership")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_community_repo_commit_failed: %w", err)
	}

	return nil
}

// # Maintenance

/*
RemoveExpiredKicks deletes every expired non-forever kick entry across all
communities. Not version-guarded: expiry is a fact, not a decision.

Parameters:
  - context: context.Context
  - now: time.Time

Returns:
  - int64: Number of entries removed
  - error: Persistence failures
*/
func (repository *PostgresRepository) RemoveExpiredKicks(context context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM community.kicked WHERE expiresat IS NOT NULL AND expiresat <= $1`
	tag, err := repository.pool.Exec(context, query, now)
	if err != nil {
		return 0, dberr.Wrap(err, "Kick entry")
	}
	return tag.RowsAffected(), nil
}

/*
IncrementEngagement bumps a member's engagement counter.

Racing increments are commutative, so no version guard is applied.

Parameters:
  - context: context.Context
  - communityID: string
  - userID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) IncrementEngagement(context context.Context, communityID, userID string) error {
	const query = `
		UPDATE community.member SET engagement = engagement + 1
		WHERE communityid = $1 AND userid = $2`
	_, err := repository.pool.Exec(context, query, communityID, userID)
	return dberr.Wrap(err, "Membership")
}

// # Internal Helpers

// guardedExec runs a single child-table statement inside a version-guarded
// transaction.
func (repository *PostgresRepository) guardedExec(context context.Context, communityID string, version int64, query string, args ...any) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_community_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	if err := bumpVersion(context, transaction, communityID, version); err != nil {
		return err
	}

	if _, err := transaction.Exec(context, query, args...); err != nil {
		return dberr.Wrap(err, "Community")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_community_repo_commit_failed: %w", err)
	}

	return nil
}

// bumpVersion performs the conditional version increment that serializes all
// aggregate mutations. Zero affected rows means a concurrent writer won.
func bumpVersion(context context.Context, transaction pgx.Tx, communityID string, version int64) error {
	const query = `
		UPDATE community.community
		SET version = version + 1, updatedat = $3
		WHERE id = $1 AND version = $2`

	tag, err := transaction.Exec(context, query, communityID, version, time.Now())
	if err != nil {
		return dberr.Wrap(err, "Community")
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

// permissionsToStrings converts the typed permission slice for text[] storage.
func permissionsToStrings(permissions []Permission) []string {
	out := make([]string, len(permissions))
	for i, permission := range permissions {
		out[i] = string(permission)
	}
	return out
}

// stringsToPermissions converts stored text[] values back to typed permissions.
func stringsToPermissions(raw []string) []Permission {
	out := make([]Permission, len(raw))
	for i, value := range raw {
		out[i] = Permission(value)
	}
	return out
}
