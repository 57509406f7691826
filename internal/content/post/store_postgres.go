// Copyright (c) 2026 theNeighbourhood. All rights reserved.

// PostgreSQL implementation of the post storage contract.

package post

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/dberr"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
)

// postColumns is the canonical SELECT column list for the content.post table.
const postColumns = `
	id, communityid, authorid, title, content, tags, flags, createdat, updatedat`

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new post record into the content.post table.

Parameters:
  - context: context.Context
  - post: *Post

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	const query = `
		INSERT INTO content.post (
			id, communityid, authorid, title, content, tags, flags, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := repository.pool.Exec(context, query,
		post.ID,
		post.CommunityID,
		post.AuthorID,
		post.Title,
		post.Content,
		post.Tags,
		post.Flags,
		post.CreatedAt,
		post.UpdatedAt,
	)

	return dberr.Wrap(err, "Post")
}

/*
FindByID retrieves a post by its unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Post: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Post, error) {
	const query = `SELECT ` + postColumns + ` FROM content.post WHERE id = $1`

	post := &Post{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&post.ID,
		&post.CommunityID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.Tags,
		&post.Flags,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Post")
	}

	return post, nil
}

/*
ListByCommunity returns a page of a community's posts, newest first.

Parameters:
  - context: context.Context
  - communityID: string
  - params: pagination.Params

Returns:
  - []Post: Page of posts
  - int: Total count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByCommunity(context context.Context, communityID string, params pagination.Params) ([]Post, int, error) {
	const countQuery = `SELECT COUNT(*) FROM content.post WHERE communityid = $1`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, communityID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Post")
	}

	const pageQuery = `
		SELECT ` + postColumns + `
		FROM content.post
		WHERE communityid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, pageQuery, communityID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Post")
	}

	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Post, error) {
		var post Post
		err := row.Scan(
			&post.ID,
			&post.CommunityID,
			&post.AuthorID,
			&post.Title,
			&post.Content,
			&post.Tags,
			&post.Flags,
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		return post, err
	})
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Post")
	}

	return posts, total, nil
}

/*
Update persists changes to a post's title, content, and tags.

Parameters:
  - context: context.Context
  - post: *Post

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) Update(context context.Context, post *Post) error {
	const query = `
		UPDATE content.post
		SET title = $2, content = $3, tags = $4, updatedat = $5
		WHERE id = $1`

	post.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		post.ID,
		post.Title,
		post.Content,
		post.Tags,
		post.UpdatedAt,
	)

	return dberr.Wrap(err, "Post")
}

/*
Delete permanently removes a post; comments cascade.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Deletion failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM content.post WHERE id = $1`
	_, err := repository.pool.Exec(context, query, id)
	return dberr.Wrap(err, "Post")
}

/*
AddFlag appends a flag entry to the post's flags JSONB array.

Parameters:
  - context: context.Context
  - postID: string
  - flag: Flag

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) AddFlag(context context.Context, postID string, flag Flag) error {
	const query = `
		UPDATE content.post
		SET flags = flags || $2::jsonb, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, postID, []Flag{flag}, time.Now())
	return dberr.Wrap(err, "Post")
}
