// Copyright (c) 2026 theNeighbourhood. All rights reserved.

// PostgreSQL implementation of the comment storage contract.

package comment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/dberr"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
)

// commentColumns is the canonical SELECT column list for content.comment.
const commentColumns = `
	id, postid, authorid, parentcommentid, message, voters, createdat, updatedat`

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new comment record into the content.comment table.

Parameters:
  - context: context.Context
  - comment: *Comment

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, comment *Comment) error {
	const query = `
		INSERT INTO content.comment (
			id, postid, authorid, parentcommentid, message, voters, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := repository.pool.Exec(context, query,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.ParentCommentID,
		comment.Message,
		comment.Voters,
		comment.CreatedAt,
		comment.UpdatedAt,
	)

	return dberr.Wrap(err, "Comment")
}

/*
FindByID retrieves a comment by its unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Comment: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Comment, error) {
	const query = `SELECT ` + commentColumns + ` FROM content.comment WHERE id = $1`

	comment := &Comment{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.ParentCommentID,
		&comment.Message,
		&comment.Voters,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Comment")
	}

	return comment, nil
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
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByPost(context context.Context, postID string, params pagination.Params) ([]Comment, int, error) {
	const countQuery = `SELECT COUNT(*) FROM content.comment WHERE postid = $1`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, postID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Comment")
	}

	const pageQuery = `
		SELECT ` + commentColumns + `
		FROM content.comment
		WHERE postid = $1
		ORDER BY createdat ASC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, pageQuery, postID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Comment")
	}

	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Comment, error) {
		var comment Comment
		err := row.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.AuthorID,
			&comment.ParentCommentID,
			&comment.Message,
			&comment.Voters,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		)
		return comment, err
	})
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Comment")
	}

	return comments, total, nil
}

/*
Update persists changes to a comment's message and voter map.

Parameters:
  - context: context.Context
  - comment: *Comment

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) Update(context context.Context, comment *Comment) error {
	const query = `
		UPDATE content.comment
		SET message = $2, voters = $3, updatedat = $4
		WHERE id = $1`

	comment.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		comment.ID,
		comment.Message,
		comment.Voters,
		comment.UpdatedAt,
	)

	return dberr.Wrap(err, "Comment")
}

/*
Delete permanently removes a comment; replies cascade.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Deletion failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM content.comment WHERE id = $1`
	_, err := repository.pool.Exec(context, query, id)
	return dberr.Wrap(err, "Comment")
}
