// Copyright (c) 2026 theNeighbourhood. All rights reserved.

// PostgreSQL implementation of the auth storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, unique violations) are mapped to
// domain-friendly [apperr.AppError] values via the dberr bridge so no storage
// implementation details leak out of this file.

package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/dberr"
)

// # User Repository

// userColumns is the canonical SELECT column list for the users.account table.
const userColumns = `
	id, username, email, passwordhash, firstname, lastname, bio, title,
	ministry, notificationpreference, refreshtokenhash, createdat, updatedat`

// PostgresUserRepository implements the [UserRepository] interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users.account table.

Description: Persists the full account profile, initializing timestamps
if not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Conflict on duplicate identity, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, firstname, lastname, bio, title,
			ministry, notificationpreference, refreshtokenhash, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Title,
		user.Ministry,
		user.NotificationPreference,
		user.RefreshTokenHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return dberr.Wrap(err, "User")
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE id = $1`
	return repository.findOne(context, query, id)
}

/*
FindByUsername retrieves a user record by their unique username.

Description: Standard lookup for authentication and identity resolution.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE username = $1`
	return repository.findOne(context, query, username)
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE email = $1`
	return repository.findOne(context, query, email)
}

// findOne runs a single-row lookup and hydrates the User entity.
func (repository *PostgresUserRepository) findOne(context context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(context, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Bio,
		&user.Title,
		&user.Ministry,
		&user.NotificationPreference,
		&user.RefreshTokenHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

/*
Update persists changes to a user's mutable profile fields.

Description: Synchronizes the in-memory user state with the database,
refreshing the updatedat timestamp. Identity fields (username, email) and
credentials are not touched here.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Update failures
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET firstname = $2, lastname = $3, bio = $4, title = $5, ministry = $6,
		    notificationpreference = $7, updatedat = $8
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Title,
		user.Ministry,
		user.NotificationPreference,
		user.UpdatedAt,
	)

	return dberr.Wrap(err, "User")
}

/*
SetRefreshTokenHash replaces the stored refresh-token fingerprint.

Parameters:
  - context: context.Context
  - userID: string
  - tokenHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetRefreshTokenHash(context context.Context, userID, tokenHash string) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, tokenHash, time.Now())
	return dberr.Wrap(err, "User")
}

/*
ClearRefreshTokenHash removes the stored refresh-token fingerprint on logout.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ClearRefreshTokenHash(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = '', updatedat = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	return dberr.Wrap(err, "User")
}

/*
Delete permanently removes a user account.

Description: Hard deletion; membership rows and authored content references
are cleaned up by foreign-key cascades in the schema.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Deletion failures
*/
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM users.account WHERE id = $1`
	_, err := repository.pool.Exec(context, query, id)
	return dberr.Wrap(err, "User")
}
