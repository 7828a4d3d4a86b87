package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nomvote/nomvote/internal/model"
)

const pgUserColumns = `id, email, password_hash, created_at`

// CreateUser inserts a new user. The token list is stored separately.
func (p *Postgres) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.pool.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user and its tokens by id.
func (p *Postgres) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + pgUserColumns + ` FROM users WHERE id = $1`
	return p.loadUser(ctx, p.pool.QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a user and its tokens by email address.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + pgUserColumns + ` FROM users WHERE email = $1`
	return p.loadUser(ctx, p.pool.QueryRow(ctx, query, email))
}

// GetUserByToken retrieves a user only if token is still in its active set.
func (p *Postgres) GetUserByToken(ctx context.Context, userID, token string) (*model.User, error) {
	query := `
		SELECT ` + pgUserColumns + `
		FROM users u
		WHERE u.id = $1
		  AND EXISTS (
			SELECT 1 FROM user_tokens t
			WHERE t.user_id = u.id AND t.token = $2 AND t.access = $3
		  )
	`
	return p.loadUser(ctx, p.pool.QueryRow(ctx, query, userID, token, model.AccessAuth))
}

// AddUserToken appends a token to the user's active set.
func (p *Postgres) AddUserToken(ctx context.Context, userID string, token model.AuthToken) error {
	query := `
		INSERT INTO user_tokens (user_id, access, token, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.pool.Exec(ctx, query, userID, token.Access, token.Token, time.Now().UTC())
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to add user token: %w", err)
	}

	return nil
}

// RemoveUserToken deletes one token. Removing an absent token is not an error.
func (p *Postgres) RemoveUserToken(ctx context.Context, userID, token string) error {
	query := `DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`

	if _, err := p.pool.Exec(ctx, query, userID, token); err != nil {
		return fmt.Errorf("failed to remove user token: %w", err)
	}

	return nil
}

// loadUser scans a user row and attaches its ordered token list.
func (p *Postgres) loadUser(ctx context.Context, row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tokens, err := p.listUserTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Tokens = tokens

	return &user, nil
}

func (p *Postgres) listUserTokens(ctx context.Context, userID string) ([]model.AuthToken, error) {
	query := `SELECT access, token FROM user_tokens WHERE user_id = $1 ORDER BY seq`

	rows, err := p.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]model.AuthToken, 0)
	for rows.Next() {
		var t model.AuthToken
		if err := rows.Scan(&t.Access, &t.Token); err != nil {
			return nil, fmt.Errorf("failed to scan user token: %w", err)
		}
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user tokens: %w", err)
	}

	return tokens, nil
}
