package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nomvote/nomvote/internal/model"
)

const sqliteUserColumns = `id, email, password_hash, created_at`

// CreateUser inserts a new user.
func (s *SQLite) CreateUser(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, toMillis(user.CreatedAt))
	if err != nil {
		if isSQLiteError(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user and its tokens by id.
func (s *SQLite) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + sqliteUserColumns + ` FROM users WHERE id = ?`
	return s.loadUser(ctx, s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user and its tokens by email address.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + sqliteUserColumns + ` FROM users WHERE email = ?`
	return s.loadUser(ctx, s.db.QueryRowContext(ctx, query, email))
}

// GetUserByToken retrieves a user only if token is still in its active set.
func (s *SQLite) GetUserByToken(ctx context.Context, userID, token string) (*model.User, error) {
	query := `
		SELECT ` + sqliteUserColumns + `
		FROM users u
		WHERE u.id = ?
		  AND EXISTS (
			SELECT 1 FROM user_tokens t
			WHERE t.user_id = u.id AND t.token = ? AND t.access = ?
		  )
	`
	return s.loadUser(ctx, s.db.QueryRowContext(ctx, query, userID, token, model.AccessAuth))
}

// AddUserToken appends a token to the user's active set.
func (s *SQLite) AddUserToken(ctx context.Context, userID string, token model.AuthToken) error {
	query := `INSERT INTO user_tokens (user_id, access, token, created_at) VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, userID, token.Access, token.Token, toMillis(time.Now()))
	if err != nil {
		if isSQLiteError(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to add user token: %w", err)
	}

	return nil
}

// RemoveUserToken deletes one token. Removing an absent token is not an error.
func (s *SQLite) RemoveUserToken(ctx context.Context, userID, token string) error {
	query := `DELETE FROM user_tokens WHERE user_id = ? AND token = ?`

	if _, err := s.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("failed to remove user token: %w", err)
	}

	return nil
}

func (s *SQLite) loadUser(ctx context.Context, row *sql.Row) (*model.User, error) {
	var (
		user      model.User
		createdAt int64
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)

	rows, err := s.db.QueryContext(ctx, `SELECT access, token FROM user_tokens WHERE user_id = ? ORDER BY seq`, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user tokens: %w", err)
	}
	defer rows.Close()

	user.Tokens = make([]model.AuthToken, 0)
	for rows.Next() {
		var t model.AuthToken
		if err := rows.Scan(&t.Access, &t.Token); err != nil {
			return nil, fmt.Errorf("failed to scan user token: %w", err)
		}
		user.Tokens = append(user.Tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user tokens: %w", err)
	}

	return &user, nil
}
