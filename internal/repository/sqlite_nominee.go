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

const sqliteNomineeColumns = `id, creator_id, name, email, votes, created_at, updated_at`

// CreateNominee inserts a new nominee.
func (s *SQLite) CreateNominee(ctx context.Context, n *model.Nominee) error {
	query := `
		INSERT INTO nominees (id, creator_id, name, email, votes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.CreatorID,
		n.Name,
		n.Email,
		nullableVotes(n.Votes),
		toMillis(n.CreatedAt),
		toMillis(n.UpdatedAt),
	)
	if err != nil {
		return translateSQLiteNomineeError("create", err)
	}

	return nil
}

// ListNomineesByCreator returns every nominee owned by creatorID, oldest first.
func (s *SQLite) ListNomineesByCreator(ctx context.Context, creatorID string) ([]*model.Nominee, error) {
	query := `
		SELECT ` + sqliteNomineeColumns + `
		FROM nominees
		WHERE creator_id = ?
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nominees: %w", err)
	}
	defer rows.Close()

	nominees := make([]*model.Nominee, 0)
	for rows.Next() {
		n, err := scanSQLiteNominee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nominee: %w", err)
		}
		nominees = append(nominees, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nominees: %w", err)
	}

	return nominees, nil
}

// GetNomineeForCreator retrieves a nominee only if creatorID owns it.
func (s *SQLite) GetNomineeForCreator(ctx context.Context, id, creatorID string) (*model.Nominee, error) {
	query := `SELECT ` + sqliteNomineeColumns + ` FROM nominees WHERE id = ? AND creator_id = ?`
	return sqliteNomineeOrNotFound(scanSQLiteNominee(s.db.QueryRowContext(ctx, query, id, creatorID)))
}

// UpdateNomineeForCreator merges the non-nil patch fields and returns the result.
func (s *SQLite) UpdateNomineeForCreator(ctx context.Context, id, creatorID string, patch model.NomineePatch) (*model.Nominee, error) {
	query := `
		UPDATE nominees
		SET name = COALESCE(?, name),
		    email = COALESCE(?, email),
		    votes = COALESCE(?, votes),
		    updated_at = ?
		WHERE id = ? AND creator_id = ?
		RETURNING ` + sqliteNomineeColumns

	row := s.db.QueryRowContext(ctx, query,
		nullableString(patch.Name),
		nullableString(patch.Email),
		nullableVotes(patch.Votes),
		toMillis(time.Now()),
		id,
		creatorID,
	)
	n, err := scanSQLiteNominee(row)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, translateSQLiteNomineeError("update", err)
	}
	return sqliteNomineeOrNotFound(n, err)
}

// IncrementNomineeVotes adds delta to votes in one statement, treating NULL as 0.
func (s *SQLite) IncrementNomineeVotes(ctx context.Context, id, creatorID string, delta int64) (*model.Nominee, error) {
	query := `
		UPDATE nominees
		SET votes = COALESCE(votes, 0) + ?,
		    updated_at = ?
		WHERE id = ? AND creator_id = ?
		RETURNING ` + sqliteNomineeColumns

	row := s.db.QueryRowContext(ctx, query, delta, toMillis(time.Now()), id, creatorID)
	return sqliteNomineeOrNotFound(scanSQLiteNominee(row))
}

// DeleteNomineeForCreator removes a nominee and returns the deleted record.
func (s *SQLite) DeleteNomineeForCreator(ctx context.Context, id, creatorID string) (*model.Nominee, error) {
	query := `DELETE FROM nominees WHERE id = ? AND creator_id = ? RETURNING ` + sqliteNomineeColumns
	return sqliteNomineeOrNotFound(scanSQLiteNominee(s.db.QueryRowContext(ctx, query, id, creatorID)))
}

func scanSQLiteNominee(row scanner) (*model.Nominee, error) {
	var (
		n                    model.Nominee
		votes                sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&n.ID, &n.CreatorID, &n.Name, &n.Email, &votes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if votes.Valid {
		v := votes.Int64
		n.Votes = &v
	}
	n.CreatedAt = fromMillis(createdAt)
	n.UpdatedAt = fromMillis(updatedAt)
	return &n, nil
}

func sqliteNomineeOrNotFound(n *model.Nominee, err error) (*model.Nominee, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNomineeNotFound
		}
		return nil, fmt.Errorf("failed to load nominee: %w", err)
	}
	return n, nil
}

func translateSQLiteNomineeError(op string, err error) error {
	switch {
	case isSQLiteError(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE):
		return ErrNomineeEmailExists
	case isSQLiteError(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY):
		return ErrUserNotFound
	default:
		return fmt.Errorf("failed to %s nominee: %w", op, err)
	}
}

func nullableVotes(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
