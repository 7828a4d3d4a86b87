package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nomvote/nomvote/internal/model"
)

const pgNomineeColumns = `id, creator_id, name, email, votes, created_at, updated_at`

// CreateNominee inserts a new nominee.
func (p *Postgres) CreateNominee(ctx context.Context, n *model.Nominee) error {
	query := `
		INSERT INTO nominees (id, creator_id, name, email, votes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := p.pool.Exec(ctx, query,
		n.ID,
		n.CreatorID,
		n.Name,
		n.Email,
		n.Votes,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return translateNomineeWriteError("create", err)
	}

	return nil
}

// ListNomineesByCreator returns every nominee owned by creatorID, oldest first.
func (p *Postgres) ListNomineesByCreator(ctx context.Context, creatorID string) ([]*model.Nominee, error) {
	query := `
		SELECT ` + pgNomineeColumns + `
		FROM nominees
		WHERE creator_id = $1
		ORDER BY created_at, id
	`

	rows, err := p.pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nominees: %w", err)
	}
	defer rows.Close()

	nominees := make([]*model.Nominee, 0)
	for rows.Next() {
		n, err := scanPgNominee(rows)
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
func (p *Postgres) GetNomineeForCreator(ctx context.Context, id, creatorID string) (*model.Nominee, error) {
	query := `SELECT ` + pgNomineeColumns + ` FROM nominees WHERE id = $1 AND creator_id = $2`
	return nomineeOrNotFound(scanPgNominee(p.pool.QueryRow(ctx, query, id, creatorID)))
}

// UpdateNomineeForCreator merges the non-nil patch fields and returns the result.
func (p *Postgres) UpdateNomineeForCreator(ctx context.Context, id, creatorID string, patch model.NomineePatch) (*model.Nominee, error) {
	query := `
		UPDATE nominees
		SET name = COALESCE($3, name),
		    email = COALESCE($4, email),
		    votes = COALESCE($5, votes),
		    updated_at = $6
		WHERE id = $1 AND creator_id = $2
		RETURNING ` + pgNomineeColumns

	row := p.pool.QueryRow(ctx, query, id, creatorID, patch.Name, patch.Email, patch.Votes, time.Now().UTC())
	n, err := scanPgNominee(row)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, translateNomineeWriteError("update", err)
	}
	return nomineeOrNotFound(n, err)
}

// IncrementNomineeVotes adds delta to votes in one statement, treating NULL as 0.
func (p *Postgres) IncrementNomineeVotes(ctx context.Context, id, creatorID string, delta int64) (*model.Nominee, error) {
	query := `
		UPDATE nominees
		SET votes = COALESCE(votes, 0) + $3,
		    updated_at = $4
		WHERE id = $1 AND creator_id = $2
		RETURNING ` + pgNomineeColumns

	return nomineeOrNotFound(scanPgNominee(p.pool.QueryRow(ctx, query, id, creatorID, delta, time.Now().UTC())))
}

// DeleteNomineeForCreator removes a nominee and returns the deleted record.
func (p *Postgres) DeleteNomineeForCreator(ctx context.Context, id, creatorID string) (*model.Nominee, error) {
	query := `DELETE FROM nominees WHERE id = $1 AND creator_id = $2 RETURNING ` + pgNomineeColumns
	return nomineeOrNotFound(scanPgNominee(p.pool.QueryRow(ctx, query, id, creatorID)))
}

func scanPgNominee(row scanner) (*model.Nominee, error) {
	var n model.Nominee
	err := row.Scan(
		&n.ID,
		&n.CreatorID,
		&n.Name,
		&n.Email,
		&n.Votes,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	return &n, err
}

// nomineeOrNotFound maps a missing row to ErrNomineeNotFound.
func nomineeOrNotFound(n *model.Nominee, err error) (*model.Nominee, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNomineeNotFound
		}
		return nil, fmt.Errorf("failed to load nominee: %w", err)
	}
	return n, nil
}

func translateNomineeWriteError(op string, err error) error {
	switch {
	case isPgError(err, pgUniqueViolation):
		return ErrNomineeEmailExists
	case isPgError(err, pgForeignKeyViolation):
		return ErrUserNotFound
	default:
		return fmt.Errorf("failed to %s nominee: %w", op, err)
	}
}
