// Package repository provides the persistence layer for users, session
// tokens, and nominees. Two backends share one contract: PostgreSQL for
// deployments and SQLite for single-node and test setups.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/nomvote/nomvote/internal/model"
	"github.com/nomvote/nomvote/internal/repository/migrations"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Common errors for repository operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrNomineeNotFound    = errors.New("nominee not found")
	ErrNomineeEmailExists = errors.New("nominee email already exists")
	ErrUnknownDriver      = errors.New("unknown store driver")
)

// Store is the full persistence contract used by the API.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByToken(ctx context.Context, userID, token string) (*model.User, error)
	AddUserToken(ctx context.Context, userID string, token model.AuthToken) error
	RemoveUserToken(ctx context.Context, userID, token string) error

	CreateNominee(ctx context.Context, nominee *model.Nominee) error
	ListNomineesByCreator(ctx context.Context, creatorID string) ([]*model.Nominee, error)
	GetNomineeForCreator(ctx context.Context, id, creatorID string) (*model.Nominee, error)
	UpdateNomineeForCreator(ctx context.Context, id, creatorID string, patch model.NomineePatch) (*model.Nominee, error)
	IncrementNomineeVotes(ctx context.Context, id, creatorID string, delta int64) (*model.Nominee, error)
	DeleteNomineeForCreator(ctx context.Context, id, creatorID string) (*model.Nominee, error)

	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a store backend.
type Options struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// Open connects to the configured backend and applies pending migrations.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverPostgres, "":
		return NewPostgres(ctx, opts.DatabaseURL)
	case DriverSQLite:
		return NewSQLite(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// migrate applies the embedded migrations for dialect under dir.
func migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) error {
	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("open %s migrations: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
