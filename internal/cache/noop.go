package cache

import (
	"context"

	"github.com/nomvote/nomvote/internal/model"
)

// Noop is used when no Redis URL is configured. Every lookup misses.
type Noop struct{}

// GetSession always misses.
func (Noop) GetSession(context.Context, string) (*model.AuthContext, error) {
	return nil, ErrCacheMiss
}

func (Noop) SetSession(context.Context, string, *model.AuthContext) error { return nil }

func (Noop) RevokeSession(context.Context, string) error { return nil }
