package storage

import (
	"context"

	"github.com/mcoot/gomoku-go/internal/model"
)

// PlayerStore persists the whole player collection as one unit
type PlayerStore interface {
	// LoadAll returns every stored record; an empty store yields an empty slice
	LoadAll(ctx context.Context) ([]*model.Player, error)

	// SaveAll replaces the stored collection with players
	SaveAll(ctx context.Context, players []*model.Player) error

	Close() error
}
