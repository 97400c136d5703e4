package memory

import (
	"context"
	"sync"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

// Storage keeps the player collection in process memory
type Storage struct {
	mu      sync.RWMutex
	players []*model.Player
	saves   int
}

// New creates an empty in-memory store
func New() *Storage {
	return &Storage{}
}

var _ storage.PlayerStore = (*Storage)(nil)

func (s *Storage) LoadAll(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlayers(s.players), nil
}

func (s *Storage) SaveAll(ctx context.Context, players []*model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = clonePlayers(players)
	s.saves++
	return nil
}

// Saves returns how many times SaveAll has completed
func (s *Storage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *Storage) Close() error {
	return nil
}

func clonePlayers(players []*model.Player) []*model.Player {
	out := make([]*model.Player, len(players))
	for i, p := range players {
		out[i] = p.Clone()
	}
	return out
}
