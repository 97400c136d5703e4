package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

// Storage keeps the player collection in a single Redis hash
type Storage struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// New connects to Redis and verifies the connection
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient wraps an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "redis_store")),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.PlayerStore = (*Storage)(nil)

// LoadAll reads every record, skipping entries that fail to decode
func (s *Storage) LoadAll(ctx context.Context) ([]*model.Player, error) {
	entries, err := s.client.HGetAll(ctx, playersKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*model.Player{}, nil
		}
		return nil, err
	}

	players := make([]*model.Player, 0, len(entries))
	for key, data := range entries {
		var p model.Player
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			s.logger.Warn("skipping corrupt player record",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		players = append(players, &p)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].Key() < players[j].Key()
	})
	return players, nil
}

// SaveAll atomically replaces the hash contents
func (s *Storage) SaveAll(ctx context.Context, players []*model.Player) error {
	fields := make([]any, 0, len(players)*2)
	for _, p := range players {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding player %s: %w", p.Username, err)
		}
		fields = append(fields, p.Key(), data)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, playersKey())
		if len(fields) > 0 {
			pipe.HSet(ctx, playersKey(), fields...)
		}
		return nil
	})
	return err
}
