package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	username_key  TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	nationality   TEXT NOT NULL,
	date_of_birth TEXT NOT NULL,
	photo         BLOB,
	victories     INTEGER NOT NULL DEFAULT 0,
	defeats       INTEGER NOT NULL DEFAULT 0,
	time_spent_ms INTEGER NOT NULL DEFAULT 0,
	theme         TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);`

// Storage keeps the player collection in a SQLite file
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if missing) the database at path and applies the schema
func Open(path string, logger *slog.Logger) (*Storage, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// one writer; SaveAll holds a transaction for the whole collection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Storage{db: db, logger: logger.With(slog.String("component", "sqlite_store"))}, nil
}

var _ storage.PlayerStore = (*Storage)(nil)

func (s *Storage) Close() error {
	return s.db.Close()
}

// LoadAll reads every player ordered by username key, skipping rows that fail to decode
func (s *Storage) LoadAll(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username_key, username, password_hash, nationality, date_of_birth, photo,
		       victories, defeats, time_spent_ms, theme, created_at, updated_at
		FROM players
		ORDER BY username_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Player{}
	for rows.Next() {
		var (
			key                       string
			p                         model.Player
			dob, createdAt, updatedAt string
			spentMs                   int64
		)
		if err := rows.Scan(&key, &p.Username, &p.PasswordHash, &p.Nationality, &dob, &p.Photo,
			&p.Victories, &p.Defeats, &spentMs, &p.Theme, &createdAt, &updatedAt); err != nil {
			s.logger.Warn("skipping unreadable player row", slog.String("key", key), slog.String("error", err.Error()))
			continue
		}
		if err := decodeTimes(&p, dob, createdAt, updatedAt); err != nil {
			s.logger.Warn("skipping corrupt player record", slog.String("key", key), slog.String("error", err.Error()))
			continue
		}
		p.TimeSpent = time.Duration(spentMs) * time.Millisecond
		out = append(out, &p)
	}
	return out, rows.Err()
}

func decodeTimes(p *model.Player, dob, createdAt, updatedAt string) error {
	var err error
	if p.DateOfBirth, err = time.Parse(model.DateLayout, dob); err != nil {
		return fmt.Errorf("date of birth: %w", err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	return nil
}

// SaveAll replaces the table contents in one transaction
func (s *Storage) SaveAll(ctx context.Context, players []*model.Player) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear players: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players
			(username_key, username, password_hash, nationality, date_of_birth, photo,
			 victories, defeats, time_spent_ms, theme, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.ExecContext(ctx,
			p.Key(), p.Username, p.PasswordHash, p.Nationality, p.DateOfBirth.Format(model.DateLayout), p.Photo,
			p.Victories, p.Defeats, p.TimeSpent.Milliseconds(), p.Theme,
			p.CreatedAt.UTC().Format(time.RFC3339Nano), p.UpdatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert player %s: %w", p.Username, err)
		}
	}
	return tx.Commit()
}
