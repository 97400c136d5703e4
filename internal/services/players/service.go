package players

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

var (
	usernamePattern    = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	nationalityPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

var earliestBirthDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Config holds player account settings
type Config struct {
	BcryptCost        int
	MinPasswordLength int
	DefaultTheme      string
	MaxPhotoBytes     int
}

// DefaultConfig returns default player account settings
func DefaultConfig() Config {
	return Config{
		BcryptCost:        bcrypt.DefaultCost,
		MinPasswordLength: 8,
		DefaultTheme:      model.DefaultTheme,
		MaxPhotoBytes:     1 << 20,
	}
}

// Service owns the shared player collection.
// A single mutex guards every read that must agree with concurrent writes, and every write.
type Service struct {
	store  storage.PlayerStore
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	players map[string]*model.Player
}

// New creates an empty Service; call Load to hydrate it from the store
func New(store storage.PlayerStore, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	if cfg.MinPasswordLength == 0 {
		cfg.MinPasswordLength = defaults.MinPasswordLength
	}
	if cfg.DefaultTheme == "" {
		cfg.DefaultTheme = defaults.DefaultTheme
	}
	if cfg.MaxPhotoBytes == 0 {
		cfg.MaxPhotoBytes = defaults.MaxPhotoBytes
	}
	return &Service{
		store:   store,
		clock:   clock,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "players")),
		players: make(map[string]*model.Player),
	}
}

// Load replaces the in-memory collection with the store's contents.
// A failing store leaves the collection empty.
func (s *Service) Load(ctx context.Context) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("failed to load players, starting empty", slog.String("error", err.Error()))
		records = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = make(map[string]*model.Player, len(records))
	for _, p := range records {
		if p == nil || p.Username == "" {
			continue
		}
		if p.Theme == "" {
			p.Theme = s.cfg.DefaultTheme
		}
		s.players[p.Key()] = p
	}
	s.logger.Info("players loaded", slog.Int("count", len(s.players)))
}

// Register validates and creates a new account, then persists the collection
func (s *Service) Register(ctx context.Context, username, password, nationality, dateOfBirth string) (model.Profile, error) {
	if !usernamePattern.MatchString(username) {
		return model.Profile{}, model.ErrInvalidUsername
	}
	if s.Exists(username) {
		return model.Profile{}, model.ErrUsernameTaken
	}
	if err := s.validatePassword(password); err != nil {
		return model.Profile{}, err
	}
	if err := validateNationality(nationality); err != nil {
		return model.Profile{}, err
	}
	dob, err := s.parseDateOfBirth(dateOfBirth)
	if err != nil {
		return model.Profile{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return model.Profile{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.clock.Now()
	player := &model.Player{
		Username:     username,
		PasswordHash: string(hash),
		Nationality:  nationality,
		DateOfBirth:  dob,
		Theme:        s.cfg.DefaultTheme,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// re-check under the lock; another connection may have registered meanwhile
	if _, ok := s.players[player.Key()]; ok {
		return model.Profile{}, model.ErrUsernameTaken
	}
	s.players[player.Key()] = player
	s.persistLocked(ctx)

	s.logger.Info("player registered", slog.String("username", username))
	return player.Profile(), nil
}

// Authenticate checks the password for a case-insensitive username match
func (s *Service) Authenticate(username, password string) (model.Profile, error) {
	s.mu.Lock()
	p, ok := s.players[model.UsernameKey(username)]
	var hash string
	var profile model.Profile
	if ok {
		hash = p.PasswordHash
		profile = p.Profile()
	}
	s.mu.Unlock()

	if !ok {
		return model.Profile{}, model.ErrPlayerNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return model.Profile{}, model.ErrInvalidCredentials
	}
	return profile, nil
}

// Exists reports whether a username is taken, ignoring case
func (s *Service) Exists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.players[model.UsernameKey(username)]
	return ok
}

// Profile returns the public view of a player
func (s *Service) Profile(username string) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[model.UsernameKey(username)]
	if !ok {
		return model.Profile{}, model.ErrPlayerNotFound
	}
	return p.Profile(), nil
}

// UpdateProfile applies the present fields of upd after validating all of them
func (s *Service) UpdateProfile(ctx context.Context, username string, upd model.ProfileUpdate) (model.Profile, error) {
	var hash string
	if upd.Password != nil {
		if err := s.validatePassword(*upd.Password); err != nil {
			return model.Profile{}, err
		}
		h, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), s.cfg.BcryptCost)
		if err != nil {
			return model.Profile{}, fmt.Errorf("hashing password: %w", err)
		}
		hash = string(h)
	}
	if upd.Nationality != nil {
		if err := validateNationality(*upd.Nationality); err != nil {
			return model.Profile{}, err
		}
	}
	var dob time.Time
	if upd.DateOfBirth != nil {
		d, err := s.parseDateOfBirth(*upd.DateOfBirth)
		if err != nil {
			return model.Profile{}, err
		}
		dob = d
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[model.UsernameKey(username)]
	if !ok {
		return model.Profile{}, model.ErrPlayerNotFound
	}
	if upd.Password != nil {
		p.PasswordHash = hash
	}
	if upd.Nationality != nil {
		p.Nationality = *upd.Nationality
	}
	if upd.DateOfBirth != nil {
		p.DateOfBirth = dob
	}
	if upd.Theme != nil {
		p.Theme = *upd.Theme
		if p.Theme == "" {
			p.Theme = s.cfg.DefaultTheme
		}
	}
	p.UpdatedAt = s.clock.Now()
	s.persistLocked(ctx)
	return p.Profile(), nil
}

// UpdatePhoto replaces the player's photo; an empty blob clears it
func (s *Service) UpdatePhoto(ctx context.Context, username string, photo []byte) (model.Profile, error) {
	if len(photo) > s.cfg.MaxPhotoBytes {
		return model.Profile{}, model.ErrPhotoTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[model.UsernameKey(username)]
	if !ok {
		return model.Profile{}, model.ErrPlayerNotFound
	}
	if len(photo) == 0 {
		p.Photo = nil
	} else {
		p.Photo = append([]byte(nil), photo...)
	}
	p.UpdatedAt = s.clock.Now()
	s.persistLocked(ctx)
	return p.Profile(), nil
}

// Leaderboard returns every player in ranking order
func (s *Service) Leaderboard() []model.Profile {
	s.mu.Lock()
	records := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		records = append(records, p.Clone())
	}
	s.mu.Unlock()
	return Rank(records)
}

// Outcome is the pair of updated profiles produced by RecordResult
type Outcome struct {
	Winner model.Profile
	Loser  model.Profile
}

// RecordResult credits a finished game to both players and persists, as one unit
func (s *Service) RecordResult(ctx context.Context, winner, loser string, winnerSpent, loserSpent time.Duration) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.players[model.UsernameKey(winner)]
	if !ok {
		return Outcome{}, fmt.Errorf("winner %s: %w", winner, model.ErrPlayerNotFound)
	}
	l, ok := s.players[model.UsernameKey(loser)]
	if !ok {
		return Outcome{}, fmt.Errorf("loser %s: %w", loser, model.ErrPlayerNotFound)
	}

	now := s.clock.Now()
	w.Victories++
	w.TimeSpent += clampDuration(winnerSpent)
	w.UpdatedAt = now
	l.Defeats++
	l.TimeSpent += clampDuration(loserSpent)
	l.UpdatedAt = now
	s.persistLocked(ctx)

	return Outcome{Winner: w.Profile(), Loser: l.Profile()}, nil
}

// Flush writes the collection to the store
func (s *Service) Flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked(ctx)
}

// Count returns the number of registered players
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// persistLocked writes every record to the store; failures are logged and the
// in-memory collection stays authoritative
func (s *Service) persistLocked(ctx context.Context) {
	records := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		records = append(records, p.Clone())
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key() < records[j].Key() })

	if err := s.store.SaveAll(ctx, records); err != nil {
		s.logger.Warn("failed to persist players",
			slog.Int("count", len(records)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) validatePassword(password string) error {
	if len(password) < s.cfg.MinPasswordLength {
		return model.ErrInvalidPassword
	}
	// bcrypt ignores anything past 72 bytes
	if len(password) > 72 {
		return model.ErrInvalidPassword
	}
	return nil
}

func (s *Service) parseDateOfBirth(value string) (time.Time, error) {
	dob, err := time.Parse(model.DateLayout, value)
	if err != nil {
		return time.Time{}, errors.Join(model.ErrInvalidDate, err)
	}
	if dob.Before(earliestBirthDate) || dob.After(s.clock.Now()) {
		return time.Time{}, model.ErrInvalidDate
	}
	return dob, nil
}

func validateNationality(code string) error {
	if !nationalityPattern.MatchString(code) {
		return model.ErrInvalidNationality
	}
	return nil
}

func clampDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// Rank orders records by victories desc, defeats asc, time spent asc, then username
func Rank(records []*model.Player) []model.Profile {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Victories != b.Victories {
			return a.Victories > b.Victories
		}
		if a.Defeats != b.Defeats {
			return a.Defeats < b.Defeats
		}
		if a.TimeSpent != b.TimeSpent {
			return a.TimeSpent < b.TimeSpent
		}
		if a.Key() != b.Key() {
			return a.Key() < b.Key()
		}
		return a.Username < b.Username
	})
	out := make([]model.Profile, len(records))
	for i, p := range records {
		out[i] = p.Profile()
	}
	return out
}
