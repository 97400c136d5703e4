package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gomoku-go/internal/config"
	"github.com/mcoot/gomoku-go/internal/dependencies/mocks"
	"github.com/mcoot/gomoku-go/internal/storage/memory"
	"github.com/mcoot/gomoku-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MemStore   *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and an in-memory store
func NewTestApp() *TestApp {
	cfg := config.Default()
	cfg.Store.Type = config.StoreMemory
	cfg.Accounts.BcryptCost = bcrypt.MinCost
	return NewTestAppWithConfig(cfg)
}

// NewTestAppWithConfig is NewTestApp with caller-supplied settings
func NewTestAppWithConfig(cfg config.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MemStore:   store,
	}
}
