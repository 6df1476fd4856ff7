// Package sqlite implements the SQLite storage backend for comments. The
// backend resolves pages, fields and users for a Comment, provides the
// sibling collection for a page+field, and counts stored comments.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/commentary/internal/format"
	"github.com/mesh-intelligence/commentary/internal/sanitize"
	"github.com/mesh-intelligence/commentary/pkg/types"
)

// DatabaseFile is the SQLite file created in Config.DataDir.
const DatabaseFile = "commentary.db"

// Backend stores pages, fields, users and comments in SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	users    *lru.Cache[int, types.User]
	svc      *types.Services
	log      zerolog.Logger
}

// Compile-time checks for the collaborator interfaces the backend serves.
var (
	_ types.PageLookup         = (*Backend)(nil)
	_ types.FieldLookup        = (*Backend)(nil)
	_ types.UserLookup         = (*Backend)(nil)
	_ types.CollectionProvider = (*Backend)(nil)
	_ types.Counter            = (*Backend)(nil)
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(log zerolog.Logger) *Backend {
	return &Backend{log: log.With().Str("component", "sqlite").Logger()}
}

// Attach opens the database in config.DataDir, creating the directory and
// schema when missing, and seeds the guest user.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}
	if config.UserCacheSize == 0 {
		config.UserCacheSize = types.DefaultUserCacheSize
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// One connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}
	if err := seedGuestUser(db, config.GuestUserID); err != nil {
		db.Close()
		return err
	}

	users, err := lru.New[int, types.User](config.UserCacheSize)
	if err != nil {
		db.Close()
		return fmt.Errorf("creating user cache: %w", err)
	}

	b.db = db
	b.config = config
	b.users = users
	b.svc = &types.Services{
		Config:      config,
		Pages:       b,
		Fields:      b,
		Users:       b,
		Collections: b,
		Sanitizer:   sanitize.New(),
		Formatters:  format.Registry(),
	}
	b.attached = true

	b.log.Info().Str("path", dbPath).Msg("attached")
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrNotAttached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	b.db = nil
	b.users = nil
	b.svc = nil
	b.attached = false

	b.log.Info().Msg("detached")
	return nil
}

// Services returns the collaborators comments created by this backend
// resolve through: the backend itself for lookups, collections and
// counting, plus the validator-based sanitizer and built-in formatters.
// Returns nil when detached.
func (b *Backend) Services() *types.Services {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.svc
}

// NewComment returns a pending comment bound to this backend's services.
func (b *Backend) NewComment() *types.Comment {
	return types.NewComment(b.Services())
}

// conn returns the open database under a read lock. Callers must call the
// returned release func.
func (b *Backend) conn() (*sql.DB, func(), error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, nil, types.ErrNotAttached
	}
	return b.db, b.mu.RUnlock, nil
}

func createSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
