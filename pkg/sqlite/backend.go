// Package sqlite provides the public API for the SQLite comment backend.
// It exposes the factory while keeping implementation details internal.
package sqlite

import (
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/commentary/internal/sqlite"
	"github.com/mesh-intelligence/commentary/pkg/types"
)

// Backend is the SQLite comment store. It serves every lookup a
// types.Comment needs.
type Backend = sqlite.Backend

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend(zerolog.Nop())
//	cfg := types.DefaultConfig()
//	cfg.DataDir = ".commentary"
//	err := backend.Attach(cfg)
//	defer backend.Detach()
func NewBackend(log zerolog.Logger) *Backend {
	return sqlite.NewBackend(log)
}

// Open creates a backend and attaches it to cfg.
func Open(cfg types.Config, log zerolog.Logger) (*Backend, error) {
	b := NewBackend(log)
	if err := b.Attach(cfg); err != nil {
		return nil, err
	}
	return b, nil
}
