package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/brainiac5/brainiac-server/internal/config"
	"github.com/brainiac5/brainiac-server/internal/logger"
	"github.com/brainiac5/brainiac-server/internal/snapshot"
	"github.com/brainiac5/brainiac-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlite.Open(cfg.Database.Path, log.WithComponent("store").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Database.Path)

	return &StoreHandle{Store: db}, nil
}

// SnapshotStoreHandle wraps the hierarchy snapshot store with shutdown capability.
type SnapshotStoreHandle struct {
	*snapshot.Store
}

// Shutdown implements do.Shutdownable.
func (h *SnapshotStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideSnapshotStore provides the badger-backed hierarchy snapshot store.
func ProvideSnapshotStore(i do.Injector) (*SnapshotStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	s, err := snapshot.Open(cfg.Snapshot.Path, log.WithComponent("snapshot").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Snapshot store initialized", "path", cfg.Snapshot.Path)

	return &SnapshotStoreHandle{Store: s}, nil
}
