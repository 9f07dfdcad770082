// Package snapshot persists the last published hierarchy in Badger so it
// survives restarts.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/brainiac5/brainiac-server/internal/domain"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no hierarchy snapshot")

var latestKey = []byte("hierarchy:latest")

// Store holds hierarchy snapshots.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens or creates the snapshot database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("snapshot store opened", "path", dir)

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with h unless the stored one has a
// higher generation. It reports whether h was written.
func (s *Store) Save(h *domain.Hierarchy) (bool, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return false, fmt.Errorf("marshal hierarchy: %w", err)
	}

	written := false
	err = s.db.Update(func(txn *badger.Txn) error {
		current, err := getHierarchy(txn)
		if err != nil && !errors.Is(err, ErrNoSnapshot) {
			return err
		}
		if current != nil && current.Generation > h.Generation {
			return nil
		}
		written = true
		return txn.Set(latestKey, data)
	})
	if err != nil {
		return false, fmt.Errorf("save hierarchy snapshot: %w", err)
	}
	return written, nil
}

// Load returns the stored snapshot or ErrNoSnapshot.
func (s *Store) Load() (*domain.Hierarchy, error) {
	var h *domain.Hierarchy
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		h, err = getHierarchy(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func getHierarchy(txn *badger.Txn) (*domain.Hierarchy, error) {
	item, err := txn.Get(latestKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	var h domain.Hierarchy
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &h)
	}); err != nil {
		return nil, fmt.Errorf("decode hierarchy snapshot: %w", err)
	}
	return &h, nil
}
