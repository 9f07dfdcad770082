package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/store"
)

// RebuildableIndex can be rebuilt from a full idea listing.
type RebuildableIndex interface {
	Rebuild(ideas []*domain.Idea) error
}

// MaintenanceService runs the admin consistency and reindex jobs.
type MaintenanceService struct {
	store  store.Store
	index  RebuildableIndex
	logger *slog.Logger
}

// NewMaintenanceService creates a new maintenance service. index may be nil.
func NewMaintenanceService(store store.Store, index RebuildableIndex, logger *slog.Logger) *MaintenanceService {
	return &MaintenanceService{store: store, index: index, logger: loggerOrDiscard(logger)}
}

// CheckOrphans lists relations whose idea or tag no longer exists.
func (s *MaintenanceService) CheckOrphans(ctx context.Context) ([]store.OrphanRelation, error) {
	orphans, err := s.store.FindOrphanRelations(ctx)
	if err != nil {
		return nil, fmt.Errorf("find orphan relations: %w", err)
	}
	return orphans, nil
}

// FixOrphans deletes every orphan relation and returns how many were removed.
func (s *MaintenanceService) FixOrphans(ctx context.Context) (int, error) {
	n, err := s.store.DeleteOrphanRelations(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete orphan relations: %w", err)
	}
	return n, nil
}

// Reindex rebuilds the similarity index from every stored idea.
func (s *MaintenanceService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrSearchDisabled
	}

	ideas, err := s.store.ListIdeas(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("list ideas: %w", err)
	}

	if err := s.index.Rebuild(ideas); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	s.logger.Info("Search index rebuilt", "ideas", len(ideas))
	return len(ideas), nil
}
