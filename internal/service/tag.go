package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/store"
)

// TagService handles tag management.
type TagService struct {
	store  store.Store
	index  IdeaIndex
	logger *slog.Logger
	now    func() time.Time
}

// NewTagService creates a new tag service. index may be nil.
func NewTagService(store store.Store, index IdeaIndex, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		index:  index,
		logger: loggerOrDiscard(logger),
		now:    time.Now,
	}
}

// ListTags returns all tags ordered by name.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// GetTag returns a tag by name.
func (s *TagService) GetTag(ctx context.Context, name string) (*domain.Tag, error) {
	normalized, err := domain.ValidateTagName(name)
	if err != nil {
		return nil, tagValidationError("name", err)
	}

	tag, err := s.store.GetTag(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// CreateTag creates a tag, failing with a conflict if it already exists.
func (s *TagService) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	normalized, err := domain.ValidateTagName(name)
	if err != nil {
		return nil, tagValidationError("name", err)
	}

	tag := &domain.Tag{Name: normalized, CreatedAt: s.now()}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("Tag created", "tag", tag.Name)
	return tag, nil
}

// DeleteTag removes a tag. Ideas are untouched; their relations to the tag
// are left for check-orphans.
func (s *TagService) DeleteTag(ctx context.Context, name string) error {
	normalized, err := domain.ValidateTagName(name)
	if err != nil {
		return tagValidationError("name", err)
	}

	var affected []*domain.Idea
	if s.index != nil {
		affected, err = s.store.ListIdeasByTag(ctx, normalized, 0)
		if err != nil {
			return fmt.Errorf("list tag ideas: %w", err)
		}
	}

	if err := s.store.DeleteTag(ctx, normalized); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	reindexIdeas(ctx, s.store, s.index, s.logger, domain.IdeaIDs(affected)...)

	s.logger.Info("Tag deleted", "tag", normalized, "ideas", len(affected))
	return nil
}

// IdeasForTag returns the ideas carrying a tag in relation order.
func (s *TagService) IdeasForTag(ctx context.Context, name string, limit int) ([]*domain.Idea, error) {
	tag, err := s.GetTag(ctx, name)
	if err != nil {
		return nil, err
	}

	ideas, err := s.store.ListIdeasByTag(ctx, tag.Name, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list tag ideas: %w", err)
	}
	return ideas, nil
}

// reindexIdeas refreshes the search documents of ideaIDs from the store.
// Failures are logged and never returned.
func reindexIdeas(ctx context.Context, ideas store.IdeaStore, index IdeaIndex, logger *slog.Logger, ideaIDs ...string) {
	if index == nil {
		return
	}
	for _, ideaID := range ideaIDs {
		idea, err := ideas.GetIdea(ctx, ideaID)
		if err != nil {
			logger.Warn("Failed to load idea for reindex", "idea_id", ideaID, "error", err)
			continue
		}
		if err := index.IndexIdea(idea); err != nil {
			logger.Warn("Failed to index idea", "idea_id", ideaID, "error", err)
		}
	}
}
