package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/store"
	"github.com/brainiac5/brainiac-server/internal/validation"
)

// RelationService links ideas to tags.
type RelationService struct {
	store     store.Store
	index     IdeaIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewRelationService creates a new relation service. index may be nil.
func NewRelationService(store store.Store, index IdeaIndex, logger *slog.Logger) *RelationService {
	return &RelationService{
		store:     store,
		index:     index,
		validator: validation.New(),
		logger:    loggerOrDiscard(logger),
	}
}

// RelationRequest names one idea-tag pair.
type RelationRequest struct {
	IdeaID  string `json:"idea_id" validate:"required"`
	TagName string `json:"tag_name" validate:"required"`
}

// AddRelation links an existing idea to an existing tag. Adding a link that
// already exists succeeds.
func (s *RelationService) AddRelation(ctx context.Context, req RelationRequest) error {
	tagName, err := s.validate(&req)
	if err != nil {
		return err
	}

	if err := s.store.AddRelation(ctx, req.IdeaID, tagName); err != nil {
		return fmt.Errorf("add relation: %w", err)
	}

	reindexIdeas(ctx, s.store, s.index, s.logger, req.IdeaID)
	s.logger.Debug("Relation added", "idea_id", req.IdeaID, "tag", tagName)
	return nil
}

// RemoveRelation unlinks an idea from a tag.
func (s *RelationService) RemoveRelation(ctx context.Context, req RelationRequest) error {
	tagName, err := s.validate(&req)
	if err != nil {
		return err
	}

	if err := s.store.RemoveRelation(ctx, req.IdeaID, tagName); err != nil {
		return fmt.Errorf("remove relation: %w", err)
	}

	reindexIdeas(ctx, s.store, s.index, s.logger, req.IdeaID)
	s.logger.Debug("Relation removed", "idea_id", req.IdeaID, "tag", tagName)
	return nil
}

func (s *RelationService) validate(req *RelationRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}
	tagName, err := domain.ValidateTagName(req.TagName)
	if err != nil {
		return "", tagValidationError("tag_name", err)
	}
	return tagName, nil
}
