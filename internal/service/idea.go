package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brainiac5/brainiac-server/internal/domain"
	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
	"github.com/brainiac5/brainiac-server/internal/id"
	"github.com/brainiac5/brainiac-server/internal/normalize"
	"github.com/brainiac5/brainiac-server/internal/search"
	"github.com/brainiac5/brainiac-server/internal/store"
	"github.com/brainiac5/brainiac-server/internal/validation"
)

// IdeaIndex is the similarity index kept in step with idea writes.
type IdeaIndex interface {
	IndexIdea(idea *domain.Idea) error
	DeleteIdea(id string) error
	Similar(ctx context.Context, q search.SimilarQuery) ([]search.Match, error)
}

// ErrSearchDisabled is returned by similarity lookups when no index is configured.
var ErrSearchDisabled = &domainerrors.Error{Code: domainerrors.CodeUnavailable, Message: "similarity search is disabled"}

// IdeaService handles idea CRUD, title search and similarity lookups.
type IdeaService struct {
	store     store.Store
	index     IdeaIndex
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewIdeaService creates a new idea service. index may be nil, which turns
// similarity lookups off; idea writes are unaffected.
func NewIdeaService(store store.Store, index IdeaIndex, logger *slog.Logger) *IdeaService {
	return &IdeaService{
		store:     store,
		index:     index,
		validator: validation.New(),
		logger:    loggerOrDiscard(logger),
		now:       time.Now,
	}
}

// CreateIdeaRequest contains the fields of a new idea.
type CreateIdeaRequest struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Content string   `json:"content" validate:"required,max=100000"`
	Tags    []string `json:"tags"`
}

// UpdateIdeaRequest replaces an idea's title and content. Tags are only
// replaced when non-nil.
type UpdateIdeaRequest struct {
	Title   string    `json:"title" validate:"required,max=200"`
	Content string    `json:"content" validate:"required,max=100000"`
	Tags    *[]string `json:"tags"`
}

// CreateIdea validates and stores a new idea, creating its tags as needed.
// Tag problems are reported before anything is written.
func (s *IdeaService) CreateIdea(ctx context.Context, req CreateIdeaRequest) (*domain.Idea, error) {
	req.Title = normalize.Text(req.Title)
	req.Content = normalize.Text(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tags, err := domain.NormalizeTagList(req.Tags)
	if err != nil {
		return nil, tagValidationError("tags", err)
	}

	ideaID, err := id.Generate(id.PrefixIdea)
	if err != nil {
		return nil, fmt.Errorf("generate idea ID: %w", err)
	}

	now := s.now()
	idea := &domain.Idea{
		ID:        ideaID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}

	if len(tags) > 0 {
		if err := s.store.SetIdeaTags(ctx, idea.ID, tags); err != nil {
			if delErr := s.store.DeleteIdea(ctx, idea.ID); delErr != nil {
				s.logger.Error("Failed to remove idea after tagging failed", "idea_id", idea.ID, "error", delErr)
			}
			return nil, fmt.Errorf("set idea tags: %w", err)
		}
		idea.Tags = tags
	}

	s.indexIdea(idea)

	s.logger.Info("Idea created", "idea_id", idea.ID, "tags", len(idea.Tags))
	return idea, nil
}

// UpdateIdea replaces an idea's title and content, and its tags when
// req.Tags is set.
func (s *IdeaService) UpdateIdea(ctx context.Context, ideaID string, req UpdateIdeaRequest) (*domain.Idea, error) {
	req.Title = normalize.Text(req.Title)
	req.Content = normalize.Text(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var tags []string
	if req.Tags != nil {
		normalized, err := domain.NormalizeTagList(*req.Tags)
		if err != nil {
			return nil, tagValidationError("tags", err)
		}
		tags = normalized
	}

	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("get idea: %w", err)
	}

	idea.Title = req.Title
	idea.Content = req.Content
	idea.UpdatedAt = s.now()

	if err := s.store.UpdateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("update idea: %w", err)
	}

	if req.Tags != nil {
		if err := s.store.SetIdeaTags(ctx, idea.ID, tags); err != nil {
			return nil, fmt.Errorf("set idea tags: %w", err)
		}
		idea.Tags = tags
	}

	s.indexIdea(idea)
	return idea, nil
}

// DeleteIdea removes an idea. Its relations are left for check-orphans.
func (s *IdeaService) DeleteIdea(ctx context.Context, ideaID string) error {
	if err := s.store.DeleteIdea(ctx, ideaID); err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}

	if s.index != nil {
		if err := s.index.DeleteIdea(ideaID); err != nil {
			s.logger.Warn("Failed to remove idea from search index", "idea_id", ideaID, "error", err)
		}
	}

	s.logger.Info("Idea deleted", "idea_id", ideaID)
	return nil
}

// GetIdea returns one idea.
func (s *IdeaService) GetIdea(ctx context.Context, ideaID string) (*domain.Idea, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("get idea: %w", err)
	}
	return idea, nil
}

// GetIdeaContent returns only an idea's content.
func (s *IdeaService) GetIdeaContent(ctx context.Context, ideaID string) (string, error) {
	idea, err := s.GetIdea(ctx, ideaID)
	if err != nil {
		return "", err
	}
	return idea.Content, nil
}

// GetIdeaTags returns the tag names of an idea in relation order.
func (s *IdeaService) GetIdeaTags(ctx context.Context, ideaID string) ([]string, error) {
	tags, err := s.store.ListTagsForIdea(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("list idea tags: %w", err)
	}
	return tags, nil
}

// ListIdeas returns ideas in creation order. A non-positive limit means
// store.DefaultListLimit.
func (s *IdeaService) ListIdeas(ctx context.Context, limit int) ([]*domain.Idea, error) {
	ideas, err := s.store.ListIdeas(ctx, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return ideas, nil
}

// SearchByTitle returns ideas whose title contains q, ignoring case.
func (s *IdeaService) SearchByTitle(ctx context.Context, q string, limit int) ([]*domain.Idea, error) {
	q = normalize.Text(q)
	if err := s.validator.Var("q", q, "required,max=200"); err != nil {
		return nil, err
	}

	ideas, err := s.store.SearchIdeasByTitle(ctx, q, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search ideas: %w", err)
	}
	return ideas, nil
}

// SimilarToIdea returns ideas similar to ideaID, excluding itself.
func (s *IdeaService) SimilarToIdea(ctx context.Context, ideaID string, limit int) ([]search.Match, error) {
	if s.index == nil {
		return nil, ErrSearchDisabled
	}

	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("get idea: %w", err)
	}

	matches, err := s.index.Similar(ctx, search.SimilarQuery{
		Text:      idea.Title + "\n" + idea.Content,
		Tags:      idea.Tags,
		ExcludeID: idea.ID,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("similar ideas: %w", err)
	}
	return s.resolveMatches(ctx, matches)
}

// SimilarToText returns ideas similar to free text.
func (s *IdeaService) SimilarToText(ctx context.Context, text string, limit int) ([]search.Match, error) {
	if s.index == nil {
		return nil, ErrSearchDisabled
	}

	text = normalize.Text(text)
	if err := s.validator.Var("q", text, "required,max=100000"); err != nil {
		return nil, err
	}

	matches, err := s.index.Similar(ctx, search.SimilarQuery{Text: text, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("similar ideas: %w", err)
	}
	return s.resolveMatches(ctx, matches)
}

// resolveMatches refreshes matches from the store and drops ideas the index
// still knows about but the store no longer has.
func (s *IdeaService) resolveMatches(ctx context.Context, matches []search.Match) ([]search.Match, error) {
	resolved := make([]search.Match, 0, len(matches))
	for _, m := range matches {
		idea, err := s.store.GetIdea(ctx, m.IdeaID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.logger.Debug("Dropping stale search hit", "idea_id", m.IdeaID)
				continue
			}
			return nil, fmt.Errorf("get idea: %w", err)
		}
		m.Title = idea.Title
		m.Content = idea.Content
		m.Tags = idea.Tags
		resolved = append(resolved, m)
	}
	return resolved, nil
}

func (s *IdeaService) indexIdea(idea *domain.Idea) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexIdea(idea); err != nil {
		s.logger.Warn("Failed to index idea", "idea_id", idea.ID, "error", err)
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return store.DefaultListLimit
	}
	return limit
}

// tagValidationError converts a tag name problem into a validation error
// reported under field.
func tagValidationError(field string, err error) error {
	var tagErr *domain.TagError
	if errors.As(err, &tagErr) {
		return domainerrors.ValidationWithDetails("invalid tag", map[string]string{field: tagErr.Error()})
	}
	return domainerrors.ValidationWithDetails("invalid tag", map[string]string{field: err.Error()})
}
