package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/store"
)

func requireIdea(ctx context.Context, ex execer, id string) error {
	var found string
	err := ex.QueryRowContext(ctx, `SELECT id FROM ideas WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound.WithMessagef("idea %q not found", id)
	}
	return err
}

func requireTag(ctx context.Context, ex execer, name string) error {
	var found string
	err := ex.QueryRowContext(ctx, `SELECT name FROM tags WHERE name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound.WithMessagef("tag %q not found", name)
	}
	return err
}

// AddRelation links an idea to a tag. Both must exist. Adding an existing
// relation is a no-op that keeps its original position.
func (s *Store) AddRelation(ctx context.Context, ideaID, tagName string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireIdea(ctx, tx, ideaID); err != nil {
		return err
	}
	if err := requireTag(ctx, tx, tagName); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO relations (idea_id, tag_name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(idea_id, tag_name) DO NOTHING`,
		ideaID, tagName, formatTime(s.now())); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveRelation unlinks an idea from a tag.
// Returns store.ErrNotFound if the relation does not exist.
func (s *Store) RemoveRelation(ctx context.Context, ideaID, tagName string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM relations WHERE idea_id = ? AND tag_name = ?`, ideaID, tagName)
	if err != nil {
		return err
	}
	return requireAffected(result,
		store.ErrNotFound.WithMessagef("idea %q is not tagged %q", ideaID, tagName))
}

// ListIdeasByTag returns the ideas related to tagName in relation creation
// order. Relations to deleted ideas are skipped. An unknown tag yields an
// empty list.
func (s *Store) ListIdeasByTag(ctx context.Context, tagName string, limit int) ([]*domain.Idea, error) {
	return s.queryIdeas(ctx, `
		SELECT `+ideaColumns+`
		FROM relations r
		JOIN ideas i ON i.id = r.idea_id
		JOIN tags t ON t.name = r.tag_name
		WHERE r.tag_name = ?
		ORDER BY r.created_at ASC, r.rowid ASC
		LIMIT ?`,
		tagName, limitArg(limit))
}

// ListTagsForIdea returns the names of the live tags of an idea in relation
// creation order.
// Returns store.ErrNotFound if the idea does not exist.
func (s *Store) ListTagsForIdea(ctx context.Context, ideaID string) ([]string, error) {
	idea, err := s.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	return idea.Tags, nil
}

// SetIdeaTags replaces the tags of an idea with tags, creating missing tags.
// Tag names must already be normalized. When the order or membership
// changes, all relations of the idea are rewritten in the given order.
func (s *Store) SetIdeaTags(ctx context.Context, ideaID string, tags []string) error {
	current, err := s.ListTagsForIdea(ctx, ideaID)
	if err != nil {
		return err
	}
	if slices.Equal(current, tags) {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireIdea(ctx, tx, ideaID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE idea_id = ?`, ideaID); err != nil {
		return err
	}

	now := s.now()
	for _, name := range tags {
		if name == "" {
			return store.ErrInvalidInput.WithMessage("tag name is empty")
		}
		if _, err := insertTag(ctx, tx, &domain.Tag{Name: name, CreatedAt: now}); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO relations (idea_id, tag_name, created_at) VALUES (?, ?, ?)
			ON CONFLICT(idea_id, tag_name) DO NOTHING`,
			ideaID, name, formatTime(now)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
