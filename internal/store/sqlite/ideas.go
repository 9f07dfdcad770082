package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/store"
)

// ideaColumns is the ordered list of columns selected in idea queries.
// Must match the scan order in scanIdea.
const ideaColumns = `i.id, i.title, i.content, i.created_at, i.updated_at`

// tagChunkSize bounds the number of ids bound into one IN clause.
const tagChunkSize = 500

func scanIdea(scanner interface{ Scan(dest ...any) error }) (*domain.Idea, error) {
	var (
		idea      domain.Idea
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&idea.ID, &idea.Title, &idea.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	idea.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	idea.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	idea.Tags = []string{}
	return &idea, nil
}

func (s *Store) queryIdeas(ctx context.Context, query string, args ...any) ([]*domain.Idea, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ideas := []*domain.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// attachTags fills Tags on each idea from relations whose tag still exists,
// ordered by relation creation.
func (s *Store) attachTags(ctx context.Context, ideas []*domain.Idea) error {
	byID := make(map[string]*domain.Idea, len(ideas))
	ids := make([]any, 0, len(ideas))
	for _, idea := range ideas {
		if _, dup := byID[idea.ID]; dup {
			continue
		}
		byID[idea.ID] = idea
		ids = append(ids, idea.ID)
	}

	for start := 0; start < len(ids); start += tagChunkSize {
		chunk := ids[start:min(start+tagChunkSize, len(ids))]
		rows, err := s.db.QueryContext(ctx, `
			SELECT r.idea_id, r.tag_name
			FROM relations r
			JOIN tags t ON t.name = r.tag_name
			WHERE r.idea_id IN (`+placeholders(len(chunk))+`)
			ORDER BY r.created_at ASC, r.rowid ASC`, chunk...)
		if err != nil {
			return fmt.Errorf("query idea tags: %w", err)
		}

		for rows.Next() {
			var ideaID, tagName string
			if err := rows.Scan(&ideaID, &tagName); err != nil {
				rows.Close()
				return err
			}
			if idea := byID[ideaID]; idea != nil {
				idea.Tags = append(idea.Tags, tagName)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateIdea inserts a new idea. Tags on the idea are ignored; relations are
// written through SetIdeaTags.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateIdea(ctx context.Context, idea *domain.Idea) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ideas (id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		idea.ID,
		idea.Title,
		idea.Content,
		formatTime(idea.CreatedAt),
		formatTime(idea.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessagef("idea %q already exists", idea.ID)
	}
	return err
}

// GetIdea retrieves an idea by ID.
// Returns store.ErrNotFound if the idea does not exist.
func (s *Store) GetIdea(ctx context.Context, id string) (*domain.Idea, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas i WHERE i.id = ?`, id)

	idea, err := scanIdea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessagef("idea %q not found", id)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, []*domain.Idea{idea}); err != nil {
		return nil, err
	}
	return idea, nil
}

// UpdateIdea overwrites the title, content and updated_at of an idea.
// Returns store.ErrNotFound if the idea does not exist.
func (s *Store) UpdateIdea(ctx context.Context, idea *domain.Idea) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ideas SET title = ?, content = ?, updated_at = ?
		WHERE id = ?`,
		idea.Title,
		idea.Content,
		formatTime(idea.UpdatedAt),
		idea.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result, store.ErrNotFound.WithMessagef("idea %q not found", idea.ID))
}

// DeleteIdea removes an idea. Its relations are left for FindOrphanRelations.
// Returns store.ErrNotFound if the idea does not exist.
func (s *Store) DeleteIdea(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM ideas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result, store.ErrNotFound.WithMessagef("idea %q not found", id))
}

// ListIdeas returns ideas in creation order.
func (s *Store) ListIdeas(ctx context.Context, limit int) ([]*domain.Idea, error) {
	return s.queryIdeas(ctx,
		`SELECT `+ideaColumns+` FROM ideas i ORDER BY i.created_at ASC, i.rowid ASC LIMIT ?`,
		limitArg(limit))
}

// SearchIdeasByTitle returns ideas whose title contains substr, ignoring
// ASCII case, in creation order.
func (s *Store) SearchIdeasByTitle(ctx context.Context, substr string, limit int) ([]*domain.Idea, error) {
	return s.queryIdeas(ctx, `
		SELECT `+ideaColumns+` FROM ideas i
		WHERE i.title LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY i.created_at ASC, i.rowid ASC
		LIMIT ?`,
		escapeLike(substr), limitArg(limit))
}

// requireAffected returns notFound when result touched no rows.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
