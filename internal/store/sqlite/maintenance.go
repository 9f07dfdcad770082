package sqlite

import (
	"context"

	"github.com/brainiac5/brainiac-server/internal/store"
)

// FindOrphanRelations lists relations whose idea or tag no longer exists.
func (s *Store) FindOrphanRelations(ctx context.Context) ([]store.OrphanRelation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.idea_id, r.tag_name, i.id IS NULL, t.name IS NULL
		FROM relations r
		LEFT JOIN ideas i ON i.id = r.idea_id
		LEFT JOIN tags t ON t.name = r.tag_name
		WHERE i.id IS NULL OR t.name IS NULL
		ORDER BY r.created_at ASC, r.rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orphans := []store.OrphanRelation{}
	for rows.Next() {
		var o store.OrphanRelation
		if err := rows.Scan(&o.IdeaID, &o.TagName, &o.MissingIdea, &o.MissingTag); err != nil {
			return nil, err
		}
		orphans = append(orphans, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orphans, nil
}

// DeleteOrphanRelations removes every relation reported by FindOrphanRelations
// and returns how many were removed.
func (s *Store) DeleteOrphanRelations(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM relations
		WHERE idea_id NOT IN (SELECT id FROM ideas)
		   OR tag_name NOT IN (SELECT name FROM tags)`)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("deleted orphan relations", "count", n)
	}
	return int(n), nil
}
