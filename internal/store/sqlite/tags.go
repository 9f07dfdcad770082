package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/store"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)
	if err := scanner.Scan(&t.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// insertTag inserts a tag row and clears relations left behind by an earlier
// tag of the same name, so a recreated tag starts empty. Returns false if the
// tag already existed.
func insertTag(ctx context.Context, ex execer, tag *domain.Tag) (bool, error) {
	result, err := ex.ExecContext(ctx,
		`INSERT INTO tags (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		tag.Name, formatTime(tag.CreatedAt))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := ex.ExecContext(ctx, `DELETE FROM relations WHERE tag_name = ?`, tag.Name); err != nil {
		return false, fmt.Errorf("clear stale relations: %w", err)
	}
	return true, nil
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists if a tag with the same name exists.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	created, err := insertTag(ctx, tx, tag)
	if err != nil {
		return err
	}
	if !created {
		return store.ErrAlreadyExists.WithMessagef("tag %q already exists", tag.Name)
	}
	return tx.Commit()
}

// EnsureTag returns the tag with name, creating it if needed.
func (s *Store) EnsureTag(ctx context.Context, name string) (*domain.Tag, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := insertTag(ctx, tx, &domain.Tag{Name: name, CreatedAt: s.now()}); err != nil {
		return nil, err
	}

	t, err := scanTag(tx.QueryRowContext(ctx, `SELECT name, created_at FROM tags WHERE name = ?`, name))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTag retrieves a tag by name.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, created_at FROM tags WHERE name = ?`, name)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessagef("tag %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, created_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// DeleteTag removes a tag. Ideas and relations are untouched.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return requireAffected(result, store.ErrNotFound.WithMessagef("tag %q not found", name))
}
