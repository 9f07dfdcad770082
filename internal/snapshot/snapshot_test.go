package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainiac5/brainiac-server/internal/domain"
)

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	return s
}

func testHierarchy(gen uint64) *domain.Hierarchy {
	leaf := domain.NewIdeaLeaf(&domain.Idea{ID: "idea-1", Title: "One", Content: "body"})
	return &domain.Hierarchy{
		Tags:        []domain.Node{domain.NewTagNode("go", []domain.Node{leaf}), domain.NewTagNode("empty", nil)},
		Unassigned:  []domain.Node{},
		Generation:  gen,
		GeneratedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoad_Empty(t *testing.T) {
	s := newTestStore(t, t.TempDir())
	defer s.Close()

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSaveLoad_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s := newTestStore(t, dir)
	written, err := s.Save(testHierarchy(3))
	require.NoError(t, err)
	assert.True(t, written)
	require.NoError(t, s.Close())

	reopened := newTestStore(t, dir)
	defer reopened.Close()

	got, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.Generation)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, domain.NodeKindTag, got.Tags[0].Kind)
	assert.Equal(t, "idea-1", got.Tags[0].Children[0].IdeaID)
	assert.Equal(t, domain.NodeKindEmptyTag, got.Tags[1].Kind)
	assert.True(t, got.GeneratedAt.Equal(testHierarchy(3).GeneratedAt))
}

func TestSave_KeepsNewerGeneration(t *testing.T) {
	s := newTestStore(t, t.TempDir())
	defer s.Close()

	_, err := s.Save(testHierarchy(5))
	require.NoError(t, err)

	written, err := s.Save(testHierarchy(4))
	require.NoError(t, err)
	assert.False(t, written)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), got.Generation)

	written, err = s.Save(testHierarchy(6))
	require.NoError(t, err)
	assert.True(t, written)
}
