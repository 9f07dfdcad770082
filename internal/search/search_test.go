package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainiac5/brainiac-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, rebuilt, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	assert.False(t, rebuilt)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func testIdeas() []*domain.Idea {
	now := time.Now()
	return []*domain.Idea{
		{ID: "idea-1", Title: "Goroutine pools", Content: "Bounded worker pools limit concurrency.", Tags: []string{"go"}, CreatedAt: now},
		{ID: "idea-2", Title: "Worker pool sizing", Content: "How many workers should a pool run?", Tags: []string{"go", "perf"}, CreatedAt: now},
		{ID: "idea-3", Title: "Sourdough starter", Content: "Feed the starter twice a day.", Tags: []string{"baking"}, CreatedAt: now},
	}
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_RebuildsOnVersionChange(t *testing.T) {
	dir := t.TempDir()

	index, _, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexIdeas(testIdeas()))
	require.NoError(t, index.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ideas.version"), []byte("0"), 0o644))

	reopened, rebuilt, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, rebuilt)
	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexAndDelete(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexIdeas(testIdeas()))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	require.NoError(t, index.DeleteIdea("idea-3"))
	require.NoError(t, index.DeleteIdea("idea-unknown"))

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestSimilar_RanksRelatedIdeas(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexIdeas(testIdeas()))

	matches, err := index.Similar(context.Background(), SimilarQuery{Text: "worker pools"})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	ids := []string{matches[0].IdeaID, matches[1].IdeaID}
	assert.ElementsMatch(t, []string{"idea-1", "idea-2"}, ids)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
	assert.NotEmpty(t, matches[0].Title)
	assert.NotEmpty(t, matches[0].Content)
}

func TestSimilar_ExcludesSelf(t *testing.T) {
	index := setupTestIndex(t)
	ideas := testIdeas()
	require.NoError(t, index.IndexIdeas(ideas))

	self := ideas[1]
	matches, err := index.Similar(context.Background(), SimilarQuery{
		Text:      self.Title + " " + self.Content,
		Tags:      self.Tags,
		ExcludeID: self.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	assert.Equal(t, "idea-1", matches[0].IdeaID)
	assert.Equal(t, []string{"go"}, matches[0].Tags)
	for _, m := range matches {
		assert.NotEqual(t, self.ID, m.IdeaID)
	}
}

func TestSimilar_EmptyQuery(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexIdeas(testIdeas()))

	matches, err := index.Similar(context.Background(), SimilarQuery{Text: "   "})
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestSimilar_Limit(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexIdeas(testIdeas()))

	matches, err := index.Similar(context.Background(), SimilarQuery{Tags: []string{"go"}, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRebuild(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexIdeas(testIdeas()))

	require.NoError(t, index.Rebuild(testIdeas()[:1]))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	matches, err := index.Similar(context.Background(), SimilarQuery{Text: "sourdough"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStoredStrings(t *testing.T) {
	assert.Equal(t, []string{"a"}, storedStrings("a"))
	assert.Equal(t, []string{"a", "b"}, storedStrings([]any{"a", "b"}))
	assert.Equal(t, []string{}, storedStrings(nil))
}
