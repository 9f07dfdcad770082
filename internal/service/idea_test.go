package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainiac5/brainiac-server/internal/domain"
	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
	"github.com/brainiac5/brainiac-server/internal/search"
	"github.com/brainiac5/brainiac-server/internal/store"
)

// staticIndex returns fixed matches and fails writes on demand.
type staticIndex struct {
	matches  []search.Match
	writeErr error
	indexed  []string
}

func (x *staticIndex) IndexIdea(idea *domain.Idea) error {
	x.indexed = append(x.indexed, idea.ID)
	return x.writeErr
}

func (x *staticIndex) DeleteIdea(string) error { return x.writeErr }

func (x *staticIndex) Similar(context.Context, search.SimilarQuery) ([]search.Match, error) {
	return x.matches, nil
}

func setupIdeaTest(t *testing.T) (*IdeaService, store.Store) {
	t.Helper()
	s := setupTestStore(t)
	return NewIdeaService(s, setupTestIndex(t), testLogger()), s
}

func TestIdeaService_CreateIdea(t *testing.T) {
	svc, s := setupIdeaTest(t)
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, CreateIdeaRequest{
		Title:   "  Worker pools ",
		Content: "Bound the number of goroutines.",
		Tags:    []string{"go", " concurrency", "go"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Worker pools", idea.Title)
	assert.Equal(t, []string{"go", "concurrency"}, idea.Tags)

	stored, err := s.GetIdea(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "concurrency"}, stored.Tags)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestIdeaService_CreateIdea_TagListRoundTrip(t *testing.T) {
	svc, _ := setupIdeaTest(t)
	ctx := context.Background()

	wire := "go;databases;ünïcode"
	idea, err := svc.CreateIdea(ctx, CreateIdeaRequest{
		Title:   "Round trip",
		Content: "Tags survive the wire form.",
		Tags:    domain.ParseTagList(wire),
	})
	require.NoError(t, err)

	got, err := svc.GetIdea(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, wire, domain.FormatTagList(got.Tags))
}

func TestIdeaService_CreateIdea_InvalidTagWritesNothing(t *testing.T) {
	svc, s := setupIdeaTest(t)
	ctx := context.Background()

	_, err := svc.CreateIdea(ctx, CreateIdeaRequest{
		Title:   "Bad tags",
		Content: "One tag has the delimiter.",
		Tags:    []string{"fine", "not;fine"},
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Contains(t, domainErr.Details, "tags")

	ideas, err := s.ListIdeas(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, ideas)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestIdeaService_CreateIdea_RequiresTitleAndContent(t *testing.T) {
	svc, _ := setupIdeaTest(t)

	_, err := svc.CreateIdea(context.Background(), CreateIdeaRequest{Title: "   ", Content: "body"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.CreateIdea(context.Background(), CreateIdeaRequest{Title: "title", Content: ""})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestIdeaService_CreateIdea_IndexFailureDoesNotFailWrite(t *testing.T) {
	s := setupTestStore(t)
	index := &staticIndex{writeErr: errors.New("index unavailable")}
	svc := NewIdeaService(s, index, testLogger())

	idea, err := svc.CreateIdea(context.Background(), CreateIdeaRequest{Title: "Kept", Content: "Still stored."})
	require.NoError(t, err)
	assert.Equal(t, []string{idea.ID}, index.indexed)

	_, err = s.GetIdea(context.Background(), idea.ID)
	assert.NoError(t, err)
}

func TestIdeaService_UpdateIdea(t *testing.T) {
	svc, _ := setupIdeaTest(t)
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, CreateIdeaRequest{Title: "Before", Content: "Old body", Tags: []string{"a", "b"}})
	require.NoError(t, err)

	updated, err := svc.UpdateIdea(ctx, idea.ID, UpdateIdeaRequest{Title: "After", Content: "New body"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, []string{"a", "b"}, updated.Tags, "tags untouched when omitted")
	assert.False(t, updated.UpdatedAt.Before(idea.UpdatedAt))

	replaced := []string{"c"}
	updated, err = svc.UpdateIdea(ctx, idea.ID, UpdateIdeaRequest{Title: "After", Content: "New body", Tags: &replaced})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, updated.Tags)

	tags, err := svc.GetIdeaTags(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, tags)

	cleared := []string{}
	updated, err = svc.UpdateIdea(ctx, idea.ID, UpdateIdeaRequest{Title: "After", Content: "New body", Tags: &cleared})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
}

func TestIdeaService_UpdateIdea_NotFound(t *testing.T) {
	svc, _ := setupIdeaTest(t)

	_, err := svc.UpdateIdea(context.Background(), "idea-missing", UpdateIdeaRequest{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIdeaService_DeleteIdea(t *testing.T) {
	svc, _ := setupIdeaTest(t)
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, CreateIdeaRequest{Title: "Doomed", Content: "Soon gone."})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteIdea(ctx, idea.ID))

	_, err = svc.GetIdea(ctx, idea.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteIdea(ctx, idea.ID), store.ErrNotFound)
}

func TestIdeaService_GetIdeaContent(t *testing.T) {
	svc, _ := setupIdeaTest(t)
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, CreateIdeaRequest{Title: "Content", Content: "Just the body."})
	require.NoError(t, err)

	content, err := svc.GetIdeaContent(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, "Just the body.", content)
}

func TestIdeaService_SearchByTitle(t *testing.T) {
	svc, _ := setupIdeaTest(t)
	ctx := context.Background()

	for _, title := range []string{"Go Concurrency", "Baking bread", "go modules"} {
		_, err := svc.CreateIdea(ctx, CreateIdeaRequest{Title: title, Content: "body"})
		require.NoError(t, err)
	}

	ideas, err := svc.SearchByTitle(ctx, "GO", 0)
	require.NoError(t, err)
	assert.Len(t, ideas, 2)

	_, err = svc.SearchByTitle(ctx, "  ", 0)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestIdeaService_SimilarToIdea(t *testing.T) {
	svc, _ := setupIdeaTest(t)
	ctx := context.Background()

	pools, err := svc.CreateIdea(ctx, CreateIdeaRequest{Title: "Goroutine pools", Content: "Bounded worker pools limit concurrency.", Tags: []string{"go"}})
	require.NoError(t, err)
	sizing, err := svc.CreateIdea(ctx, CreateIdeaRequest{Title: "Worker pool sizing", Content: "How many workers should a pool run?", Tags: []string{"go"}})
	require.NoError(t, err)
	_, err = svc.CreateIdea(ctx, CreateIdeaRequest{Title: "Sourdough starter", Content: "Feed the starter twice a day."})
	require.NoError(t, err)

	matches, err := svc.SimilarToIdea(ctx, pools.ID, 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, sizing.ID, matches[0].IdeaID)
	for _, m := range matches {
		assert.NotEqual(t, pools.ID, m.IdeaID)
	}

	matches, err = svc.SimilarToText(ctx, "sourdough", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Sourdough starter", matches[0].Title)
}

func TestIdeaService_Similar_DropsStaleHits(t *testing.T) {
	s := setupTestStore(t)
	index := &staticIndex{}
	svc := NewIdeaService(s, index, testLogger())
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, CreateIdeaRequest{Title: "Live", Content: "Still here."})
	require.NoError(t, err)

	index.matches = []search.Match{
		{IdeaID: "idea-deleted", Title: "Gone", Score: 2},
		{IdeaID: idea.ID, Title: "old title", Score: 1},
	}

	matches, err := svc.SimilarToText(ctx, "anything", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, idea.ID, matches[0].IdeaID)
	assert.Equal(t, "Live", matches[0].Title)
}

func TestIdeaService_Similar_Disabled(t *testing.T) {
	svc := NewIdeaService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, CreateIdeaRequest{Title: "No index", Content: "Writes still work."})
	require.NoError(t, err)

	_, err = svc.SimilarToIdea(ctx, idea.ID, 5)
	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)

	_, err = svc.SimilarToText(ctx, "index", 5)
	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)
}
