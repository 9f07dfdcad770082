package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
)

func TestMaintenanceService_Orphans(t *testing.T) {
	f := setupTagTest(t)
	ctx := context.Background()
	svc := NewMaintenanceService(f.store, f.index, testLogger())

	doomed := f.createIdea(t, "Doomed", "go", "db")
	f.createIdea(t, "Survivor", "go")

	orphans, err := svc.CheckOrphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	require.NoError(t, f.ideas.DeleteIdea(ctx, doomed.ID))
	require.NoError(t, f.tags.DeleteTag(ctx, "db"))

	orphans, err = svc.CheckOrphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 2)
	for _, o := range orphans {
		assert.Equal(t, doomed.ID, o.IdeaID)
		assert.True(t, o.MissingIdea)
	}

	removed, err := svc.FixOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	orphans, err = svc.CheckOrphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	ideas, err := f.tags.IdeasForTag(ctx, "go", 0)
	require.NoError(t, err)
	assert.Len(t, ideas, 1)
}

func TestMaintenanceService_Reindex(t *testing.T) {
	f := setupTagTest(t)
	ctx := context.Background()

	f.createIdea(t, "One")
	f.createIdea(t, "Two")

	svc := NewMaintenanceService(f.store, f.index, testLogger())
	n, err := svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := f.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestMaintenanceService_Reindex_Disabled(t *testing.T) {
	svc := NewMaintenanceService(setupTestStore(t), nil, testLogger())

	_, err := svc.Reindex(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)
}
