package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/store"
	"github.com/brainiac5/brainiac-server/internal/store/sqlite"
)

func TestConfigArgs(t *testing.T) {
	opts := &globalOptions{envFile: "custom.env"}
	assert.Equal(t, []string{"-env-file", "custom.env"}, opts.configArgs())

	opts.metadataPath = "/data"
	opts.databasePath = "/data/ideas.db"
	assert.Equal(t, []string{
		"-env-file", "custom.env",
		"-metadata-path", "/data",
		"-database-path", "/data/ideas.db",
	}, opts.configArgs())
}

func TestOrphanReason(t *testing.T) {
	assert.Equal(t, "idea", orphanReason(store.OrphanRelation{MissingIdea: true}))
	assert.Equal(t, "tag", orphanReason(store.OrphanRelation{MissingTag: true}))
	assert.Equal(t, "idea, tag", orphanReason(store.OrphanRelation{MissingIdea: true, MissingTag: true}))
}

func TestRenderOrphans(t *testing.T) {
	out := renderOrphans([]store.OrphanRelation{
		{IdeaID: "idea-1", TagName: "go", MissingIdea: true},
		{IdeaID: "idea-22", TagName: "databases", MissingTag: true},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "IDEA")
	assert.Contains(t, lines[1], "idea-1")
	assert.Contains(t, lines[2], "databases")
	// Columns line up.
	assert.Equal(t, strings.Index(lines[1], "go"), strings.Index(lines[2], "databases"))
}

// runCtl executes the CLI against dataDir and returns its stdout.
func runCtl(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--metadata-path", dataDir, "--env-file", filepath.Join(dataDir, "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckOrphansAndEnroll(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEARCH_ENABLED", "false")

	out, err := runCtl(t, dir, "check-orphans")
	require.NoError(t, err)
	assert.Contains(t, out, "No orphaned relations")

	out, err = runCtl(t, dir, "enroll", "Ada@Example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "otpauth://totp/")

	// Re-enrolling rotates the secret.
	again, err := runCtl(t, dir, "enroll", "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, out, again)
}

func TestEnroll_InvalidEmail(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEARCH_ENABLED", "false")

	_, err := runCtl(t, dir, "enroll", "not-an-email")
	assert.Error(t, err)
}

func TestCheckOrphans_Fix(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEARCH_ENABLED", "false")
	ctx := context.Background()

	st, err := sqlite.Open(filepath.Join(dir, "brainiac.db"), nil)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, st.CreateIdea(ctx, &domain.Idea{ID: "idea-gone", Title: "Gone", Content: "body", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, st.CreateIdea(ctx, &domain.Idea{ID: "idea-kept", Title: "Kept", Content: "body", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, st.SetIdeaTags(ctx, "idea-gone", []string{"go"}))
	require.NoError(t, st.SetIdeaTags(ctx, "idea-kept", []string{"go"}))
	require.NoError(t, st.DeleteIdea(ctx, "idea-gone"))
	require.NoError(t, st.Close())

	out, err := runCtl(t, dir, "check-orphans")
	require.NoError(t, err)
	assert.Contains(t, out, "idea-gone")
	assert.Contains(t, out, "1 orphaned relations")

	out, err = runCtl(t, dir, "check-orphans", "--fix")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 orphaned relations")

	out, err = runCtl(t, dir, "check-orphans")
	require.NoError(t, err)
	assert.Contains(t, out, "No orphaned relations")

	st, err = sqlite.Open(filepath.Join(dir, "brainiac.db"), nil)
	require.NoError(t, err)
	defer st.Close()
	tags, err := st.ListTagsForIdea(ctx, "idea-kept")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, tags)
}

func TestReindex_SearchDisabled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEARCH_ENABLED", "false")

	_, err := runCtl(t, dir, "reindex")
	assert.Error(t, err)
}

func TestReindex(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEARCH_ENABLED", "true")

	out, err := runCtl(t, dir, "reindex")
	require.NoError(t, err)
	assert.Contains(t, out, "Reindexed")
}
