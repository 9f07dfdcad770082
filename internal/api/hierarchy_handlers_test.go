package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainiac5/brainiac-server/internal/domain"
)

func TestHierarchy_BuildAndLatest(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t, "ada@example.com").AccessToken

	resp := ts.api.Get("/api/v1/hierarchy/latest", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code, "nothing published yet")

	pools := ts.createIdea(t, token, "Pools", "Worker pools.", "go")
	both := ts.createIdea(t, token, "Both", "Indexes.", "databases;go")
	loose := ts.createIdea(t, token, "Loose", "No tags.", "")
	resp = ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "empty"})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Get("/api/v1/hierarchy", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	built := decode[HierarchyResponse](t, resp.Body.Bytes()).Data

	require.Len(t, built.Tags, 3)
	assert.Equal(t, "databases", built.Tags[0].Name)
	assert.Equal(t, "tag", built.Tags[0].Kind)
	assert.Equal(t, "empty", built.Tags[1].Name)
	assert.Equal(t, "empty_tag", built.Tags[1].Kind)
	assert.Empty(t, built.Tags[1].Children)
	assert.Equal(t, "go", built.Tags[2].Name)

	goIDs := []string{}
	for _, leaf := range built.Tags[2].Children {
		assert.Equal(t, "idea", leaf.Kind)
		goIDs = append(goIDs, leaf.ID)
	}
	assert.Equal(t, []string{pools.ID, both.ID}, goIDs)

	require.Len(t, built.Unassigned, 1)
	assert.Equal(t, loose.ID, built.Unassigned[0].ID)
	assert.False(t, built.Degraded)
	assert.True(t, built.UnassignedExact)

	resp = ts.api.Get("/api/v1/hierarchy/latest", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	latest := decode[HierarchyResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, built.Generation, latest.Generation)
}

func TestHierarchy_EmptyStore(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t, "ada@example.com").AccessToken

	resp := ts.api.Get("/api/v1/hierarchy", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	built := decode[HierarchyResponse](t, resp.Body.Bytes()).Data
	assert.Empty(t, built.Tags)
	assert.Empty(t, built.Unassigned)
}

func TestMapHierarchy_Degraded(t *testing.T) {
	resp := mapHierarchy(&domain.Hierarchy{
		Tags:       []domain.Node{domain.NewTagNode("db", nil)},
		Unassigned: []domain.Node{},
		Failures:   []domain.TagFailure{{Tag: "db", Error: "ideas for this tag could not be loaded"}},
	})

	assert.True(t, resp.Degraded)
	assert.False(t, resp.UnassignedExact)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "db", resp.Failures[0].Tag)
	assert.Equal(t, "ideas for this tag could not be loaded", resp.Failures[0].Error)
	assert.Equal(t, "empty_tag", resp.Tags[0].Kind)
}
