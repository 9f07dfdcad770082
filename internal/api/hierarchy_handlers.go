package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brainiac5/brainiac-server/internal/domain"
	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
)

func (s *Server) registerHierarchyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "buildHierarchy",
		Method:      http.MethodGet,
		Path:        "/api/v1/hierarchy",
		Summary:     "Build hierarchy",
		Description: "Builds the tag/idea tree from the current data",
		Tags:        []string{"Hierarchy"},
		Security:    bearerSecurity,
	}, s.handleBuildHierarchy)

	huma.Register(s.api, huma.Operation{
		OperationID: "latestHierarchy",
		Method:      http.MethodGet,
		Path:        "/api/v1/hierarchy/latest",
		Summary:     "Latest hierarchy",
		Description: "Returns the most recently published tree without rebuilding it",
		Tags:        []string{"Hierarchy"},
		Security:    bearerSecurity,
	}, s.handleLatestHierarchy)
}

// === DTOs ===

// HierarchyInput carries the caller's credentials.
type HierarchyInput struct {
	Authorization string `header:"Authorization"`
}

// IdeaLeafResponse is an idea under a tag or in the unassigned bucket.
type IdeaLeafResponse struct {
	Kind    string `json:"kind" enum:"idea" doc:"Always idea"`
	ID      string `json:"id" doc:"Idea ID"`
	Title   string `json:"title" doc:"Display title"`
	Content string `json:"content" doc:"Display content"`
}

// TagNodeResponse is a top-level tag with its ideas.
type TagNodeResponse struct {
	Kind     string             `json:"kind" enum:"tag,empty_tag" doc:"tag, or empty_tag when it has no ideas"`
	Name     string             `json:"name" doc:"Tag name"`
	Children []IdeaLeafResponse `json:"children" doc:"Ideas under the tag"`
}

// TagFailureResponse names a tag whose ideas could not be loaded.
type TagFailureResponse struct {
	Tag   string `json:"tag" doc:"Tag name"`
	Error string `json:"error" doc:"Failure reason"`
}

// HierarchyResponse is the tag/idea tree.
type HierarchyResponse struct {
	Tags            []TagNodeResponse    `json:"tags" doc:"Tags in name order"`
	Unassigned      []IdeaLeafResponse   `json:"unassigned" doc:"Ideas under no tag"`
	Failures        []TagFailureResponse `json:"failures,omitempty" doc:"Tags shown empty because their ideas failed to load"`
	Degraded        bool                 `json:"degraded" doc:"Whether any tag failed to load"`
	UnassignedExact bool                 `json:"unassigned_exact" doc:"False when ideas of a failed tag may be listed as unassigned"`
	Generation      uint64               `json:"generation" doc:"Build sequence number"`
	GeneratedAt     time.Time            `json:"generated_at" doc:"Build time"`
}

// HierarchyOutput wraps the hierarchy response for Huma.
type HierarchyOutput struct {
	Body HierarchyResponse
}

// === Handlers ===

func (s *Server) handleBuildHierarchy(ctx context.Context, input *HierarchyInput) (*HierarchyOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	h, err := s.services.Hierarchy.Build(ctx)
	if err != nil {
		return nil, err
	}

	return &HierarchyOutput{Body: mapHierarchy(h)}, nil
}

func (s *Server) handleLatestHierarchy(ctx context.Context, input *HierarchyInput) (*HierarchyOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	h, ok := s.services.Hierarchy.Latest()
	if !ok {
		return nil, domainerrors.NotFoundf("no hierarchy has been built yet")
	}

	return &HierarchyOutput{Body: mapHierarchy(h)}, nil
}

// === Helpers ===

func mapHierarchy(h *domain.Hierarchy) HierarchyResponse {
	resp := HierarchyResponse{
		Tags:            make([]TagNodeResponse, len(h.Tags)),
		Unassigned:      mapLeaves(h.Unassigned),
		Degraded:        h.Degraded(),
		UnassignedExact: h.UnassignedExact(),
		Generation:      h.Generation,
		GeneratedAt:     h.GeneratedAt,
	}
	for i, node := range h.Tags {
		resp.Tags[i] = TagNodeResponse{
			Kind:     string(node.Kind),
			Name:     node.Name,
			Children: mapLeaves(node.Children),
		}
	}
	for _, f := range h.Failures {
		resp.Failures = append(resp.Failures, TagFailureResponse{Tag: f.Tag, Error: f.Error})
	}
	return resp
}

func mapLeaves(nodes []domain.Node) []IdeaLeafResponse {
	leaves := make([]IdeaLeafResponse, len(nodes))
	for i, n := range nodes {
		leaves[i] = IdeaLeafResponse{
			Kind:    string(n.Kind),
			ID:      n.IdeaID,
			Title:   n.Title,
			Content: n.Content,
		}
	}
	return leaves
}
