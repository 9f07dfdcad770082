package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/service"
)

func (s *Server) registerIdeaRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listIdeas",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas",
		Summary:     "List ideas",
		Description: "Returns ideas in creation order",
		Tags:        []string{"Ideas"},
		Security:    bearerSecurity,
	}, s.handleListIdeas)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchIdeas",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas/search",
		Summary:     "Search ideas by title",
		Description: "Returns ideas whose title contains the query, ignoring case",
		Tags:        []string{"Ideas"},
		Security:    bearerSecurity,
	}, s.handleSearchIdeas)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createIdea",
		Method:        http.MethodPost,
		Path:          "/api/v1/ideas",
		Summary:       "Create idea",
		Description:   "Creates an idea. Tags are created as needed and linked in order.",
		Tags:          []string{"Ideas"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleCreateIdea)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIdea",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas/{id}",
		Summary:     "Get idea",
		Description: "Returns an idea by ID",
		Tags:        []string{"Ideas"},
		Security:    bearerSecurity,
	}, s.handleGetIdea)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIdeaContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas/{id}/content",
		Summary:     "Get idea content",
		Description: "Returns only the content of an idea",
		Tags:        []string{"Ideas"},
		Security:    bearerSecurity,
	}, s.handleGetIdeaContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIdeaTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas/{id}/tags",
		Summary:     "Get idea tags",
		Description: "Returns the tags of an idea in the order they were linked",
		Tags:        []string{"Ideas"},
		Security:    bearerSecurity,
	}, s.handleGetIdeaTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateIdea",
		Method:      http.MethodPut,
		Path:        "/api/v1/ideas/{id}",
		Summary:     "Update idea",
		Description: "Replaces title and content. Tags are replaced only when present.",
		Tags:        []string{"Ideas"},
		Security:    bearerSecurity,
	}, s.handleUpdateIdea)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteIdea",
		Method:      http.MethodDelete,
		Path:        "/api/v1/ideas/{id}",
		Summary:     "Delete idea",
		Description: "Deletes an idea. Its tags are kept.",
		Tags:        []string{"Ideas"},
		Security:    bearerSecurity,
	}, s.handleDeleteIdea)
}

// === DTOs ===

// IdeaResponse contains idea data in API responses.
type IdeaResponse struct {
	ID        string    `json:"id" doc:"Idea ID"`
	Title     string    `json:"title" doc:"Idea title"`
	Content   string    `json:"content" doc:"Idea content"`
	Tags      string    `json:"tags" doc:"Tag names joined by ';', empty when untagged"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// IdeaOutput wraps the idea response for Huma.
type IdeaOutput struct {
	Body IdeaResponse
}

// ListIdeasResponse contains a list of ideas.
type ListIdeasResponse struct {
	Ideas []IdeaResponse `json:"ideas" doc:"Ideas"`
}

// ListIdeasOutput wraps the list ideas response for Huma.
type ListIdeasOutput struct {
	Body ListIdeasResponse
}

// ListIdeasInput contains parameters for listing ideas.
type ListIdeasInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" default:"500" minimum:"1" doc:"Maximum ideas to return"`
}

// SearchIdeasInput contains parameters for title search.
type SearchIdeasInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Title substring"`
	Limit         int    `query:"limit" default:"500" minimum:"1" doc:"Maximum ideas to return"`
}

// CreateIdeaRequest is the request body for creating an idea.
type CreateIdeaRequest struct {
	Title   string `json:"title" maxLength:"200" doc:"Idea title"`
	Content string `json:"content" doc:"Idea content"`
	Tags    string `json:"tags,omitempty" doc:"Tag names joined by ';'"`
}

// CreateIdeaInput wraps the create idea request for Huma.
type CreateIdeaInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateIdeaRequest
}

// IdeaPathInput identifies an idea.
type IdeaPathInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
}

// UpdateIdeaRequest is the request body for updating an idea.
type UpdateIdeaRequest struct {
	Title   string  `json:"title" maxLength:"200" doc:"Idea title"`
	Content string  `json:"content" doc:"Idea content"`
	Tags    *string `json:"tags,omitempty" doc:"Replacement tag names joined by ';'. Omit to keep the current tags."`
}

// UpdateIdeaInput wraps the update idea request for Huma.
type UpdateIdeaInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
	Body          UpdateIdeaRequest
}

// IdeaContentResponse contains only an idea's content.
type IdeaContentResponse struct {
	ID      string `json:"id" doc:"Idea ID"`
	Content string `json:"content" doc:"Idea content"`
}

// IdeaContentOutput wraps the content response for Huma.
type IdeaContentOutput struct {
	Body IdeaContentResponse
}

// IdeaTagsResponse contains an idea's tags.
type IdeaTagsResponse struct {
	ID   string   `json:"id" doc:"Idea ID"`
	Tags []string `json:"tags" doc:"Tag names in link order"`
}

// IdeaTagsOutput wraps the idea tags response for Huma.
type IdeaTagsOutput struct {
	Body IdeaTagsResponse
}

// === Handlers ===

func (s *Server) handleListIdeas(ctx context.Context, input *ListIdeasInput) (*ListIdeasOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	ideas, err := s.services.Idea.ListIdeas(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListIdeasOutput{Body: ListIdeasResponse{Ideas: mapIdeas(ideas)}}, nil
}

func (s *Server) handleSearchIdeas(ctx context.Context, input *SearchIdeasInput) (*ListIdeasOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	ideas, err := s.services.Idea.SearchByTitle(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListIdeasOutput{Body: ListIdeasResponse{Ideas: mapIdeas(ideas)}}, nil
}

func (s *Server) handleCreateIdea(ctx context.Context, input *CreateIdeaInput) (*IdeaOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	idea, err := s.services.Idea.CreateIdea(ctx, service.CreateIdeaRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
		Tags:    domain.ParseTagList(input.Body.Tags),
	})
	if err != nil {
		return nil, err
	}

	return &IdeaOutput{Body: mapIdea(idea)}, nil
}

func (s *Server) handleGetIdea(ctx context.Context, input *IdeaPathInput) (*IdeaOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	idea, err := s.services.Idea.GetIdea(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &IdeaOutput{Body: mapIdea(idea)}, nil
}

func (s *Server) handleGetIdeaContent(ctx context.Context, input *IdeaPathInput) (*IdeaContentOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Idea.GetIdeaContent(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &IdeaContentOutput{Body: IdeaContentResponse{ID: input.ID, Content: content}}, nil
}

func (s *Server) handleGetIdeaTags(ctx context.Context, input *IdeaPathInput) (*IdeaTagsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	tags, err := s.services.Idea.GetIdeaTags(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &IdeaTagsOutput{Body: IdeaTagsResponse{ID: input.ID, Tags: tags}}, nil
}

func (s *Server) handleUpdateIdea(ctx context.Context, input *UpdateIdeaInput) (*IdeaOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	req := service.UpdateIdeaRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
	}
	if input.Body.Tags != nil {
		tags := domain.ParseTagList(*input.Body.Tags)
		req.Tags = &tags
	}

	idea, err := s.services.Idea.UpdateIdea(ctx, input.ID, req)
	if err != nil {
		return nil, err
	}

	return &IdeaOutput{Body: mapIdea(idea)}, nil
}

func (s *Server) handleDeleteIdea(ctx context.Context, input *IdeaPathInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Idea.DeleteIdea(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Idea deleted"}}, nil
}

// === Helpers ===

func mapIdea(idea *domain.Idea) IdeaResponse {
	return IdeaResponse{
		ID:        idea.ID,
		Title:     idea.Title,
		Content:   idea.Content,
		Tags:      domain.FormatTagList(idea.Tags),
		CreatedAt: idea.CreatedAt,
		UpdatedAt: idea.UpdatedAt,
	}
}

func mapIdeas(ideas []*domain.Idea) []IdeaResponse {
	resp := make([]IdeaResponse, len(ideas))
	for i, idea := range ideas {
		resp[i] = mapIdea(idea)
	}
	return resp
}
