package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags ordered by name",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/tags",
		Summary:       "Create tag",
		Description:   "Creates a new tag. Names are case sensitive and may not contain ';'.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{name}",
		Summary:     "Delete tag",
		Description: "Deletes a tag. Ideas that carried it are kept.",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagIdeas",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{name}/ideas",
		Summary:     "Get tag ideas",
		Description: "Returns the ideas linked to a tag, in link order",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleGetTagIdeas)
}

// === DTOs ===

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Authorization string `header:"Authorization"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	Name      string    `json:"name" doc:"Tag name"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name" minLength:"1" doc:"Tag name"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateTagRequest
}

// TagOutput wraps the tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// TagPathInput identifies a tag.
type TagPathInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Tag name"`
}

// TagIdeasInput contains parameters for listing a tag's ideas.
type TagIdeasInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Tag name"`
	Limit         int    `query:"limit" default:"500" minimum:"1" doc:"Maximum ideas to return"`
}

// TagIdeasResponse contains the ideas linked to a tag.
type TagIdeasResponse struct {
	Tag   string         `json:"tag" doc:"Tag name"`
	Ideas []IdeaResponse `json:"ideas" doc:"Ideas in link order"`
}

// TagIdeasOutput wraps the tag ideas response for Huma.
type TagIdeasOutput struct {
	Body TagIdeasResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = TagResponse{Name: t.Name, CreatedAt: t.CreatedAt}
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.CreateTag(ctx, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: TagResponse{Name: t.Name, CreatedAt: t.CreatedAt}}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagPathInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeleteTag(ctx, input.Name); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}

func (s *Server) handleGetTagIdeas(ctx context.Context, input *TagIdeasInput) (*TagIdeasOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	ideas, err := s.services.Tag.IdeasForTag(ctx, input.Name, input.Limit)
	if err != nil {
		return nil, err
	}

	return &TagIdeasOutput{Body: TagIdeasResponse{Tag: input.Name, Ideas: mapIdeas(ideas)}}, nil
}
