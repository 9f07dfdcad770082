package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brainiac5/brainiac-server/internal/service"
)

func (s *Server) registerRelationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "addRelation",
		Method:        http.MethodPost,
		Path:          "/api/v1/relations",
		Summary:       "Tag an idea",
		Description:   "Links an existing idea to an existing tag. Linking twice is a no-op.",
		Tags:          []string{"Relations"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleAddRelation)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeRelation",
		Method:      http.MethodDelete,
		Path:        "/api/v1/relations",
		Summary:     "Untag an idea",
		Description: "Removes the link between an idea and a tag",
		Tags:        []string{"Relations"},
		Security:    bearerSecurity,
	}, s.handleRemoveRelation)
}

// RelationRequest identifies an idea-tag link.
type RelationRequest struct {
	IdeaID  string `json:"idea_id" doc:"Idea ID"`
	TagName string `json:"tag_name" doc:"Tag name"`
}

// RelationInput wraps the relation request for Huma.
type RelationInput struct {
	Authorization string `header:"Authorization"`
	Body          RelationRequest
}

func (s *Server) handleAddRelation(ctx context.Context, input *RelationInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	err := s.services.Relation.AddRelation(ctx, service.RelationRequest{
		IdeaID:  input.Body.IdeaID,
		TagName: input.Body.TagName,
	})
	if err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Relation added"}}, nil
}

func (s *Server) handleRemoveRelation(ctx context.Context, input *RelationInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	err := s.services.Relation.RemoveRelation(ctx, service.RelationRequest{
		IdeaID:  input.Body.IdeaID,
		TagName: input.Body.TagName,
	})
	if err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Relation removed"}}, nil
}
