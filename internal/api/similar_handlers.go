package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/search"
)

func (s *Server) registerSimilarRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSimilarIdeas",
		Method:      http.MethodGet,
		Path:        "/api/v1/ideas/{id}/similar",
		Summary:     "Similar ideas",
		Description: "Returns ideas closest to the given idea, most similar first. The idea itself is excluded.",
		Tags:        []string{"Similarity"},
		Security:    bearerSecurity,
	}, s.handleSimilarToIdea)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchSimilar",
		Method:      http.MethodGet,
		Path:        "/api/v1/similar",
		Summary:     "Similar to text",
		Description: "Returns ideas closest to free text, most similar first",
		Tags:        []string{"Similarity"},
		Security:    bearerSecurity,
	}, s.handleSimilarToText)
}

// === DTOs ===

// SimilarIdeaInput contains parameters for idea similarity.
type SimilarIdeaInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Idea ID"`
	Limit         int    `query:"limit" default:"10" minimum:"1" maximum:"100" doc:"Maximum matches"`
}

// SimilarTextInput contains parameters for free-text similarity.
type SimilarTextInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Text to compare against"`
	Limit         int    `query:"limit" default:"10" minimum:"1" maximum:"100" doc:"Maximum matches"`
}

// MatchResponse is one similar idea.
type MatchResponse struct {
	ID      string  `json:"id" doc:"Idea ID"`
	Title   string  `json:"title" doc:"Idea title"`
	Content string  `json:"content" doc:"Idea content"`
	Tags    string  `json:"tags" doc:"Tag names joined by ';'"`
	Score   float64 `json:"score" doc:"Relevance score, higher is closer"`
}

// SimilarResponse contains ranked matches.
type SimilarResponse struct {
	Matches []MatchResponse `json:"matches" doc:"Matches, most similar first"`
}

// SimilarOutput wraps the similarity response for Huma.
type SimilarOutput struct {
	Body SimilarResponse
}

// === Handlers ===

func (s *Server) handleSimilarToIdea(ctx context.Context, input *SimilarIdeaInput) (*SimilarOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	matches, err := s.services.Idea.SimilarToIdea(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &SimilarOutput{Body: SimilarResponse{Matches: mapMatches(matches)}}, nil
}

func (s *Server) handleSimilarToText(ctx context.Context, input *SimilarTextInput) (*SimilarOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	matches, err := s.services.Idea.SimilarToText(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &SimilarOutput{Body: SimilarResponse{Matches: mapMatches(matches)}}, nil
}

func mapMatches(matches []search.Match) []MatchResponse {
	resp := make([]MatchResponse, len(matches))
	for i, m := range matches {
		resp[i] = MatchResponse{
			ID:      m.IdeaID,
			Title:   m.Title,
			Content: m.Content,
			Tags:    domain.FormatTagList(m.Tags),
			Score:   m.Score,
		}
	}
	return resp
}
