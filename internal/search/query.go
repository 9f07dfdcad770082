package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Similarity result limits.
const (
	DefaultSimilarLimit = 10
	MaxSimilarLimit     = 100
)

// SimilarQuery describes what to find ideas similar to.
type SimilarQuery struct {
	Text      string   // Free text, or an idea's title and content
	Tags      []string // Tags that raise the score of ideas sharing them
	ExcludeID string   // Idea to leave out, usually the one being compared
	Limit     int
}

// Match is one similar idea.
type Match struct {
	IdeaID  string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score"`
}

// Similar returns ideas ranked by relevance to q, most similar first.
// A query with neither text nor tags matches nothing.
func (s *SearchIndex) Similar(ctx context.Context, q SimilarQuery) ([]Match, error) {
	matches := []Match{}

	searchQuery := buildSimilarQuery(q)
	if searchQuery == nil {
		return matches, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	limit = min(limit, MaxSimilarLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)
	req.Fields = []string{"title", "content", "tags"}
	req.SortBy([]string{"-_score", "_id"})

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute similarity search: %w", err)
	}

	for _, hit := range result.Hits {
		m := Match{IdeaID: hit.ID, Score: hit.Score, Tags: storedStrings(hit.Fields["tags"])}
		if t, ok := hit.Fields["title"].(string); ok {
			m.Title = t
		}
		if c, ok := hit.Fields["content"].(string); ok {
			m.Content = c
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func buildSimilarQuery(q SimilarQuery) query.Query {
	var should []query.Query

	if text := strings.TrimSpace(q.Text); text != "" {
		titleMatch := bleve.NewMatchQuery(text)
		titleMatch.SetField("title")
		titleMatch.SetBoost(2.0)
		should = append(should, titleMatch)

		contentMatch := bleve.NewMatchQuery(text)
		contentMatch.SetField("content")
		should = append(should, contentMatch)
	}

	for _, tag := range q.Tags {
		tq := bleve.NewTermQuery(tag)
		tq.SetField("tags")
		tq.SetBoost(1.5)
		should = append(should, tq)
	}

	if len(should) == 0 {
		return nil
	}

	anyOf := bleve.NewDisjunctionQuery(should...)
	if q.ExcludeID == "" {
		return anyOf
	}
	return query.NewBooleanQuery(
		[]query.Query{anyOf},
		nil,
		[]query.Query{bleve.NewDocIDQuery([]string{q.ExcludeID})},
	)
}

// storedStrings reads a stored field that holds one string or a list of them.
func storedStrings(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case string:
		out = append(out, val)
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
