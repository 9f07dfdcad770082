// Package search provides idea similarity using a Bleve full-text index.
// Ideas are scored by lexical relevance of their title, content and tags
// against a query text.
package search

import (
	"github.com/brainiac5/brainiac-server/internal/domain"
)

// IdeaDocument is the structure stored in the Bleve index for one idea.
type IdeaDocument struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"created_at"` // Unix milliseconds
}

// IdeaToDocument converts a domain idea to a search document.
func IdeaToDocument(idea *domain.Idea) *IdeaDocument {
	return &IdeaDocument{
		ID:        idea.ID,
		Title:     idea.Title,
		Content:   idea.Content,
		Tags:      append([]string(nil), idea.Tags...),
		CreatedAt: idea.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to the field map matching the index mapping.
func (d *IdeaDocument) ToMap() map[string]any {
	m := map[string]any{
		"idea_id":    d.ID,
		"title":      d.Title,
		"content":    d.Content,
		"created_at": float64(d.CreatedAt),
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}
