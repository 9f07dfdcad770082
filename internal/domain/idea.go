// Package domain defines the core entities of the ideas server.
package domain

import "time"

// UntitledIdea is displayed for ideas whose title is empty.
const UntitledIdea = "Untitled Idea"

// Idea is a titled, tagged piece of content.
type Idea struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"` // ordered by relation creation
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (i *Idea) Touch() {
	i.UpdatedAt = time.Now()
}

// DisplayTitle returns the title, or UntitledIdea when it is blank.
func (i *Idea) DisplayTitle() string {
	if i.Title == "" {
		return UntitledIdea
	}
	return i.Title
}

// IdeaIDs returns the ids of ideas in order.
func IdeaIDs(ideas []*Idea) []string {
	ids := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		ids = append(ids, idea.ID)
	}
	return ids
}
