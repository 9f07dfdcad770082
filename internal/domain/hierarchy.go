package domain

import "time"

// NodeKind discriminates hierarchy nodes.
type NodeKind string

const (
	// NodeKindTag is a tag with at least one idea under it.
	NodeKindTag NodeKind = "tag"
	// NodeKindEmptyTag is a tag with no ideas, or whose ideas could not be fetched.
	NodeKindEmptyTag NodeKind = "empty_tag"
	// NodeKindIdea is an idea leaf.
	NodeKindIdea NodeKind = "idea"
)

// Node is one entry in the tag/idea tree. Kind is fixed at construction and
// decides which fields are meaningful: Name and Children for tag kinds,
// IdeaID, Title and Content for idea leaves.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []Node   `json:"children,omitempty"`
	IdeaID   string   `json:"id,omitempty"`
	Title    string   `json:"title,omitempty"`
	Content  string   `json:"content,omitempty"`
}

// NewTagNode builds a tag node. A tag without children becomes NodeKindEmptyTag.
func NewTagNode(name string, children []Node) Node {
	if len(children) == 0 {
		return Node{Kind: NodeKindEmptyTag, Name: name}
	}
	return Node{Kind: NodeKindTag, Name: name, Children: children}
}

// NewIdeaLeaf projects an idea to a leaf, applying the display fallbacks.
func NewIdeaLeaf(idea *Idea) Node {
	return Node{
		Kind:    NodeKindIdea,
		IdeaID:  idea.ID,
		Title:   idea.DisplayTitle(),
		Content: idea.Content,
	}
}

// IsTag reports whether the node is one of the tag kinds.
func (n Node) IsTag() bool {
	return n.Kind == NodeKindTag || n.Kind == NodeKindEmptyTag
}

// TagFailure records a tag whose ideas could not be fetched while building a
// hierarchy under the degrade policy.
type TagFailure struct {
	Tag   string `json:"tag"`
	Error string `json:"error"` // client-safe reason; the cause is only logged
}

// Hierarchy is the computed two-level tree plus the unassigned bucket.
// Values are treated as immutable once built.
type Hierarchy struct {
	Tags        []Node       `json:"tags"`
	Unassigned  []Node       `json:"unassigned"`
	Failures    []TagFailure `json:"failures,omitempty"`
	Generation  uint64       `json:"generation"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Degraded reports whether any tag failed to load.
func (h *Hierarchy) Degraded() bool {
	return len(h.Failures) > 0
}

// UnassignedExact reports whether Unassigned holds only untagged ideas. It is
// false when a failed tag may have hidden some of its ideas there.
func (h *Hierarchy) UnassignedExact() bool {
	return !h.Degraded()
}

// IdeaCount returns the number of idea leaves across tags and the unassigned
// bucket. Ideas under several tags are counted once per tag.
func (h *Hierarchy) IdeaCount() int {
	n := len(h.Unassigned)
	for _, t := range h.Tags {
		n += len(t.Children)
	}
	return n
}
