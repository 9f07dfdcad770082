package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/brainiac5/brainiac-server/internal/normalize"
)

// TagDelimiter joins tag names in the single-string wire form of a tag list.
const TagDelimiter = ";"

// Tag validation errors.
var (
	ErrTagEmpty     = errors.New("tag name is empty")
	ErrTagDelimiter = errors.New("tag name contains " + TagDelimiter)
	ErrTagTooLong   = errors.New("tag name is too long")
)

// Tag is a named label. The normalized name is its identity.
type Tag struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Relation links an idea to a tag. Relations are created and removed
// explicitly and are not cascaded when either side is deleted.
type Relation struct {
	IdeaID    string    `json:"idea_id"`
	TagName   string    `json:"tag_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateTagName normalizes name and checks it can round-trip through the
// delimited wire form.
func ValidateTagName(name string) (string, error) {
	n := normalize.TagName(name)
	switch {
	case n == "":
		return "", ErrTagEmpty
	case strings.Contains(n, TagDelimiter):
		return "", ErrTagDelimiter
	case len([]rune(n)) > normalize.MaxTagLength:
		return "", ErrTagTooLong
	}
	return n, nil
}

// ParseTagList splits the wire form into normalized tag names. Blank entries
// are dropped and duplicates keep their first position. An empty string
// yields an empty, non-nil slice.
func ParseTagList(s string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for part := range strings.SplitSeq(s, TagDelimiter) {
		name := normalize.TagName(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	return tags
}

// FormatTagList joins tag names into the wire form. Names must already have
// passed ValidateTagName.
func FormatTagList(tags []string) string {
	return strings.Join(tags, TagDelimiter)
}

// NormalizeTagList validates every name and removes duplicates, keeping order.
func NormalizeTagList(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		name, err := ValidateTagName(raw)
		if err != nil {
			return nil, &TagError{Name: raw, Err: err}
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// TagError reports which tag failed validation.
type TagError struct {
	Name string
	Err  error
}

func (e *TagError) Error() string {
	return "tag " + `"` + e.Name + `": ` + e.Err.Error()
}

func (e *TagError) Unwrap() error { return e.Err }
