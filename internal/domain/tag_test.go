package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagList_RoundTrip(t *testing.T) {
	tags := []string{"a", "b", "c"}

	wire := FormatTagList(tags)
	assert.Equal(t, "a;b;c", wire)
	assert.Equal(t, tags, ParseTagList(wire))
}

func TestTagList_EmptyRoundTrip(t *testing.T) {
	assert.Equal(t, "", FormatTagList(nil))
	assert.Equal(t, "", FormatTagList([]string{}))

	parsed := ParseTagList("")
	require.NotNil(t, parsed)
	assert.Empty(t, parsed)
}

func TestParseTagList_TrimsAndDedupes(t *testing.T) {
	assert.Equal(t, []string{"go", "Rust", "notes"}, ParseTagList(" go ; Rust;;go; notes ;"))
}

func TestValidateTagName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"trimmed", "  ideas ", "ideas", nil},
		{"case kept", "Ideas", "Ideas", nil},
		{"empty", "   ", "", ErrTagEmpty},
		{"delimiter", "a;b", "", ErrTagDelimiter},
		{"too long", strings.Repeat("x", 65), "", ErrTagTooLong},
		{"max length", strings.Repeat("é", 64), strings.Repeat("é", 64), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTagName(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTagList(t *testing.T) {
	got, err := NormalizeTagList([]string{"b", " a", "b "})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got)

	_, err = NormalizeTagList([]string{"ok", "bad;name"})
	var tagErr *TagError
	require.True(t, errors.As(err, &tagErr))
	assert.Equal(t, "bad;name", tagErr.Name)
	assert.ErrorIs(t, err, ErrTagDelimiter)
}

func TestNewTagNode_Kinds(t *testing.T) {
	empty := NewTagNode("lonely", nil)
	assert.Equal(t, NodeKindEmptyTag, empty.Kind)
	assert.True(t, empty.IsTag())

	leaf := NewIdeaLeaf(&Idea{ID: "idea-1", Title: "", Content: "body"})
	assert.Equal(t, NodeKindIdea, leaf.Kind)
	assert.Equal(t, UntitledIdea, leaf.Title)
	assert.False(t, leaf.IsTag())

	full := NewTagNode("go", []Node{leaf})
	assert.Equal(t, NodeKindTag, full.Kind)
	assert.Len(t, full.Children, 1)
}

func TestHierarchy_Counts(t *testing.T) {
	leaf := NewIdeaLeaf(&Idea{ID: "idea-1", Title: "t"})
	h := &Hierarchy{
		Tags:       []Node{NewTagNode("a", []Node{leaf, leaf}), NewTagNode("b", nil)},
		Unassigned: []Node{leaf},
	}
	assert.Equal(t, 3, h.IdeaCount())
	assert.False(t, h.Degraded())

	h.Failures = []TagFailure{{Tag: "b", Error: "boom"}}
	assert.True(t, h.Degraded())
}
