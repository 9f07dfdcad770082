// Package store defines the persistence interface for the ideas server.
package store

import (
	"context"
	"time"

	"github.com/brainiac5/brainiac-server/internal/domain"
)

// DefaultListLimit is the page size the API applies to idea listings.
const DefaultListLimit = 500

// IdeaStore persists ideas. List methods treat a non-positive limit as no limit.
// Ideas returned by this package have Tags filled from their live relations.
type IdeaStore interface {
	CreateIdea(ctx context.Context, idea *domain.Idea) error
	GetIdea(ctx context.Context, id string) (*domain.Idea, error)
	UpdateIdea(ctx context.Context, idea *domain.Idea) error
	DeleteIdea(ctx context.Context, id string) error
	ListIdeas(ctx context.Context, limit int) ([]*domain.Idea, error)
	SearchIdeasByTitle(ctx context.Context, substr string, limit int) ([]*domain.Idea, error)
}

// TagStore persists tags and their relations to ideas.
type TagStore interface {
	CreateTag(ctx context.Context, tag *domain.Tag) error
	EnsureTag(ctx context.Context, name string) (*domain.Tag, error)
	GetTag(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	DeleteTag(ctx context.Context, name string) error

	AddRelation(ctx context.Context, ideaID, tagName string) error
	RemoveRelation(ctx context.Context, ideaID, tagName string) error
	ListIdeasByTag(ctx context.Context, tagName string, limit int) ([]*domain.Idea, error)
	ListTagsForIdea(ctx context.Context, ideaID string) ([]string, error)
	SetIdeaTags(ctx context.Context, ideaID string, tags []string) error
}

// UserStore persists enrolled users.
type UserStore interface {
	UpsertUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchUserLogin(ctx context.Context, id string, at time.Time) error
}

// SessionStore persists login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) (int, error)
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// OrphanRelation is a relation whose idea or tag no longer exists.
type OrphanRelation struct {
	IdeaID      string `json:"idea_id"`
	TagName     string `json:"tag_name"`
	MissingIdea bool   `json:"missing_idea"`
	MissingTag  bool   `json:"missing_tag"`
}

// MaintenanceStore exposes consistency checks.
type MaintenanceStore interface {
	FindOrphanRelations(ctx context.Context) ([]OrphanRelation, error)
	DeleteOrphanRelations(ctx context.Context) (int, error)
}

// Store defines the interface for all persistence operations.
type Store interface {
	IdeaStore
	TagStore
	UserStore
	SessionStore
	MaintenanceStore

	Ping(ctx context.Context) error
	Close() error
}
