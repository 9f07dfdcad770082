package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/brainiac5/brainiac-server/internal/domain"
)

// SearchIndex wraps a Bleve index of ideas.
//
// Thread safety: All public methods are safe for concurrent use.
// The mutex protects against index corruption during rebuild operations.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex // Protects index operations during rebuild
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// This triggers an automatic rebuild on startup when the version doesn't match.
const mappingVersion = "1"

// batchSize bounds how many documents go into one Bleve batch.
const batchSize = 500

// NewSearchIndex creates or opens the idea index under opts.DataPath.
// An index that cannot be opened or that was built with another mapping
// version is removed and recreated empty; callers should then reindex.
// Rebuilt reports whether that happened.
func NewSearchIndex(opts Options) (idx *SearchIndex, rebuilt bool, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, false, fmt.Errorf("create search directory: %w", err)
	}

	indexPath := filepath.Join(opts.DataPath, "ideas.bleve")
	versionPath := filepath.Join(opts.DataPath, "ideas.version")

	var index bleve.Index
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, will rebuild",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		case string(existingVersion) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, false, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, false, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SearchIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, needsRebuild, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexIdea adds or replaces the document for one idea.
func (s *SearchIndex) IndexIdea(idea *domain.Idea) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := IdeaToDocument(idea)
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexIdeas indexes ideas in batches of batchSize.
func (s *SearchIndex) IndexIdeas(ideas []*domain.Idea) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(ideas)
}

func (s *SearchIndex) indexLocked(ideas []*domain.Idea) error {
	for i := 0; i < len(ideas); i += batchSize {
		end := min(i+batchSize, len(ideas))

		batch := s.index.NewBatch()
		for _, idea := range ideas[i:end] {
			doc := IdeaToDocument(idea)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteIdea removes an idea's document. Deleting an unknown id is not an error.
func (s *SearchIndex) DeleteIdea(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and fills a fresh one with ideas.
//
// This holds the exclusive lock for the whole rebuild, so searches block
// until it finishes.
func (s *SearchIndex) Rebuild(ideas []*domain.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index

	if err := s.indexLocked(ideas); err != nil {
		return err
	}

	s.logger.Info("rebuilt search index", "path", s.path, "documents", len(ideas))
	return nil
}
