package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/brainiac5/brainiac-server/internal/api"
	"github.com/brainiac5/brainiac-server/internal/config"
	"github.com/brainiac5/brainiac-server/internal/logger"
	"github.com/brainiac5/brainiac-server/internal/search"
	"github.com/brainiac5/brainiac-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// SearchIndex is nil when search is disabled.
type SearchIndexHandle struct {
	*search.SearchIndex
	rebuilt bool
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.SearchIndex == nil {
		return nil
	}
	return h.Close()
}

// IdeaIndex returns the index for services, or a nil interface when search
// is disabled.
func (h *SearchIndexHandle) IdeaIndex() service.IdeaIndex {
	if h.SearchIndex == nil {
		return nil
	}
	return h.SearchIndex
}

// RebuildableIndex returns the index for maintenance jobs, or a nil
// interface when search is disabled.
func (h *SearchIndexHandle) RebuildableIndex() service.RebuildableIndex {
	if h.SearchIndex == nil {
		return nil
	}
	return h.SearchIndex
}

// Stats returns the index for health reporting, or a nil interface when
// search is disabled.
func (h *SearchIndexHandle) Stats() api.IndexStats {
	if h.SearchIndex == nil {
		return nil
	}
	return h.SearchIndex
}

// ProvideSearchIndex provides the Bleve similarity index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Similarity search disabled by configuration")
		return &SearchIndexHandle{}, nil
	}

	index, rebuilt, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Search.IndexPath,
		Logger:   log.WithComponent("search").Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount, "rebuilt", rebuilt)

	return &SearchIndexHandle{SearchIndex: index, rebuilt: rebuilt}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// was just recreated or is empty while ideas exist.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	if indexHandle.SearchIndex == nil {
		return
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	maintenance := do.MustInvoke[*service.MaintenanceService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !indexHandle.rebuilt {
		docCount, _ := indexHandle.DocumentCount()
		if docCount > 0 {
			return
		}
		ideas, err := storeHandle.ListIdeas(context.Background(), 1)
		if err != nil || len(ideas) == 0 {
			return
		}
	}

	log.Info("Search index needs rebuilding, reindexing in background")

	go func() {
		count, err := maintenance.Reindex(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
