package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brainiac5/brainiac-server/internal/config"
	"github.com/brainiac5/brainiac-server/internal/domain"
	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
	"github.com/brainiac5/brainiac-server/internal/metrics"
	"github.com/brainiac5/brainiac-server/internal/snapshot"
)

// DefaultHierarchyConcurrency bounds parallel per-tag fetches when no
// concurrency is configured.
const DefaultHierarchyConcurrency = 8

// HierarchySource is the read side of the store the hierarchy is built from.
type HierarchySource interface {
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	ListIdeasByTag(ctx context.Context, tagName string, limit int) ([]*domain.Idea, error)
	ListIdeas(ctx context.Context, limit int) ([]*domain.Idea, error)
}

// HierarchySnapshots persists the last published hierarchy.
type HierarchySnapshots interface {
	Save(h *domain.Hierarchy) (bool, error)
	Load() (*domain.Hierarchy, error)
}

// HierarchyOptions configures a HierarchyService.
type HierarchyOptions struct {
	FailurePolicy string // config.FailurePolicyDegrade or config.FailurePolicyFailFast
	Concurrency   int
	Snapshots     HierarchySnapshots // optional
}

// HierarchyService builds the tag/idea tree and holds the latest published
// one. Builds may run concurrently; a build is published only if no build
// that started later has already been published.
type HierarchyService struct {
	source      HierarchySource
	snapshots   HierarchySnapshots
	failFast    bool
	concurrency int
	logger      *slog.Logger
	now         func() time.Time

	generation atomic.Uint64
	latest     atomic.Pointer[domain.Hierarchy]
	saveMu     sync.Mutex
}

// NewHierarchyService creates a new hierarchy service.
func NewHierarchyService(source HierarchySource, opts HierarchyOptions, logger *slog.Logger) *HierarchyService {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultHierarchyConcurrency
	}
	return &HierarchyService{
		source:      source,
		snapshots:   opts.Snapshots,
		failFast:    opts.FailurePolicy == config.FailurePolicyFailFast,
		concurrency: concurrency,
		logger:      loggerOrDiscard(logger),
		now:         time.Now,
	}
}

// tagResult is the outcome of one per-tag fetch.
type tagResult struct {
	ideas []*domain.Idea
	err   error
}

// Build computes a fresh hierarchy and publishes it unless a newer build
// already was. The caller always gets its own result: a stale build is
// returned, just not published.
func (s *HierarchyService) Build(ctx context.Context) (*domain.Hierarchy, error) {
	gen := s.generation.Add(1)
	start := s.now()

	h, err := s.build(ctx, gen)
	took := s.now().Sub(start)
	if err != nil {
		metrics.ObserveHierarchyBuild(metrics.OutcomeFailed, took)
		s.logger.Error("Hierarchy build failed", "generation", gen, "error", err)
		return nil, domainerrors.ErrAggregationFailed.WithCause(err)
	}

	outcome := metrics.OutcomeOK
	if h.Degraded() {
		outcome = metrics.OutcomeDegraded
	}
	if !s.publish(h) {
		outcome = metrics.OutcomeStale
		s.logger.Debug("Hierarchy build superseded", "generation", gen)
	}
	metrics.ObserveHierarchyBuild(outcome, took)

	s.logger.Info("Hierarchy built",
		"generation", gen,
		"tags", len(h.Tags),
		"unassigned", len(h.Unassigned),
		"failures", len(h.Failures),
		"duration", took,
	)
	return h, nil
}

// Latest returns the most recently published hierarchy.
func (s *HierarchyService) Latest() (*domain.Hierarchy, bool) {
	h := s.latest.Load()
	return h, h != nil
}

// Restore publishes the persisted snapshot, if any, and continues numbering
// builds after its generation.
func (s *HierarchyService) Restore() error {
	if s.snapshots == nil {
		return nil
	}

	h, err := s.snapshots.Load()
	if err != nil {
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			return nil
		}
		return fmt.Errorf("load hierarchy snapshot: %w", err)
	}

	for {
		cur := s.generation.Load()
		if cur >= h.Generation || s.generation.CompareAndSwap(cur, h.Generation) {
			break
		}
	}
	if s.swapLatest(h) {
		metrics.HierarchyPublished(h.Generation)
		s.logger.Info("Restored hierarchy snapshot", "generation", h.Generation, "generated_at", h.GeneratedAt)
	}
	return nil
}

func (s *HierarchyService) build(ctx context.Context, gen uint64) (*domain.Hierarchy, error) {
	tags, err := s.source.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	results := make([]tagResult, len(tags))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, tag := range tags {
		g.Go(func() error {
			ideas, err := s.source.ListIdeasByTag(gctx, tag.Name, 0)
			if err != nil {
				if s.failFast {
					return fmt.Errorf("list ideas for tag %q: %w", tag.Name, err)
				}
				results[i] = tagResult{err: err}
				return nil
			}
			results[i] = tagResult{ideas: ideas}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Every fetch failing because the caller went away is not a degraded tree.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := &domain.Hierarchy{
		Tags:        make([]domain.Node, 0, len(tags)),
		Unassigned:  []domain.Node{},
		Generation:  gen,
		GeneratedAt: s.now(),
	}

	seen := make(map[string]struct{})
	for i, tag := range tags {
		res := results[i]
		if res.err != nil {
			s.logger.Warn("Failed to list ideas for tag", "tag", tag.Name, "generation", gen, "error", res.err)
			metrics.HierarchyTagFailed()
			h.Failures = append(h.Failures, domain.TagFailure{Tag: tag.Name, Error: tagFailureReason(res.err)})
			h.Tags = append(h.Tags, domain.NewTagNode(tag.Name, nil))
			continue
		}

		children := make([]domain.Node, 0, len(res.ideas))
		for _, idea := range res.ideas {
			seen[idea.ID] = struct{}{}
			children = append(children, domain.NewIdeaLeaf(idea))
		}
		h.Tags = append(h.Tags, domain.NewTagNode(tag.Name, children))
	}

	all, err := s.source.ListIdeas(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	for _, idea := range all {
		if _, ok := seen[idea.ID]; ok {
			continue
		}
		seen[idea.ID] = struct{}{}
		h.Unassigned = append(h.Unassigned, domain.NewIdeaLeaf(idea))
	}

	return h, nil
}

// publish makes h the latest hierarchy if it is newer than the current one
// and persists it.
func (s *HierarchyService) publish(h *domain.Hierarchy) bool {
	if !s.swapLatest(h) {
		return false
	}
	metrics.HierarchyPublished(h.Generation)

	if s.snapshots != nil {
		s.saveMu.Lock()
		defer s.saveMu.Unlock()
		if _, err := s.snapshots.Save(h); err != nil {
			s.logger.Warn("Failed to persist hierarchy snapshot", "generation", h.Generation, "error", err)
		}
	}
	return true
}

func (s *HierarchyService) swapLatest(h *domain.Hierarchy) bool {
	for {
		cur := s.latest.Load()
		if cur != nil && cur.Generation >= h.Generation {
			return false
		}
		if s.latest.CompareAndSwap(cur, h) {
			return true
		}
	}
}

// tagFailureReason describes a per-tag fetch failure without exposing store
// or driver text.
func tagFailureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out loading ideas for this tag"
	}
	return "ideas for this tag could not be loaded"
}
