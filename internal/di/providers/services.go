package providers

import (
	"github.com/samber/do/v2"

	"github.com/brainiac5/brainiac-server/internal/auth"
	"github.com/brainiac5/brainiac-server/internal/config"
	"github.com/brainiac5/brainiac-server/internal/logger"
	"github.com/brainiac5/brainiac-server/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	verifier := do.MustInvoke[*auth.TOTPVerifier](i)
	secrets := do.MustInvoke[*auth.SecretBox](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	limiterHandle := do.MustInvoke[*LoginLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	var limiter service.LoginLimiter
	if limiterHandle.Limiter != nil {
		limiter = limiterHandle.Limiter
	}

	return service.NewAuthService(storeHandle.Store, verifier, secrets, sessionService, limiter, log.Logger)
}

// ProvideIdeaService provides the idea service.
func ProvideIdeaService(i do.Injector) (*service.IdeaService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIdeaService(storeHandle.Store, indexHandle.IdeaIndex(), log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, indexHandle.IdeaIndex(), log.Logger), nil
}

// ProvideRelationService provides the idea-tag relation service.
func ProvideRelationService(i do.Injector) (*service.RelationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRelationService(storeHandle.Store, indexHandle.IdeaIndex(), log.Logger), nil
}

// ProvideHierarchyService provides the hierarchy aggregator, restored from
// the last persisted snapshot.
func ProvideHierarchyService(i do.Injector) (*service.HierarchyService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	snapshotHandle := do.MustInvoke[*SnapshotStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewHierarchyService(storeHandle.Store, service.HierarchyOptions{
		FailurePolicy: cfg.Aggregator.FailurePolicy,
		Concurrency:   cfg.Aggregator.Concurrency,
		Snapshots:     snapshotHandle.Store,
	}, log.WithComponent("hierarchy").Logger)

	if err := svc.Restore(); err != nil {
		log.Warn("Hierarchy snapshot could not be restored", "error", err)
	}

	return svc, nil
}

// ProvideMaintenanceService provides the admin maintenance jobs.
func ProvideMaintenanceService(i do.Injector) (*service.MaintenanceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMaintenanceService(storeHandle.Store, indexHandle.RebuildableIndex(), log.Logger), nil
}
