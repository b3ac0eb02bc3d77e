package app

import (
	"context"
	"fmt"

	"github.com/epl-data/xreflink/internal/config"
	"github.com/epl-data/xreflink/internal/domain/catalog"
	"github.com/epl-data/xreflink/internal/domain/matching"
	"github.com/epl-data/xreflink/internal/domain/xref"
	"github.com/epl-data/xreflink/internal/infrastructure/report"
	"github.com/epl-data/xreflink/internal/infrastructure/repository/memory"
	"github.com/epl-data/xreflink/internal/infrastructure/repository/postgres"
	idgen "github.com/epl-data/xreflink/internal/platform/id"
	"github.com/epl-data/xreflink/internal/platform/logging"
	"github.com/epl-data/xreflink/internal/platform/similarity"
	"github.com/epl-data/xreflink/internal/usecase"
)

// Run executes one link pass end to end: build the engine from config,
// open the database, resolve teams, match players, store the
// snapshots. The caller owns deadline and signal handling via ctx.
func Run(ctx context.Context, cfg config.Config, req usecase.LinkRequest, logger *logging.Logger) (usecase.LinkResult, error) {
	if logger == nil {
		logger = logging.Default()
	}

	aliases, err := catalog.LoadAliases(cfg.AliasFile)
	if err != nil {
		return usecase.LinkResult{}, fmt.Errorf("load alias table: %w", err)
	}

	backend, err := similarity.NewBackend(cfg.SimilarityBackend)
	if err != nil {
		return usecase.LinkResult{}, err
	}
	if backend.Name() == similarity.BackendSequence {
		// The run proceeds on the weaker scorer; matches degrade, the
		// job does not fail.
		logger.Warn("similarity capability degraded",
			"backend", backend.Name(),
			"reason", "token metrics and phonetic codes unavailable",
		)
	}
	scorer := similarity.NewScorer(backend)

	ids, err := idgen.NewGenerator(cfg.IDStrategy)
	if err != nil {
		return usecase.LinkResult{}, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return usecase.LinkResult{}, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("close database", "error", err)
		}
	}()

	catalogRepo := postgres.NewCatalogRepository(db)

	var store xref.Store = postgres.NewXrefStore(db)
	if req.DryRun {
		logger.Info("dry run: xref snapshots go to the in-memory store")
		store = memory.NewXrefStore()
	}

	var reports usecase.ReportSink
	if cfg.ReportPath != "" {
		reports = report.NewWriter(cfg.ReportPath, logger)
	}

	thresholds := matching.Thresholds{
		TeamBlock: cfg.TeamBlockThreshold,
		Strict:    cfg.StrictThreshold,
		Global:    cfg.GlobalThreshold,
		Resolver:  cfg.TeamResolverThreshold,
	}

	resolver := usecase.NewTeamResolverService(
		catalogRepo,
		catalogRepo,
		aliases,
		scorer,
		cfg.TeamResolverThreshold,
		logger,
	)
	linker := usecase.NewLinkService(
		resolver,
		catalogRepo,
		store,
		reports,
		scorer,
		ids,
		thresholds,
		cfg.Workers,
		logger,
	)

	return linker.Run(ctx, req)
}
