package usecase

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/epl-data/xreflink/internal/domain/catalog"
	"github.com/epl-data/xreflink/internal/domain/matching"
	"github.com/epl-data/xreflink/internal/platform/logging"
	"github.com/epl-data/xreflink/internal/platform/similarity"
)

// TeamResolverService materializes the team cross-reference for one
// provider source. Player matching never starts without it.
type TeamResolverService struct {
	teams     catalog.TeamReader
	providers catalog.ProviderReader
	aliases   catalog.AliasTable
	scorer    *similarity.Scorer
	threshold float64
	logger    *logging.Logger
}

func NewTeamResolverService(
	teams catalog.TeamReader,
	providers catalog.ProviderReader,
	aliases catalog.AliasTable,
	scorer *similarity.Scorer,
	threshold float64,
	logger *logging.Logger,
) *TeamResolverService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamResolverService{
		teams:     teams,
		providers: providers,
		aliases:   aliases,
		scorer:    scorer,
		threshold: threshold,
		logger:    logger,
	}
}

// Resolve loads the canonical team catalog and the source's distinct
// team labels concurrently, then maps every label onto a canonical
// team. Labels that resolve to nothing are logged and dropped, never
// guessed.
func (s *TeamResolverService) Resolve(ctx context.Context, source catalog.Source) (*matching.TeamResolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamResolverService.Resolve")
	defer span.End()

	if s.teams == nil || s.providers == nil || s.scorer == nil {
		return nil, fmt.Errorf("%w: team resolver is not fully configured", ErrDependencyUnavailable)
	}
	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		teams  []catalog.Team
		labels []catalog.TeamLabel
	)
	loads := pool.New().WithContext(ctx)
	loads.Go(func(ctx context.Context) error {
		var err error
		if teams, err = s.teams.ListTeams(ctx); err != nil {
			return fmt.Errorf("list canonical teams: %w", err)
		}
		return nil
	})
	loads.Go(func(ctx context.Context) error {
		var err error
		if labels, err = s.providers.ListTeamLabels(ctx, source); err != nil {
			return fmt.Errorf("list team labels source=%s: %w", source.Name, err)
		}
		return nil
	})
	if err := loads.Wait(); err != nil {
		return nil, err
	}

	res, err := matching.ResolveTeams(teams, labels, s.aliases, s.scorer, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("resolve teams source=%s: %w", source.Name, err)
	}

	for _, dropped := range res.Dropped {
		s.logger.WarnContext(ctx, "team label dropped",
			"source", source.Name,
			"label", dropped.Label,
			"best_name", dropped.BestName,
			"best_score", dropped.BestScore,
		)
	}

	return res, nil
}
