package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/epl-data/xreflink/internal/domain/catalog"
	"github.com/epl-data/xreflink/internal/domain/matching"
	"github.com/epl-data/xreflink/internal/domain/xref"
	"github.com/epl-data/xreflink/internal/platform/id"
	"github.com/epl-data/xreflink/internal/platform/logging"
	"github.com/epl-data/xreflink/internal/platform/similarity"
)

type LinkRequest struct {
	TargetSource    string `json:"target_source" validate:"required"`
	CandidateSource string `json:"candidate_source" validate:"required,nefield=TargetSource"`
	Workers         int    `json:"workers" validate:"gte=0,lte=128"`
	// TeamsOnly stops after the team xref is materialized and stored.
	TeamsOnly bool `json:"teams_only"`
	// DryRun labels the result; routing writes to a throwaway store is
	// the caller's job.
	DryRun bool `json:"dry_run"`
}

type LinkResult struct {
	TargetSource    string                 `json:"target_source"`
	CandidateSource string                 `json:"candidate_source"`
	WorkerCount     int                    `json:"worker_count"`
	DurationMs      int64                  `json:"duration_ms"`
	DryRun          bool                   `json:"dry_run,omitempty"`
	Summary         xref.Summary           `json:"summary"`
	TeamXref        []xref.TeamEntry       `json:"team_xref"`
	PlayerXref      []xref.PlayerEntry     `json:"player_xref"`
	Unmatched       []xref.UnmatchedRecord `json:"unmatched"`
}

// ReportSink receives the completed run for export. Write failures are
// logged by the run, never fatal.
type ReportSink interface {
	Write(ctx context.Context, result LinkResult) error
}

// LinkService runs one cross-reference pass: resolve teams for both
// sources, match every target record against the candidate index, and
// replace the stored snapshots.
type LinkService struct {
	resolver   *TeamResolverService
	providers  catalog.ProviderReader
	store      xref.Store
	reports    ReportSink
	scorer     *similarity.Scorer
	ids        id.Generator
	thresholds matching.Thresholds
	workers    int
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewLinkService(
	resolver *TeamResolverService,
	providers catalog.ProviderReader,
	store xref.Store,
	reports ReportSink,
	scorer *similarity.Scorer,
	ids id.Generator,
	thresholds matching.Thresholds,
	workers int,
	logger *logging.Logger,
) *LinkService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LinkService{
		resolver:   resolver,
		providers:  providers,
		store:      store,
		reports:    reports,
		scorer:     scorer,
		ids:        ids,
		thresholds: thresholds,
		workers:    workers,
		logger:     logger,
		validator:  validator.New(),
	}
}

func (s *LinkService) Run(ctx context.Context, req LinkRequest) (LinkResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LinkService.Run")
	defer span.End()

	start := time.Now()

	if s.resolver == nil || s.providers == nil || s.store == nil || s.scorer == nil || s.ids == nil {
		return LinkResult{}, fmt.Errorf("%w: link service is not fully configured", ErrDependencyUnavailable)
	}
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return LinkResult{}, fmt.Errorf("%w: validation failed: %v", ErrInvalidInput, err)
	}
	if err := s.thresholds.Validate(); err != nil {
		return LinkResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	target, err := catalog.SourceByName(req.TargetSource)
	if err != nil {
		return LinkResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	candidate, err := catalog.SourceByName(req.CandidateSource)
	if err != nil {
		return LinkResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		targetRes     *matching.TeamResolution
		candidateRes  *matching.TeamResolution
		targetPlayers []catalog.Player
		candPlayers   []catalog.Player
	)
	loads := pool.New().WithContext(ctx)
	loads.Go(func(ctx context.Context) error {
		var err error
		targetRes, err = s.resolver.Resolve(ctx, target)
		return err
	})
	loads.Go(func(ctx context.Context) error {
		var err error
		candidateRes, err = s.resolver.Resolve(ctx, candidate)
		return err
	})
	if !req.TeamsOnly {
		loads.Go(func(ctx context.Context) error {
			var err error
			if targetPlayers, err = s.providers.ListPlayers(ctx, target); err != nil {
				return fmt.Errorf("list players source=%s: %w", target.Name, err)
			}
			return nil
		})
		loads.Go(func(ctx context.Context) error {
			var err error
			if candPlayers, err = s.providers.ListPlayers(ctx, candidate); err != nil {
				return fmt.Errorf("list players source=%s: %w", candidate.Name, err)
			}
			return nil
		})
	}
	if err := loads.Wait(); err != nil {
		return LinkResult{}, err
	}

	stampTeamSource(target.Name, targetRes.Entries)
	stampTeamSource(candidate.Name, candidateRes.Entries)

	// The team xref is replaced before any player matching so player
	// rows never point at teams missing from the snapshot.
	if err := s.store.ReplaceTeams(ctx, target.Name, targetRes.Entries); err != nil {
		return LinkResult{}, fmt.Errorf("replace team xref source=%s: %w", target.Name, err)
	}
	if err := s.store.ReplaceTeams(ctx, candidate.Name, candidateRes.Entries); err != nil {
		return LinkResult{}, fmt.Errorf("replace team xref source=%s: %w", candidate.Name, err)
	}

	teamXref := make([]xref.TeamEntry, 0, len(targetRes.Entries)+len(candidateRes.Entries))
	teamXref = append(teamXref, targetRes.Entries...)
	teamXref = append(teamXref, candidateRes.Entries...)

	result := LinkResult{
		TargetSource:    target.Name,
		CandidateSource: candidate.Name,
		DryRun:          req.DryRun,
		TeamXref:        teamXref,
		Summary: xref.Summary{
			Source:           target.Name,
			Teams:            len(targetRes.Entries),
			DroppedLabels:    len(targetRes.Dropped),
			CandidateTeams:   len(candidateRes.Entries),
			CandidateDropped: len(candidateRes.Dropped),
			ByMethod:         make(map[xref.Method]int),
		},
	}

	if !req.TeamsOnly {
		targets := dedupeTargets(targetPlayers)
		result.Summary.Targets = len(targets)
		if skipped := len(targetPlayers) - len(targets); skipped > 0 {
			s.logger.WarnContext(ctx, "duplicate or incomplete target rows skipped",
				"source", target.Name, "skipped", skipped)
		}

		index := matching.NewIndex(matching.NewCandidates(candPlayers, candidateRes, s.scorer))
		result.WorkerCount = normalizeWorkerCount(req.Workers, s.workers, len(targets))

		entries, unmatched, err := s.matchTargets(ctx, target, targets, targetRes, index, result.WorkerCount)
		if err != nil {
			return LinkResult{}, err
		}
		result.PlayerXref = entries
		result.Unmatched = unmatched
		result.Summary.Matched = len(entries)
		result.Summary.Unmatched = len(unmatched)
		for _, entry := range entries {
			result.Summary.ByMethod[entry.Method]++
		}

		if err := s.store.ReplacePlayers(ctx, target.Name, entries, unmatched); err != nil {
			return LinkResult{}, fmt.Errorf("replace player xref source=%s: %w", target.Name, err)
		}

		// Read-back from the store, so the log shows what was actually
		// persisted rather than what was computed.
		if counts, err := s.store.MethodCounts(ctx, target.Name); err != nil {
			s.logger.WarnContext(ctx, "read back method counts", "source", target.Name, "error", err)
		} else {
			s.logger.InfoContext(ctx, "xref method breakdown", "source", target.Name, "counts", counts)
		}
	}

	result.DurationMs = time.Since(start).Milliseconds()

	if s.reports != nil {
		if err := s.reports.Write(ctx, result); err != nil {
			s.logger.ErrorContext(ctx, "write link report", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "link run complete",
		"target_source", result.TargetSource,
		"candidate_source", result.CandidateSource,
		"teams", result.Summary.Teams,
		"dropped_labels", result.Summary.DroppedLabels,
		"candidate_teams", result.Summary.CandidateTeams,
		"candidate_dropped_labels", result.Summary.CandidateDropped,
		"targets", result.Summary.Targets,
		"matched", result.Summary.Matched,
		"unmatched", result.Summary.Unmatched,
		"unmatched_ratio", result.Summary.UnmatchedRatio(),
		"worker_count", result.WorkerCount,
		"duration_ms", result.DurationMs,
		"dry_run", result.DryRun,
	)
	return result, nil
}

type linkOutcome struct {
	matched   bool
	entry     xref.PlayerEntry
	unmatched xref.UnmatchedRecord
	err       error
}

func (s *LinkService) matchTargets(
	ctx context.Context,
	source catalog.Source,
	targets []catalog.Player,
	teams *matching.TeamResolution,
	index *matching.Index,
	workerCount int,
) ([]xref.PlayerEntry, []xref.UnmatchedRecord, error) {
	results := make(chan linkOutcome, len(targets))

	var matchedCount atomic.Int32
	var unmatchedCount atomic.Int32

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, row := range targets {
		row := row
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			outcome := s.matchOne(source, row, teams, index)
			if outcome.matched {
				matchedCount.Add(1)
			} else if outcome.err == nil {
				unmatchedCount.Add(1)
			}
			results <- outcome
		}); err != nil {
			workers.Done()
			return nil, nil, fmt.Errorf("submit target to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	entries := make([]xref.PlayerEntry, 0, matchedCount.Load())
	unmatched := make([]xref.UnmatchedRecord, 0, unmatchedCount.Load())
	var firstErr error
	for outcome := range results {
		switch {
		case outcome.err != nil:
			if firstErr == nil {
				firstErr = outcome.err
			}
		case outcome.matched:
			entries = append(entries, outcome.entry)
		default:
			unmatched = append(unmatched, outcome.unmatched)
		}
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SourceID < entries[j].SourceID
	})
	sort.SliceStable(unmatched, func(i, j int) bool {
		return unmatched[i].SourceID < unmatched[j].SourceID
	})
	return entries, unmatched, nil
}

// matchOne is pure apart from id minting; it runs on pool workers
// against the shared read-only index.
func (s *LinkService) matchOne(
	source catalog.Source,
	row catalog.Player,
	teams *matching.TeamResolution,
	index *matching.Index,
) linkOutcome {
	target := matching.NewTarget(row, teams, s.scorer)
	decision := matching.Decide(target, index, s.scorer, s.thresholds)

	if !decision.Matched {
		return linkOutcome{unmatched: xref.UnmatchedRecord{
			Source:        source.Name,
			SourceID:      row.NativeID,
			RawName:       row.Name,
			RawTeam:       row.TeamLabel,
			Reason:        decision.Reason,
			BestCandidate: decision.BestName,
			BestScore:     decision.BestScore,
			Debug:         decision.Debug,
		}}
	}

	xrefID, err := s.ids.NewID("player", source.Name+":"+row.NativeID)
	if err != nil {
		return linkOutcome{err: fmt.Errorf("mint canonical id source=%s player=%s: %w", source.Name, row.NativeID, err)}
	}

	return linkOutcome{matched: true, entry: xref.PlayerEntry{
		XrefID:       xrefID,
		Source:       source.Name,
		SourceID:     row.NativeID,
		SourceName:   row.Name,
		Name:         decision.Candidate.Player.Name,
		SourceTeamID: target.TeamID,
		TeamID:       decision.Candidate.TeamID,
		Method:       decision.Method,
		Confidence:   decision.Confidence,
		Debug:        decision.Debug,
	}}
}

// dedupeTargets enforces one decision per source player id, keeping
// the first occurrence in catalog order. Rows without an id or a name
// never reach the matcher.
func dedupeTargets(rows []catalog.Player) []catalog.Player {
	seen := make(map[string]struct{}, len(rows))
	out := make([]catalog.Player, 0, len(rows))
	for _, row := range rows {
		if row.NativeID == "" || row.Name == "" {
			continue
		}
		if _, dup := seen[row.NativeID]; dup {
			continue
		}
		seen[row.NativeID] = struct{}{}
		out = append(out, row)
	}
	return out
}

func normalizeWorkerCount(requested, configured, targetCount int) int {
	count := requested
	if count <= 0 {
		count = configured
	}
	if count <= 0 {
		count = 1
	}
	if targetCount > 0 && count > targetCount {
		count = targetCount
	}
	return count
}

func stampTeamSource(source string, entries []xref.TeamEntry) {
	for i := range entries {
		entries[i].Source = source
	}
}
