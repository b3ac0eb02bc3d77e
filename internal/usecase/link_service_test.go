package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/epl-data/xreflink/internal/domain/catalog"
	"github.com/epl-data/xreflink/internal/domain/matching"
	"github.com/epl-data/xreflink/internal/domain/xref"
	"github.com/epl-data/xreflink/internal/infrastructure/repository/memory"
	idgen "github.com/epl-data/xreflink/internal/platform/id"
	"github.com/epl-data/xreflink/internal/platform/logging"
	"github.com/epl-data/xreflink/internal/platform/similarity"
)

type stubTeamReader struct {
	teams []catalog.Team
	err   error
}

func (s *stubTeamReader) ListTeams(context.Context) ([]catalog.Team, error) {
	return s.teams, s.err
}

type stubProviderReader struct {
	mu              sync.Mutex
	playersBySource map[string][]catalog.Player
	labelsBySource  map[string][]catalog.TeamLabel
	playersErr      error
	playerCalls     []string
}

func (s *stubProviderReader) ListPlayers(_ context.Context, src catalog.Source) ([]catalog.Player, error) {
	s.mu.Lock()
	s.playerCalls = append(s.playerCalls, src.Name)
	s.mu.Unlock()

	if s.playersErr != nil {
		return nil, s.playersErr
	}
	return s.playersBySource[src.Name], nil
}

func (s *stubProviderReader) ListTeamLabels(_ context.Context, src catalog.Source) ([]catalog.TeamLabel, error) {
	return s.labelsBySource[src.Name], nil
}

func (s *stubProviderReader) playerCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.playerCalls)
}

type recordingStore struct {
	mu        sync.Mutex
	calls     []string
	teams     map[string][]xref.TeamEntry
	players   map[string][]xref.PlayerEntry
	unmatched map[string][]xref.UnmatchedRecord

	teamsErr   error
	playersErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		teams:     make(map[string][]xref.TeamEntry),
		players:   make(map[string][]xref.PlayerEntry),
		unmatched: make(map[string][]xref.UnmatchedRecord),
	}
}

func (s *recordingStore) ReplaceTeams(_ context.Context, source string, entries []xref.TeamEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.teamsErr != nil {
		return s.teamsErr
	}
	s.calls = append(s.calls, "teams:"+source)
	s.teams[source] = entries
	return nil
}

func (s *recordingStore) ReplacePlayers(_ context.Context, source string, entries []xref.PlayerEntry, unmatched []xref.UnmatchedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playersErr != nil {
		return s.playersErr
	}
	s.calls = append(s.calls, "players:"+source)
	s.players[source] = entries
	s.unmatched[source] = unmatched
	return nil
}

func (s *recordingStore) MethodCounts(_ context.Context, source string) (map[xref.Method]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[xref.Method]int)
	for _, entry := range s.players[source] {
		out[entry.Method]++
	}
	return out, nil
}

type stubReportSink struct {
	mu      sync.Mutex
	results []LinkResult
	err     error
}

func (s *stubReportSink) Write(_ context.Context, result LinkResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.results = append(s.results, result)
	return nil
}

func testCatalogs() (*stubTeamReader, *stubProviderReader) {
	teams := &stubTeamReader{teams: []catalog.Team{
		{TeamID: "t-eve", Name: "Everton"},
		{TeamID: "t-liv", Name: "Liverpool"},
	}}

	providers := &stubProviderReader{
		playersBySource: map[string][]catalog.Player{
			"fbref": {
				{NativeID: "c1", Name: "Mohamed Salah", TeamLabel: "Liverpool", Position: "FW"},
				{NativeID: "c2", Name: "Raul Jimenez", TeamLabel: "Everton", Position: "FW"},
				{NativeID: "c3", Name: "James Wilson", TeamLabel: "Liverpool", Position: "GK"},
				{NativeID: "c4", Name: "James Wilson", TeamLabel: "Liverpool", Position: "DEF"},
			},
			"understat": {
				{NativeID: "1", Name: "Mohamed Salah", TeamLabel: "Liverpool", Position: "FW"},
				{NativeID: "2", Name: "Raúl Jiménez", TeamLabel: "Everton", Position: "FW"},
				{NativeID: "3", Name: "James Wilson", TeamLabel: "Liverpool", Position: "DEF"},
				{NativeID: "4", Name: "Zzz Qqq", TeamLabel: "Liverpool"},
				{NativeID: "5", Name: "Nobody Atall", TeamLabel: "Atlantis FC"},
			},
		},
		labelsBySource: map[string][]catalog.TeamLabel{
			"fbref": {
				{Label: "Liverpool", ForeignID: "f-liv"},
				{Label: "Everton", ForeignID: "f-eve"},
			},
			"understat": {
				{Label: "Liverpool"},
				{Label: "Everton"},
				{Label: "Atlantis FC"},
			},
		},
	}

	return teams, providers
}

func newTestLinkService(teams catalog.TeamReader, providers catalog.ProviderReader, store xref.Store, reports ReportSink) *LinkService {
	scorer := similarity.NewScorer(similarity.TokenBackend{})
	resolver := NewTeamResolverService(teams, providers, catalog.DefaultAliases(), scorer, 0.90, logging.NewNop())

	return NewLinkService(
		resolver,
		providers,
		store,
		reports,
		scorer,
		idgen.NewDeterministicGenerator(),
		matching.DefaultThresholds(),
		4,
		logging.NewNop(),
	)
}

func TestLinkServiceRun_EndToEnd(t *testing.T) {
	t.Parallel()

	teams, providers := testCatalogs()
	store := newRecordingStore()
	sink := &stubReportSink{}
	svc := newTestLinkService(teams, providers, store, sink)

	result, err := svc.Run(context.Background(), LinkRequest{
		TargetSource:    "understat",
		CandidateSource: "fbref",
	})
	if err != nil {
		t.Fatalf("run link: %v", err)
	}

	if result.Summary.Targets != 5 {
		t.Fatalf("expected 5 targets, got=%d", result.Summary.Targets)
	}
	if result.Summary.Matched != 3 || result.Summary.Unmatched != 2 {
		t.Fatalf("expected 3 matched / 2 unmatched, got=%d/%d", result.Summary.Matched, result.Summary.Unmatched)
	}
	if result.Summary.DroppedLabels != 1 || result.Summary.CandidateDropped != 0 {
		t.Fatalf("expected 1 dropped target label and none for the candidate, got=%d/%d",
			result.Summary.DroppedLabels, result.Summary.CandidateDropped)
	}
	// Each count covers its own source: understat resolves Liverpool and
	// Everton, fbref the same two under its own labels.
	if result.Summary.Teams != 2 || result.Summary.CandidateTeams != 2 {
		t.Fatalf("expected 2 teams per source, got=%d/%d",
			result.Summary.Teams, result.Summary.CandidateTeams)
	}

	entries := store.players["understat"]
	if len(entries) != 3 {
		t.Fatalf("expected 3 stored entries, got=%d", len(entries))
	}

	byID := make(map[string]xref.PlayerEntry, len(entries))
	for _, entry := range entries {
		byID[entry.SourceID] = entry
	}

	salah := byID["1"]
	if salah.Method != xref.MethodExact || salah.Confidence != 100.0 {
		t.Fatalf("unexpected salah match: method=%s confidence=%f", salah.Method, salah.Confidence)
	}
	if salah.TeamID != "t-liv" {
		t.Fatalf("blocking violated: salah matched team %s", salah.TeamID)
	}

	// Diacritics strip to the same normalized form, so this is an
	// exact-tier accept, comfortably above the 95-confidence floor.
	jimenez := byID["2"]
	if jimenez.Method != xref.MethodExact || jimenez.Confidence < 95 {
		t.Fatalf("unexpected jimenez match: method=%s confidence=%f", jimenez.Method, jimenez.Confidence)
	}

	wilson := byID["3"]
	if wilson.Method != xref.MethodExactTieBreak || wilson.Confidence != 99.0 {
		t.Fatalf("unexpected wilson match: method=%s confidence=%f", wilson.Method, wilson.Confidence)
	}

	unmatched := store.unmatched["understat"]
	if len(unmatched) != 2 {
		t.Fatalf("expected 2 unmatched records, got=%d", len(unmatched))
	}
	reasons := make(map[string]xref.Reason, len(unmatched))
	for _, rec := range unmatched {
		reasons[rec.SourceID] = rec.Reason
	}
	if reasons["4"] != xref.ReasonLowScore {
		t.Fatalf("expected low_score for target 4, got=%s", reasons["4"])
	}
	if reasons["5"] != xref.ReasonNoTeamCandidates {
		t.Fatalf("expected no_team_candidates for target 5, got=%s", reasons["5"])
	}

	if len(sink.results) != 1 {
		t.Fatalf("expected 1 report, got=%d", len(sink.results))
	}
	if sink.results[0].Summary.Unmatched != 2 {
		t.Fatalf("report summary mismatch: %+v", sink.results[0].Summary)
	}
}

func TestLinkServiceRun_TeamsStoredBeforePlayers(t *testing.T) {
	t.Parallel()

	teams, providers := testCatalogs()
	store := newRecordingStore()
	svc := newTestLinkService(teams, providers, store, nil)

	if _, err := svc.Run(context.Background(), LinkRequest{
		TargetSource:    "understat",
		CandidateSource: "fbref",
	}); err != nil {
		t.Fatalf("run link: %v", err)
	}

	if len(store.calls) != 3 {
		t.Fatalf("expected 3 store calls, got=%v", store.calls)
	}
	if store.calls[len(store.calls)-1] != "players:understat" {
		t.Fatalf("player snapshot must be written last, got=%v", store.calls)
	}
	for _, call := range store.calls[:2] {
		if call != "teams:understat" && call != "teams:fbref" {
			t.Fatalf("expected team snapshots first, got=%v", store.calls)
		}
	}
}

func TestLinkServiceRun_EmptyTeamCatalogAbortsBeforeWrites(t *testing.T) {
	t.Parallel()

	_, providers := testCatalogs()
	store := newRecordingStore()
	svc := newTestLinkService(&stubTeamReader{}, providers, store, nil)

	_, err := svc.Run(context.Background(), LinkRequest{
		TargetSource:    "understat",
		CandidateSource: "fbref",
	})
	if !errors.Is(err, ErrEmptyTeamCatalog) {
		t.Fatalf("expected ErrEmptyTeamCatalog, got=%v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected no store writes, got=%v", store.calls)
	}
}

func TestLinkServiceRun_RejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	teams, providers := testCatalogs()
	svc := newTestLinkService(teams, providers, newRecordingStore(), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  LinkRequest
	}{
		{name: "missing target", req: LinkRequest{CandidateSource: "fbref"}},
		{name: "same source", req: LinkRequest{TargetSource: "fbref", CandidateSource: "fbref"}},
		{name: "unknown source", req: LinkRequest{TargetSource: "transfermarkt", CandidateSource: "fbref"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Run(ctx, tc.req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got=%v", err)
			}
		})
	}
}

func TestLinkServiceRun_TeamsOnlySkipsPlayerMatching(t *testing.T) {
	t.Parallel()

	teams, providers := testCatalogs()
	store := newRecordingStore()
	svc := newTestLinkService(teams, providers, store, nil)

	result, err := svc.Run(context.Background(), LinkRequest{
		TargetSource:    "understat",
		CandidateSource: "fbref",
		TeamsOnly:       true,
	})
	if err != nil {
		t.Fatalf("run link: %v", err)
	}

	if providers.playerCallCount() != 0 {
		t.Fatalf("expected no player catalog reads, got=%d", providers.playerCallCount())
	}
	if len(store.players["understat"]) != 0 {
		t.Fatalf("expected no player snapshot, got=%d entries", len(store.players["understat"]))
	}
	if result.Summary.Teams == 0 {
		t.Fatalf("expected team xref entries in result")
	}
}

func TestLinkServiceRun_DedupesTargets(t *testing.T) {
	t.Parallel()

	teams, providers := testCatalogs()
	providers.playersBySource["understat"] = []catalog.Player{
		{NativeID: "1", Name: "Mohamed Salah", TeamLabel: "Liverpool"},
		{NativeID: "1", Name: "Mohamed Salah Duplicate", TeamLabel: "Liverpool"},
		{NativeID: "", Name: "No Id", TeamLabel: "Liverpool"},
	}
	store := newRecordingStore()
	svc := newTestLinkService(teams, providers, store, nil)

	result, err := svc.Run(context.Background(), LinkRequest{
		TargetSource:    "understat",
		CandidateSource: "fbref",
	})
	if err != nil {
		t.Fatalf("run link: %v", err)
	}
	if result.Summary.Targets != 1 {
		t.Fatalf("expected 1 target after dedupe, got=%d", result.Summary.Targets)
	}
	if len(store.players["understat"]) != 1 {
		t.Fatalf("expected a single decision, got=%d", len(store.players["understat"]))
	}
}

func TestLinkServiceRun_MemoryBackedRehearsal(t *testing.T) {
	t.Parallel()

	// A full run on the in-memory repositories: catalogs without
	// explicit team labels fall back to the labels on the player rows,
	// and the store keeps the snapshots inspectable after the run.
	catalogs := memory.NewCatalogRepository([]catalog.Team{
		{TeamID: "t-eve", Name: "Everton"},
		{TeamID: "t-liv", Name: "Liverpool"},
	})
	catalogs.SetPlayers("fbref", []catalog.Player{
		{NativeID: "c1", Name: "Mohamed Salah", TeamLabel: "Liverpool", Position: "FW"},
		{NativeID: "c2", Name: "Raul Jimenez", TeamLabel: "Everton", Position: "FW"},
	})
	catalogs.SetPlayers("understat", []catalog.Player{
		{NativeID: "1", Name: "Mohamed Salah", TeamLabel: "Liverpool", Position: "FW"},
		{NativeID: "2", Name: "Raúl Jiménez", TeamLabel: "Everton", Position: "FW"},
	})
	store := memory.NewXrefStore()
	svc := newTestLinkService(catalogs, catalogs, store, nil)

	result, err := svc.Run(context.Background(), LinkRequest{
		TargetSource:    "understat",
		CandidateSource: "fbref",
		DryRun:          true,
	})
	if err != nil {
		t.Fatalf("run link: %v", err)
	}

	if result.Summary.Matched != 2 || result.Summary.Unmatched != 0 {
		t.Fatalf("expected 2 matched / 0 unmatched, got=%d/%d", result.Summary.Matched, result.Summary.Unmatched)
	}
	if result.Summary.Teams != 2 || result.Summary.CandidateTeams != 2 {
		t.Fatalf("expected both player-derived labels resolved per source, got=%d/%d",
			result.Summary.Teams, result.Summary.CandidateTeams)
	}
	if got := len(store.Teams("understat")); got != 2 {
		t.Fatalf("expected 2 stored team entries, got=%d", got)
	}
	if got := len(store.Players("understat")); got != 2 {
		t.Fatalf("expected 2 stored player entries, got=%d", got)
	}
	if got := len(store.Unmatched("understat")); got != 0 {
		t.Fatalf("expected no unmatched records, got=%d", got)
	}
}

func TestLinkServiceRun_ReportFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	teams, providers := testCatalogs()
	store := newRecordingStore()
	sink := &stubReportSink{err: fmt.Errorf("disk full")}
	svc := newTestLinkService(teams, providers, store, sink)

	result, err := svc.Run(context.Background(), LinkRequest{
		TargetSource:    "understat",
		CandidateSource: "fbref",
	})
	if err != nil {
		t.Fatalf("report failure must not fail the run: %v", err)
	}
	if result.Summary.Matched == 0 {
		t.Fatalf("expected matches despite report failure")
	}
}

func TestLinkServiceRun_StoreFailurePropagates(t *testing.T) {
	t.Parallel()

	teams, providers := testCatalogs()
	store := newRecordingStore()
	store.teamsErr = fmt.Errorf("connection reset")
	svc := newTestLinkService(teams, providers, store, nil)

	if _, err := svc.Run(context.Background(), LinkRequest{
		TargetSource:    "understat",
		CandidateSource: "fbref",
	}); err == nil {
		t.Fatalf("expected store failure to propagate")
	}
}

func TestLinkServiceRun_Deterministic(t *testing.T) {
	t.Parallel()

	run := func() LinkResult {
		teams, providers := testCatalogs()
		svc := newTestLinkService(teams, providers, newRecordingStore(), nil)
		result, err := svc.Run(context.Background(), LinkRequest{
			TargetSource:    "understat",
			CandidateSource: "fbref",
			Workers:         4,
		})
		if err != nil {
			t.Fatalf("run link: %v", err)
		}
		return result
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first.PlayerXref, second.PlayerXref) {
		t.Fatalf("player xref differs between runs:\n%+v\n%+v", first.PlayerXref, second.PlayerXref)
	}
	if !reflect.DeepEqual(first.Unmatched, second.Unmatched) {
		t.Fatalf("unmatched differs between runs:\n%+v\n%+v", first.Unmatched, second.Unmatched)
	}
}

func TestNormalizeWorkerCount(t *testing.T) {
	t.Parallel()

	if got := normalizeWorkerCount(0, 8, 100); got != 8 {
		t.Fatalf("expected configured fallback 8, got=%d", got)
	}
	if got := normalizeWorkerCount(16, 8, 100); got != 16 {
		t.Fatalf("expected requested 16, got=%d", got)
	}
	if got := normalizeWorkerCount(16, 8, 3); got != 3 {
		t.Fatalf("expected cap at target count 3, got=%d", got)
	}
	if got := normalizeWorkerCount(0, 0, 100); got != 1 {
		t.Fatalf("expected minimum 1, got=%d", got)
	}
}
