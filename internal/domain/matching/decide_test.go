package matching

import (
	"reflect"
	"strings"
	"testing"

	"github.com/epl-data/xreflink/internal/domain/catalog"
	"github.com/epl-data/xreflink/internal/domain/xref"
	"github.com/epl-data/xreflink/internal/platform/similarity"
)

func fixtureTeams() []catalog.Team {
	return []catalog.Team{
		{TeamID: "t-liv", Name: "Liverpool"},
		{TeamID: "t-mci", Name: "Manchester City"},
		{TeamID: "t-mun", Name: "Manchester United"},
		{TeamID: "t-wol", Name: "Wolverhampton Wanderers"},
	}
}

func fixtureLabels() []catalog.TeamLabel {
	return []catalog.TeamLabel{
		{Label: "Liverpool", ForeignID: "87"},
		{Label: "Manchester City", ForeignID: "88"},
		{Label: "Manchester United", ForeignID: "89"},
		{Label: "Wolves", ForeignID: "90"},
		{Label: "Real Madrid", ForeignID: "91"},
	}
}

func fixturePlayers() []catalog.Player {
	return []catalog.Player{
		{NativeID: "619", Name: "Mohamed Salah", TeamLabel: "Liverpool", Position: "F"},
		{NativeID: "500", Name: "Diogo Jota", TeamLabel: "Liverpool", Position: "F"},
		{NativeID: "101", Name: "James Wilson", TeamLabel: "Manchester United", Position: "GK"},
		{NativeID: "102", Name: "James Wilson", TeamLabel: "Manchester United", Position: "DEF"},
		{NativeID: "200", Name: "Erling Haaland", TeamLabel: "Manchester City", Position: "F"},
		{NativeID: "301", Name: "Raul Jimenez", TeamLabel: "Wolves", Position: "F"},
		{NativeID: "600", Name: "Vinicius Junior", TeamLabel: "Real Madrid", Position: "F"},
	}
}

func newFixture(t *testing.T) (*similarity.Scorer, *TeamResolution, *Index) {
	t.Helper()

	scorer := newScorer(t)
	res, err := ResolveTeams(fixtureTeams(), fixtureLabels(), catalog.DefaultAliases(), scorer, DefaultThresholds().Resolver)
	if err != nil {
		t.Fatalf("resolve teams: %v", err)
	}
	return scorer, res, NewIndex(NewCandidates(fixturePlayers(), res, scorer))
}

func decideFor(t *testing.T, p catalog.Player) Decision {
	t.Helper()

	scorer, res, idx := newFixture(t)
	return Decide(NewTarget(p, res, scorer), idx, scorer, DefaultThresholds())
}

func TestDecideExactSameTeam(t *testing.T) {
	t.Parallel()

	d := decideFor(t, catalog.Player{NativeID: "u1", Name: "Mohamed Salah", TeamLabel: "Liverpool"})
	if !d.Matched {
		t.Fatalf("expected a match, got reason %q", d.Reason)
	}
	if d.Method != xref.MethodExact {
		t.Fatalf("method = %q, want %q", d.Method, xref.MethodExact)
	}
	if d.Confidence != 100.0 {
		t.Fatalf("confidence = %v, want 100", d.Confidence)
	}
	if d.Candidate.Player.NativeID != "619" || d.Candidate.TeamID != "t-liv" {
		t.Fatalf("unexpected candidate: %+v", d.Candidate)
	}
}

func TestDecideExactTieBreakByPosition(t *testing.T) {
	t.Parallel()

	// The short code resolves through the alias table, so the exact
	// tier still fires even though no candidate is labeled "MUN".
	d := decideFor(t, catalog.Player{NativeID: "u2", Name: "James Wilson", TeamLabel: "MUN", Position: "DEF"})
	if !d.Matched || d.Method != xref.MethodExactTieBreak {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.Confidence != 99.0 {
		t.Fatalf("confidence = %v, want 99", d.Confidence)
	}
	if d.Candidate.Player.NativeID != "102" {
		t.Fatalf("tie break picked %q, want the DEF entry", d.Candidate.Player.NativeID)
	}

	d = decideFor(t, catalog.Player{NativeID: "u3", Name: "James Wilson", TeamLabel: "Manchester United", Position: "Defender"})
	if d.Candidate.Player.NativeID != "102" {
		t.Fatalf("position prefix should match Defender to DEF, got %q", d.Candidate.Player.NativeID)
	}
}

func TestDecideExactTieBreakWithoutPosition(t *testing.T) {
	t.Parallel()

	d := decideFor(t, catalog.Player{NativeID: "u4", Name: "James Wilson", TeamLabel: "Manchester United"})
	if !d.Matched || d.Method != xref.MethodExactTieBreak {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.Candidate.Player.NativeID != "101" {
		t.Fatalf("tie break picked %q, want the first catalog entry", d.Candidate.Player.NativeID)
	}
}

func TestDecideDiacriticsFoldToExact(t *testing.T) {
	t.Parallel()

	d := decideFor(t, catalog.Player{NativeID: "u5", Name: "Raúl Jiménez", TeamLabel: "Wolverhampton Wanderers"})
	if !d.Matched || d.Method != xref.MethodExact {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.Confidence < 95 {
		t.Fatalf("confidence = %v, want at least 95", d.Confidence)
	}
	if d.Candidate.Player.NativeID != "301" {
		t.Fatalf("unexpected candidate: %+v", d.Candidate.Player)
	}
}

func TestDecideFuzzyStrictSameTeam(t *testing.T) {
	t.Parallel()

	d := decideFor(t, catalog.Player{NativeID: "u6", Name: "Mo Salah", TeamLabel: "Liverpool"})
	if !d.Matched || d.Method != xref.MethodFuzzyStrict {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.Candidate.Player.NativeID != "619" {
		t.Fatalf("unexpected candidate: %+v", d.Candidate.Player)
	}
	if d.Confidence < 97 || d.Confidence > 100 {
		t.Fatalf("confidence = %v, want within the strict band", d.Confidence)
	}
	if !strings.Contains(d.Debug, "base_best_on='") {
		t.Fatalf("debug = %q", d.Debug)
	}
}

func TestDecideFuzzySameTeam(t *testing.T) {
	t.Parallel()

	d := decideFor(t, catalog.Player{NativeID: "u7", Name: "Diogo Jota Silva", TeamLabel: "Liverpool"})
	if !d.Matched || d.Method != xref.MethodFuzzy {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.Candidate.Player.NativeID != "500" || d.Candidate.TeamID != "t-liv" {
		t.Fatalf("unexpected candidate: %+v", d.Candidate)
	}
	if d.Confidence < 84 || d.Confidence >= 97 {
		t.Fatalf("confidence = %v, want within the fuzzy band", d.Confidence)
	}
	if !strings.Contains(d.Debug, "base_best_on='diogo jota'") {
		t.Fatalf("debug = %q", d.Debug)
	}
}

func TestDecideGlobalFallback(t *testing.T) {
	t.Parallel()

	// "Real Madrid" never resolves to a canonical team, so the bucket
	// is empty and only the unblocked pool can produce the match.
	d := decideFor(t, catalog.Player{NativeID: "u8", Name: "Vinicius Junior", TeamLabel: "Real Madrid"})
	if !d.Matched || d.Method != xref.MethodGlobal {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.Candidate.Player.NativeID != "600" {
		t.Fatalf("unexpected candidate: %+v", d.Candidate.Player)
	}
	if d.Confidence < 88 {
		t.Fatalf("confidence = %v, want at least the global threshold", d.Confidence)
	}
}

func TestDecideUnmatchedNoTeamCandidates(t *testing.T) {
	t.Parallel()

	d := decideFor(t, catalog.Player{NativeID: "u9", Name: "Unknown Midfielder", TeamLabel: "Real Sociedad"})
	if d.Matched {
		t.Fatalf("expected no match, got %+v", d)
	}
	if d.Reason != xref.ReasonNoTeamCandidates {
		t.Fatalf("reason = %q, want %q", d.Reason, xref.ReasonNoTeamCandidates)
	}
	if d.BestScore <= 0 || d.BestScore >= DefaultThresholds().Global {
		t.Fatalf("best score = %v, want recorded and below the global threshold", d.BestScore)
	}
	if d.BestName == "" {
		t.Fatalf("expected the nearest candidate recorded for diagnostics")
	}
}

func TestDecideUnmatchedLowScore(t *testing.T) {
	t.Parallel()

	d := decideFor(t, catalog.Player{NativeID: "u10", Name: "Bukayo Saka", TeamLabel: "Liverpool"})
	if d.Matched {
		t.Fatalf("expected no match, got %+v", d)
	}
	if d.Reason != xref.ReasonLowScore {
		t.Fatalf("reason = %q, want %q", d.Reason, xref.ReasonLowScore)
	}
	if d.BestScore <= 0 || d.BestScore >= DefaultThresholds().Global {
		t.Fatalf("best score = %v, want recorded and below the global threshold", d.BestScore)
	}
}

func TestDecideEmptyNameUnmatched(t *testing.T) {
	t.Parallel()

	d := decideFor(t, catalog.Player{NativeID: "u11", Name: "???", TeamLabel: "Liverpool"})
	if d.Matched {
		t.Fatalf("expected no match, got %+v", d)
	}
	if d.Reason != xref.ReasonLowScore {
		t.Fatalf("reason = %q, want %q", d.Reason, xref.ReasonLowScore)
	}
	if d.BestName != "" || d.BestScore != 0 {
		t.Fatalf("no diagnostics expected for an empty name, got %+v", d)
	}
}

func TestDecideDeterministic(t *testing.T) {
	t.Parallel()

	targets := []catalog.Player{
		{NativeID: "u1", Name: "Mohamed Salah", TeamLabel: "Liverpool"},
		{NativeID: "u6", Name: "Mo Salah", TeamLabel: "Liverpool"},
		{NativeID: "u7", Name: "Diogo Jota Silva", TeamLabel: "Liverpool"},
		{NativeID: "u9", Name: "Unknown Midfielder", TeamLabel: "Real Sociedad"},
	}

	run := func() []Decision {
		scorer, res, idx := newFixture(t)
		out := make([]Decision, 0, len(targets))
		for _, p := range targets {
			out = append(out, Decide(NewTarget(p, res, scorer), idx, scorer, DefaultThresholds()))
		}
		return out
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decisions differ between identical runs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDecideTighterThresholdsDegrade(t *testing.T) {
	t.Parallel()

	scorer, res, idx := newFixture(t)
	target := NewTarget(catalog.Player{NativeID: "u7", Name: "Diogo Jota Silva", TeamLabel: "Liverpool"}, res, scorer)

	loose := DefaultThresholds()
	if d := Decide(target, idx, scorer, loose); d.Method != xref.MethodFuzzy {
		t.Fatalf("loose thresholds: %+v", d)
	}

	blocked := loose
	blocked.TeamBlock = 0.96
	if d := Decide(target, idx, scorer, blocked); d.Method != xref.MethodGlobal {
		t.Fatalf("raising the team threshold should fall through to global: %+v", d)
	}

	tight := blocked
	tight.Global = 0.96
	d := Decide(target, idx, scorer, tight)
	if d.Matched || d.Reason != xref.ReasonLowScore {
		t.Fatalf("raising both thresholds should leave the target unmatched: %+v", d)
	}
	if d.BestScore <= 0 {
		t.Fatalf("best score should still be recorded, got %v", d.BestScore)
	}
}
