package xref

import "fmt"

// Method records how a player match was produced.
type Method string

const (
	MethodExact         Method = "exact_norm_same_team"
	MethodExactTieBreak Method = "exact_norm_same_team_tiebreak"
	MethodFuzzyStrict   Method = "fuzzy_strict_same_team"
	MethodFuzzy         Method = "fuzzy_same_team"
	MethodGlobal        Method = "global"
)

// Reason explains why a target stayed unmatched.
type Reason string

const (
	ReasonNoTeamCandidates Reason = "no_team_candidates"
	ReasonLowScore         Reason = "low_score"
)

// TeamEntry maps one provider team label to a canonical team. Source
// is stamped by the link run; resolution itself is source-agnostic.
type TeamEntry struct {
	Source        string `json:"source,omitempty"`
	ForeignLabel  string `json:"foreign_team_label"`
	ForeignTeamID string `json:"foreign_team_id,omitempty"`
	TeamID        string `json:"canonical_team_id"`
	TeamName      string `json:"canonical_team_name"`
}

func (e TeamEntry) Validate() error {
	if e.ForeignLabel == "" {
		return fmt.Errorf("team entry foreign label is required")
	}
	if e.TeamID == "" {
		return fmt.Errorf("team entry canonical team id is required")
	}

	return nil
}

// PlayerEntry maps one provider player to a canonical player identity.
// XrefID is minted only when a match is accepted.
type PlayerEntry struct {
	XrefID       string  `json:"canonical_player_id"`
	Source       string  `json:"source"`
	SourceID     string  `json:"source_player_id"`
	SourceName   string  `json:"source_name"`
	Name         string  `json:"canonical_name"`
	SourceTeamID string  `json:"source_team_id,omitempty"`
	TeamID       string  `json:"canonical_team_id"`
	Method       Method  `json:"method"`
	Confidence   float64 `json:"confidence"`
	Debug        string  `json:"debug,omitempty"`
}

func (e PlayerEntry) Validate() error {
	if e.XrefID == "" {
		return fmt.Errorf("player entry xref id is required")
	}
	if e.SourceID == "" {
		return fmt.Errorf("player entry source player id is required")
	}
	if e.Method == "" {
		return fmt.Errorf("player entry method is required")
	}
	if e.Confidence < 0 || e.Confidence > 100 {
		return fmt.Errorf("player entry confidence %f out of range", e.Confidence)
	}

	return nil
}

// UnmatchedRecord is a diagnostic row for a target no candidate
// cleared the thresholds for. Never joined downstream.
type UnmatchedRecord struct {
	Source        string  `json:"source"`
	SourceID      string  `json:"source_player_id"`
	RawName       string  `json:"raw_name"`
	RawTeam       string  `json:"raw_team"`
	Reason        Reason  `json:"reason"`
	BestCandidate string  `json:"best_candidate,omitempty"`
	BestScore     float64 `json:"best_score,omitempty"`
	Debug         string  `json:"debug,omitempty"`
}

// Summary aggregates one link run for logging and the report export.
// Teams and DroppedLabels count the named source; the candidate side
// is reported separately so neither count overstates its source.
type Summary struct {
	Source           string         `json:"source"`
	Teams            int            `json:"teams"`
	DroppedLabels    int            `json:"dropped_labels"`
	CandidateTeams   int            `json:"candidate_teams"`
	CandidateDropped int            `json:"candidate_dropped_labels"`
	Targets          int            `json:"targets"`
	Matched          int            `json:"matched"`
	Unmatched        int            `json:"unmatched"`
	ByMethod         map[Method]int `json:"by_method"`
}

// UnmatchedRatio is the share of targets that stayed unmatched.
// Operators alert on this, not on individual unmatched rows.
func (s Summary) UnmatchedRatio() float64 {
	if s.Targets == 0 {
		return 0
	}
	return float64(s.Unmatched) / float64(s.Targets)
}
