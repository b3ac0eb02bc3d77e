package postgres

import (
	"github.com/epl-data/xreflink/internal/domain/xref"
)

type canonicalTeamModel struct {
	TeamID string `db:"team_id"`
	Name   string `db:"team_name"`
}

type providerPlayerModel struct {
	NativeID  string `db:"native_id"`
	Name      string `db:"player_name"`
	TeamLabel string `db:"team_label"`
	Position  string `db:"position"`
}

type teamLabelModel struct {
	Label     string `db:"team_label"`
	ForeignID string `db:"foreign_id"`
}

type teamXrefInsertModel struct {
	Source        string `db:"source"`
	ForeignLabel  string `db:"foreign_team_label"`
	ForeignTeamID string `db:"foreign_team_id"`
	TeamID        string `db:"canonical_team_id"`
	TeamName      string `db:"canonical_team_name"`
}

func newTeamXrefInsertModel(source string, entry xref.TeamEntry) teamXrefInsertModel {
	return teamXrefInsertModel{
		Source:        source,
		ForeignLabel:  entry.ForeignLabel,
		ForeignTeamID: entry.ForeignTeamID,
		TeamID:        entry.TeamID,
		TeamName:      entry.TeamName,
	}
}

type playerXrefInsertModel struct {
	XrefID       string  `db:"canonical_player_id"`
	Source       string  `db:"source"`
	SourceID     string  `db:"source_player_id"`
	SourceName   string  `db:"source_name"`
	Name         string  `db:"canonical_name"`
	SourceTeamID string  `db:"source_team_id"`
	TeamID       string  `db:"canonical_team_id"`
	Method       string  `db:"method"`
	Confidence   float64 `db:"confidence"`
	Debug        string  `db:"debug"`
}

func newPlayerXrefInsertModel(source string, entry xref.PlayerEntry) playerXrefInsertModel {
	return playerXrefInsertModel{
		XrefID:       entry.XrefID,
		Source:       source,
		SourceID:     entry.SourceID,
		SourceName:   entry.SourceName,
		Name:         entry.Name,
		SourceTeamID: entry.SourceTeamID,
		TeamID:       entry.TeamID,
		Method:       string(entry.Method),
		Confidence:   entry.Confidence,
		Debug:        entry.Debug,
	}
}

type unmatchedInsertModel struct {
	Source        string  `db:"source"`
	SourceID      string  `db:"source_player_id"`
	RawName       string  `db:"raw_name"`
	RawTeam       string  `db:"raw_team"`
	Reason        string  `db:"reason"`
	BestCandidate string  `db:"best_candidate"`
	BestScore     float64 `db:"best_score"`
	Debug         string  `db:"debug"`
}

func newUnmatchedInsertModel(source string, rec xref.UnmatchedRecord) unmatchedInsertModel {
	return unmatchedInsertModel{
		Source:        source,
		SourceID:      rec.SourceID,
		RawName:       rec.RawName,
		RawTeam:       rec.RawTeam,
		Reason:        string(rec.Reason),
		BestCandidate: rec.BestCandidate,
		BestScore:     rec.BestScore,
		Debug:         rec.Debug,
	}
}

type methodCountModel struct {
	Method string `db:"method"`
	Count  int    `db:"n"`
}
