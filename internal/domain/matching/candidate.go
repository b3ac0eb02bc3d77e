package matching

import (
	"github.com/epl-data/xreflink/internal/domain/catalog"
	"github.com/epl-data/xreflink/internal/platform/similarity"
)

// Candidate is a provider player enriched with its resolved canonical
// team and precomputed name identity. Built once per run and shared
// read-only across workers.
type Candidate struct {
	Player   catalog.Player
	TeamID   string
	TeamName string
	Identity similarity.Identity
}

// Target is a record from the source being linked, carrying the same
// precomputed identity as candidates so scoring never re-derives it.
type Target struct {
	Player   catalog.Player
	TeamID   string
	Identity similarity.Identity
}

// NewCandidates builds the candidate pool from provider players. Team
// labels that did not resolve leave TeamID empty; those candidates
// still participate in the global tier.
func NewCandidates(players []catalog.Player, teams *TeamResolution, scorer *similarity.Scorer) []Candidate {
	out := make([]Candidate, 0, len(players))
	for _, p := range players {
		teamID, _ := teams.TeamID(p.TeamLabel)
		out = append(out, Candidate{
			Player:   p,
			TeamID:   teamID,
			TeamName: teams.TeamName(teamID),
			Identity: scorer.Identity(p.Name),
		})
	}
	return out
}

// NewTarget prepares one source record for matching.
func NewTarget(p catalog.Player, teams *TeamResolution, scorer *similarity.Scorer) Target {
	teamID, _ := teams.TeamID(p.TeamLabel)
	return Target{
		Player:   p,
		TeamID:   teamID,
		Identity: scorer.Identity(p.Name),
	}
}
