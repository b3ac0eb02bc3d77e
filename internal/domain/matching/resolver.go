package matching

import (
	"errors"
	"fmt"
	"sort"

	"github.com/epl-data/xreflink/internal/domain/catalog"
	"github.com/epl-data/xreflink/internal/domain/xref"
	"github.com/epl-data/xreflink/internal/platform/similarity"
)

var ErrEmptyTeamCatalog = errors.New("canonical team catalog is empty")

// DroppedLabel is a provider team label that resolved to no canonical
// team. Players under it only surface via the global fallback.
type DroppedLabel struct {
	Label     string
	BestName  string
	BestScore float64
}

// TeamResolution is the materialized team cross-reference for one
// provider: the xref entries plus a lookup from any team label to its
// canonical team. Immutable once built.
type TeamResolution struct {
	Entries []xref.TeamEntry
	Dropped []DroppedLabel

	aliases  catalog.AliasTable
	byNorm   map[string]string
	nameByID map[string]string
}

// TeamID resolves a raw team label to its canonical team id.
func (r *TeamResolution) TeamID(label string) (string, bool) {
	if r == nil {
		return "", false
	}
	id, ok := r.byNorm[r.aliases.Normalize(label)]
	return id, ok
}

// TeamName returns the canonical name for a canonical team id.
func (r *TeamResolution) TeamName(teamID string) string {
	if r == nil {
		return ""
	}
	return r.nameByID[teamID]
}

// ResolveTeams maps a provider's distinct team labels onto the
// canonical team catalog: alias resolution and exact normalized match
// first, then the best similarity score against every canonical name,
// accepted only above the resolver threshold. Ties prefer the
// lexicographically smallest canonical name. Labels that resolve to
// nothing are returned as dropped, never guessed.
func ResolveTeams(
	teams []catalog.Team,
	labels []catalog.TeamLabel,
	aliases catalog.AliasTable,
	scorer *similarity.Scorer,
	threshold float64,
) (*TeamResolution, error) {
	if len(teams) == 0 {
		return nil, ErrEmptyTeamCatalog
	}

	ordered := make([]catalog.Team, 0, len(teams))
	for _, t := range teams {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("invalid canonical team: %w", err)
		}
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].TeamID < ordered[j].TeamID
	})

	res := &TeamResolution{
		aliases:  aliases,
		byNorm:   make(map[string]string, len(teams)+len(labels)),
		nameByID: make(map[string]string, len(teams)),
	}

	type canonical struct {
		team catalog.Team
		norm string
	}
	canonicals := make([]canonical, 0, len(ordered))
	for _, t := range ordered {
		n := aliases.Normalize(t.Name)
		if n == "" {
			continue
		}
		canonicals = append(canonicals, canonical{team: t, norm: n})
		// First in lexicographic order claims the normalized form.
		if _, taken := res.byNorm[n]; !taken {
			res.byNorm[n] = t.TeamID
			res.nameByID[t.TeamID] = t.Name
		}
	}

	// Dedupe on the raw label: distinct spellings that normalize to the
	// same canonical form each keep their own xref row, so every
	// observed label is accounted for as resolved or dropped.
	seenLabels := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, dup := seenLabels[label.Label]; dup {
			continue
		}
		seenLabels[label.Label] = struct{}{}

		n := aliases.Normalize(label.Label)
		if n == "" {
			res.Dropped = append(res.Dropped, DroppedLabel{Label: label.Label})
			continue
		}

		if id, ok := res.byNorm[n]; ok {
			res.Entries = append(res.Entries, xref.TeamEntry{
				ForeignLabel:  label.Label,
				ForeignTeamID: label.ForeignID,
				TeamID:        id,
				TeamName:      res.nameByID[id],
			})
			continue
		}

		best := catalog.Team{}
		bestScore := 0.0
		for _, c := range canonicals {
			if score := scorer.ScorePair(n, c.norm); score > bestScore {
				bestScore = score
				best = c.team
			}
		}
		if best.TeamID != "" && bestScore >= threshold {
			res.byNorm[n] = best.TeamID
			res.Entries = append(res.Entries, xref.TeamEntry{
				ForeignLabel:  label.Label,
				ForeignTeamID: label.ForeignID,
				TeamID:        best.TeamID,
				TeamName:      best.Name,
			})
			continue
		}

		res.Dropped = append(res.Dropped, DroppedLabel{
			Label:     label.Label,
			BestName:  best.Name,
			BestScore: bestScore,
		})
	}

	return res, nil
}
