package memory

import (
	"context"
	"sync"

	"github.com/epl-data/xreflink/internal/domain/catalog"
)

// CatalogRepository is an in-memory catalog source for tests and
// rehearsal runs.
type CatalogRepository struct {
	mu              sync.RWMutex
	teams           []catalog.Team
	playersBySource map[string][]catalog.Player
	labelsBySource  map[string][]catalog.TeamLabel
}

func NewCatalogRepository(teams []catalog.Team) *CatalogRepository {
	return &CatalogRepository{
		teams:           append([]catalog.Team(nil), teams...),
		playersBySource: make(map[string][]catalog.Player),
		labelsBySource:  make(map[string][]catalog.TeamLabel),
	}
}

func (r *CatalogRepository) SetPlayers(source string, players []catalog.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playersBySource[source] = append([]catalog.Player(nil), players...)
}

func (r *CatalogRepository) SetTeamLabels(source string, labels []catalog.TeamLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.labelsBySource[source] = append([]catalog.TeamLabel(nil), labels...)
}

func (r *CatalogRepository) ListTeams(_ context.Context) ([]catalog.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]catalog.Team(nil), r.teams...), nil
}

func (r *CatalogRepository) ListPlayers(_ context.Context, src catalog.Source) ([]catalog.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]catalog.Player(nil), r.playersBySource[src.Name]...), nil
}

// ListTeamLabels returns the labels registered for the source, or the
// distinct labels of its players when none were registered explicitly.
func (r *CatalogRepository) ListTeamLabels(_ context.Context, src catalog.Source) ([]catalog.TeamLabel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if labels, ok := r.labelsBySource[src.Name]; ok {
		return append([]catalog.TeamLabel(nil), labels...), nil
	}

	seen := make(map[string]struct{})
	var out []catalog.TeamLabel
	for _, p := range r.playersBySource[src.Name] {
		if p.TeamLabel == "" {
			continue
		}
		if _, dup := seen[p.TeamLabel]; dup {
			continue
		}
		seen[p.TeamLabel] = struct{}{}
		out = append(out, catalog.TeamLabel{Label: p.TeamLabel})
	}

	return out, nil
}
