package catalog

import "context"

// TeamReader supplies the authoritative canonical team catalog.
type TeamReader interface {
	ListTeams(ctx context.Context) ([]Team, error)
}

// ProviderReader supplies one provider's player rows and its distinct
// team labels.
type ProviderReader interface {
	ListPlayers(ctx context.Context, src Source) ([]Player, error)
	ListTeamLabels(ctx context.Context, src Source) ([]TeamLabel, error)
}
