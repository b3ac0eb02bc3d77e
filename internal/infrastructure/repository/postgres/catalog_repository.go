package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/epl-data/xreflink/internal/domain/catalog"
	qb "github.com/epl-data/xreflink/internal/platform/querybuilder"
)

// CatalogRepository reads the canonical team catalog and the provider
// player catalogs. All reads are immutable snapshots for one run.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListTeams(ctx context.Context) ([]catalog.Team, error) {
	query, args, err := qb.Select("team_id::text AS team_id", "team_name").
		From("teams").
		OrderBy("team_name", "team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select canonical teams query: %w", err)
	}

	var rows []canonicalTeamModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select canonical teams: %w", err)
	}

	out := make([]catalog.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, catalog.Team{
			TeamID: row.TeamID,
			Name:   strings.TrimSpace(row.Name),
		})
	}

	return out, nil
}

func (r *CatalogRepository) ListPlayers(ctx context.Context, src catalog.Source) ([]catalog.Player, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("invalid source spec: %w", err)
	}

	positionColumn := "''"
	if src.PositionColumn != "" {
		positionColumn = "COALESCE(" + src.PositionColumn + ", '')"
	}

	query, args, err := qb.Select(
		src.IDColumn+" AS native_id",
		src.NameColumn+" AS player_name",
		"COALESCE("+src.TeamColumn+", '') AS team_label",
		positionColumn+" AS position",
	).
		From(src.Table).
		Where(qb.Expr(src.NameColumn + " IS NOT NULL")).
		OrderBy("native_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query source=%s: %w", src.Name, err)
	}

	var rows []providerPlayerModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players source=%s: %w", src.Name, err)
	}

	out := make([]catalog.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, catalog.Player{
			NativeID:  row.NativeID,
			Name:      strings.TrimSpace(row.Name),
			TeamLabel: strings.TrimSpace(row.TeamLabel),
			Position:  strings.TrimSpace(row.Position),
		})
	}

	return out, nil
}

func (r *CatalogRepository) ListTeamLabels(ctx context.Context, src catalog.Source) ([]catalog.TeamLabel, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("invalid source spec: %w", err)
	}

	table, labelColumn, idColumn := src.Labels()

	// MAX over the foreign id keeps one row per label even when a
	// provider reuses a label across its own team ids.
	foreignID := "'' AS foreign_id"
	if idColumn != "" {
		foreignID = "MAX(" + idColumn + ") AS foreign_id"
	}

	query, args, err := qb.Select(labelColumn+" AS team_label", foreignID).
		From(table).
		Where(qb.Expr(labelColumn + " IS NOT NULL")).
		GroupBy(labelColumn).
		OrderBy("team_label").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team labels query source=%s: %w", src.Name, err)
	}

	var rows []teamLabelModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team labels source=%s: %w", src.Name, err)
	}

	out := make([]catalog.TeamLabel, 0, len(rows))
	for _, row := range rows {
		label := strings.TrimSpace(row.Label)
		if label == "" {
			continue
		}
		out = append(out, catalog.TeamLabel{
			Label:     label,
			ForeignID: row.ForeignID,
		})
	}

	return out, nil
}
