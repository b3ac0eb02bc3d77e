package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/epl-data/xreflink/internal/domain/xref"
	qb "github.com/epl-data/xreflink/internal/platform/querybuilder"
)

// Snapshot tables are created on first write. Upstream catalogs are
// refreshed wholesale each run, so both xref tables are full-replace
// per source and carry no history.
var xrefTableDDL = []string{
	`CREATE TABLE IF NOT EXISTS team_xref (
	source TEXT NOT NULL,
	foreign_team_label TEXT NOT NULL,
	foreign_team_id TEXT NOT NULL DEFAULT '',
	canonical_team_id TEXT NOT NULL,
	canonical_team_name TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_team_xref_source ON team_xref (source)`,
	`CREATE TABLE IF NOT EXISTS player_xref (
	canonical_player_id TEXT NOT NULL,
	source TEXT NOT NULL,
	source_player_id TEXT NOT NULL,
	source_name TEXT NOT NULL,
	canonical_name TEXT NOT NULL,
	source_team_id TEXT NOT NULL DEFAULT '',
	canonical_team_id TEXT NOT NULL,
	method TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	debug TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_player_xref_source_player ON player_xref (source, source_player_id)`,
	`CREATE TABLE IF NOT EXISTS player_xref_unmatched (
	source TEXT NOT NULL,
	source_player_id TEXT NOT NULL,
	raw_name TEXT NOT NULL,
	raw_team TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL,
	best_candidate TEXT NOT NULL DEFAULT '',
	best_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	debug TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_player_xref_unmatched_source ON player_xref_unmatched (source)`,
}

// XrefStore persists the cross-reference snapshots in Postgres.
type XrefStore struct {
	db *sqlx.DB

	ensureOnce sync.Once
	ensureErr  error
}

func NewXrefStore(db *sqlx.DB) *XrefStore {
	return &XrefStore{db: db}
}

func (s *XrefStore) ensureTables(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		for _, ddl := range xrefTableDDL {
			if _, err := s.db.ExecContext(ctx, ddl); err != nil {
				s.ensureErr = fmt.Errorf("bootstrap xref tables: %w", err)
				return
			}
		}
	})
	return s.ensureErr
}

func (s *XrefStore) ReplaceTeams(ctx context.Context, source string, entries []xref.TeamEntry) error {
	if err := s.ensureTables(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace team xref: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.DeleteFrom("team_xref").
		Where(qb.Eq("source", source)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear team xref query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear team xref source=%s: %w", source, err)
	}

	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid team xref entry source=%s: %w", source, err)
		}

		query, args, err := qb.InsertModel("team_xref", newTeamXrefInsertModel(source, entry), "")
		if err != nil {
			return fmt.Errorf("build insert team xref query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert team xref source=%s label=%s: %w", source, entry.ForeignLabel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace team xref tx: %w", err)
	}
	return nil
}

func (s *XrefStore) ReplacePlayers(ctx context.Context, source string, entries []xref.PlayerEntry, unmatched []xref.UnmatchedRecord) error {
	if err := s.ensureTables(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace player xref: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"player_xref", "player_xref_unmatched"} {
		clearQuery, clearArgs, err := qb.DeleteFrom(table).
			Where(qb.Eq("source", source)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build clear %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
			return fmt.Errorf("clear %s source=%s: %w", table, source, err)
		}
	}

	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid player xref entry source=%s: %w", source, err)
		}

		query, args, err := qb.InsertModel("player_xref", newPlayerXrefInsertModel(source, entry), "")
		if err != nil {
			return fmt.Errorf("build insert player xref query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert player xref source=%s player=%s: %w", source, entry.SourceID, err)
		}
	}

	for _, rec := range unmatched {
		query, args, err := qb.InsertModel("player_xref_unmatched", newUnmatchedInsertModel(source, rec), "")
		if err != nil {
			return fmt.Errorf("build insert unmatched query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert unmatched source=%s player=%s: %w", source, rec.SourceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace player xref tx: %w", err)
	}
	return nil
}

func (s *XrefStore) MethodCounts(ctx context.Context, source string) (map[xref.Method]int, error) {
	if err := s.ensureTables(ctx); err != nil {
		return nil, err
	}

	query, args, err := qb.Select("method", "COUNT(*) AS n").
		From("player_xref").
		Where(qb.Eq("source", source)).
		GroupBy("method").
		OrderBy("method").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build method counts query: %w", err)
	}

	var rows []methodCountModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select method counts source=%s: %w", source, err)
	}

	out := make(map[xref.Method]int, len(rows))
	for _, row := range rows {
		out[xref.Method(row.Method)] = row.Count
	}

	return out, nil
}
