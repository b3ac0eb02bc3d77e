package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Source describes where a provider's player rows and team labels live.
// Column fields are SQL expressions, so casts and concatenations are
// allowed (for example "id::text").
type Source struct {
	Name           string
	Table          string
	IDColumn       string
	NameColumn     string
	TeamColumn     string
	PositionColumn string

	// Team labels may come from a different table than the player rows.
	// Empty values fall back to Table / TeamColumn.
	LabelTable    string
	LabelColumn   string
	LabelIDColumn string
}

func (s Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if s.Table == "" {
		return fmt.Errorf("source %s: table is required", s.Name)
	}
	if s.IDColumn == "" || s.NameColumn == "" || s.TeamColumn == "" {
		return fmt.Errorf("source %s: id, name and team columns are required", s.Name)
	}

	return nil
}

// Labels returns the table and columns team labels are read from,
// applying the player-table fallbacks.
func (s Source) Labels() (table, labelColumn, idColumn string) {
	table, labelColumn, idColumn = s.LabelTable, s.LabelColumn, s.LabelIDColumn
	if table == "" {
		table = s.Table
	}
	if labelColumn == "" {
		labelColumn = s.TeamColumn
	}
	return table, labelColumn, idColumn
}

// BuiltinSources are the provider catalogs this pipeline ships with.
func BuiltinSources() map[string]Source {
	return map[string]Source{
		"understat": {
			Name:           "understat",
			Table:          "players",
			IDColumn:       "id::text",
			NameColumn:     "player_name",
			TeamColumn:     "team_title",
			PositionColumn: "position",
		},
		"fbref": {
			Name:           "fbref",
			Table:          "player_standard",
			IDColumn:       "player_id::text",
			NameColumn:     "player_name",
			TeamColumn:     "team_name",
			PositionColumn: "pos",
			LabelTable:     "team_standard",
			LabelColumn:    "team_name",
			LabelIDColumn:  "team_id::text",
		},
		"fpl": {
			Name:           "fpl",
			Table:          "fpl_elements",
			IDColumn:       "id::text",
			NameColumn:     "first_name || ' ' || second_name",
			TeamColumn:     "team_name",
			PositionColumn: "position",
			LabelIDColumn:  "team::text",
		},
	}
}

// SourceByName looks up a built-in source spec.
func SourceByName(name string) (Source, error) {
	sources := BuiltinSources()
	src, ok := sources[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		known := make([]string, 0, len(sources))
		for k := range sources {
			known = append(known, k)
		}
		sort.Strings(known)
		return Source{}, fmt.Errorf("unknown source %q, known sources: %s", name, strings.Join(known, ", "))
	}
	return src, nil
}
