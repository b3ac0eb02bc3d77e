package catalog

import (
	"os"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/epl-data/xreflink/internal/platform/textnorm"
)

// AliasTable maps provider team spellings to canonical labels before
// normalization runs. ShortCodes are keyed by upper-case code; Aliases
// are keyed by the textnorm.Normalize form of the alias.
type AliasTable struct {
	ShortCodes map[string]string
	Aliases    map[string]string
}

// Resolve maps a raw team label through the alias table: short code
// first, then alias, otherwise the label is returned unchanged.
func (a AliasTable) Resolve(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if name, ok := a.ShortCodes[strings.ToUpper(trimmed)]; ok {
		return name
	}
	if name, ok := a.Aliases[textnorm.Normalize(trimmed)]; ok {
		return name
	}
	return trimmed
}

// Normalize resolves aliases and then canonicalizes the label text.
func (a AliasTable) Normalize(raw string) string {
	return textnorm.Normalize(a.Resolve(raw))
}

// DefaultAliases covers the short codes and alternate spellings seen
// across the Premier League providers.
func DefaultAliases() AliasTable {
	return AliasTable{
		ShortCodes: map[string]string{
			"ARS": "Arsenal",
			"AVL": "Aston Villa",
			"BOU": "Bournemouth",
			"BRE": "Brentford",
			"BHA": "Brighton",
			"BUR": "Burnley",
			"CHE": "Chelsea",
			"CRY": "Crystal Palace",
			"EVE": "Everton",
			"FUL": "Fulham",
			"IPS": "Ipswich Town",
			"LEE": "Leeds",
			"LEI": "Leicester City",
			"LIV": "Liverpool",
			"MCI": "Manchester City",
			"MUN": "Manchester United",
			"NEW": "Newcastle United",
			"NFO": "Nottingham Forest",
			"NOR": "Norwich City",
			"SHE": "Sheffield United",
			"SOU": "Southampton",
			"SUN": "Sunderland",
			"TOT": "Tottenham",
			"WAT": "Watford",
			"WHU": "West Ham",
			"WOL": "Wolverhampton Wanderers",
		},
		Aliases: map[string]string{
			"spurs":                 "Tottenham",
			"wolves":                "Wolverhampton Wanderers",
			"man city":              "Manchester City",
			"man utd":               "Manchester United",
			"manchester utd":        "Manchester United",
			"brighton hove albion":  "Brighton",
			"forest":                "Nottingham Forest",
			"nott ham forest":       "Nottingham Forest",
			"west ham united":       "West Ham",
			"leeds united":          "Leeds",
			"newcastle utd":         "Newcastle United",
		},
	}
}

type aliasFile struct {
	ShortCodes map[string]string `json:"short_codes"`
	Aliases    map[string]string `json:"aliases"`
}

// LoadAliases reads extra alias mappings from a JSON file and overlays
// them on the defaults. Keys are canonicalized the same way the default
// table is.
func LoadAliases(path string) (AliasTable, error) {
	table := DefaultAliases()
	if path == "" {
		return table, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return AliasTable{}, crerr.Wrapf(err, "read alias file %s", path)
	}

	var parsed aliasFile
	if err := sonic.Unmarshal(raw, &parsed); err != nil {
		return AliasTable{}, crerr.Wrapf(err, "decode alias file %s", path)
	}

	for code, name := range parsed.ShortCodes {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" && name != "" {
			table.ShortCodes[code] = name
		}
	}
	for alias, name := range parsed.Aliases {
		if alias = textnorm.Normalize(alias); alias != "" && name != "" {
			table.Aliases[alias] = name
		}
	}

	return table, nil
}
