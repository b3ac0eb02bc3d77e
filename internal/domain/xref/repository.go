package xref

import "context"

// Store persists the cross-reference output. Both tables are written
// as full-replace snapshots per source and run; nothing is incremental.
type Store interface {
	ReplaceTeams(ctx context.Context, source string, entries []TeamEntry) error
	ReplacePlayers(ctx context.Context, source string, entries []PlayerEntry, unmatched []UnmatchedRecord) error
	MethodCounts(ctx context.Context, source string) (map[Method]int, error)
}
