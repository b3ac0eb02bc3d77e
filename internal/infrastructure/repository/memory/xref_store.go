package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/epl-data/xreflink/internal/domain/xref"
)

// XrefStore keeps the cross-reference snapshots in memory. It backs
// tests and dry-run invocations; semantics mirror the Postgres store,
// including full replacement per source.
type XrefStore struct {
	mu                sync.RWMutex
	teamsBySource     map[string][]xref.TeamEntry
	playersBySource   map[string][]xref.PlayerEntry
	unmatchedBySource map[string][]xref.UnmatchedRecord
}

func NewXrefStore() *XrefStore {
	return &XrefStore{
		teamsBySource:     make(map[string][]xref.TeamEntry),
		playersBySource:   make(map[string][]xref.PlayerEntry),
		unmatchedBySource: make(map[string][]xref.UnmatchedRecord),
	}
}

func (s *XrefStore) ReplaceTeams(_ context.Context, source string, entries []xref.TeamEntry) error {
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid team xref entry source=%s: %w", source, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.teamsBySource[source] = append([]xref.TeamEntry(nil), entries...)
	return nil
}

func (s *XrefStore) ReplacePlayers(_ context.Context, source string, entries []xref.PlayerEntry, unmatched []xref.UnmatchedRecord) error {
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid player xref entry source=%s: %w", source, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.playersBySource[source] = append([]xref.PlayerEntry(nil), entries...)
	s.unmatchedBySource[source] = append([]xref.UnmatchedRecord(nil), unmatched...)
	return nil
}

func (s *XrefStore) MethodCounts(_ context.Context, source string) (map[xref.Method]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[xref.Method]int)
	for _, entry := range s.playersBySource[source] {
		out[entry.Method]++
	}

	return out, nil
}

func (s *XrefStore) Teams(source string) []xref.TeamEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]xref.TeamEntry(nil), s.teamsBySource[source]...)
}

func (s *XrefStore) Players(source string) []xref.PlayerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]xref.PlayerEntry(nil), s.playersBySource[source]...)
}

func (s *XrefStore) Unmatched(source string) []xref.UnmatchedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]xref.UnmatchedRecord(nil), s.unmatchedBySource[source]...)
}
