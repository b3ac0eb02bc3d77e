package matching

import "sort"

// Index buckets candidates by canonical team id for blocking. The
// zero team id never forms a bucket, so unresolved candidates are only
// reachable through All. Read-only after NewIndex returns.
type Index struct {
	buckets map[string][]Candidate
	all     []Candidate
}

// NewIndex builds the blocking index. Candidate order inside each
// bucket follows the input order, which callers keep deterministic.
func NewIndex(candidates []Candidate) *Index {
	idx := &Index{
		buckets: make(map[string][]Candidate),
		all:     candidates,
	}
	for _, c := range candidates {
		if c.TeamID == "" {
			continue
		}
		idx.buckets[c.TeamID] = append(idx.buckets[c.TeamID], c)
	}
	return idx
}

// Bucket returns the candidates sharing a canonical team id. The
// returned slice is shared; callers must not mutate it.
func (i *Index) Bucket(teamID string) []Candidate {
	if teamID == "" {
		return nil
	}
	return i.buckets[teamID]
}

// All returns every candidate, bucketed or not.
func (i *Index) All() []Candidate { return i.all }

// Teams lists the bucketed team ids in sorted order.
func (i *Index) Teams() []string {
	out := make([]string, 0, len(i.buckets))
	for id := range i.buckets {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len reports the total candidate count.
func (i *Index) Len() int { return len(i.all) }
