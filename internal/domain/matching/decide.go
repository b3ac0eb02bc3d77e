package matching

import (
	"fmt"
	"strings"

	"github.com/epl-data/xreflink/internal/domain/xref"
	"github.com/epl-data/xreflink/internal/platform/similarity"
)

// Decision is the outcome for one target. Either Matched is set and
// Candidate, Method and Confidence carry the accepted link, or Reason
// explains why nothing was accepted.
type Decision struct {
	Matched    bool
	Candidate  Candidate
	Method     xref.Method
	Confidence float64
	Debug      string

	Reason    xref.Reason
	BestName  string
	BestScore float64
}

// Decide runs the tiered match policy for one target: exact normalized
// name inside the team bucket, then fuzzy inside the bucket, then the
// full pool. It never fails; a target that clears no tier comes back
// unmatched with a reason.
func Decide(target Target, index *Index, scorer *similarity.Scorer, th Thresholds) Decision {
	bucket := index.Bucket(target.TeamID)

	if len(bucket) > 0 {
		if target.Identity.Norm != "" {
			var exact []Candidate
			for _, c := range bucket {
				if c.Identity.Norm == target.Identity.Norm {
					exact = append(exact, c)
				}
			}
			if len(exact) == 1 {
				return Decision{
					Matched:    true,
					Candidate:  exact[0],
					Method:     xref.MethodExact,
					Confidence: 100.0,
				}
			}
			if len(exact) > 1 {
				return Decision{
					Matched:    true,
					Candidate:  breakTie(exact, target.Player.Position),
					Method:     xref.MethodExactTieBreak,
					Confidence: 99.0,
				}
			}
		}

		if best, score, variant, ok := pickBest(target, bucket, scorer); ok && score >= th.TeamBlock {
			method := xref.MethodFuzzy
			if score >= th.Strict {
				method = xref.MethodFuzzyStrict
			}
			return Decision{
				Matched:    true,
				Candidate:  best,
				Method:     method,
				Confidence: score * 100,
				Debug:      debugString(variant, score),
			}
		}
	}

	best, score, variant, ok := pickBest(target, index.All(), scorer)
	if ok && score >= th.Global {
		return Decision{
			Matched:    true,
			Candidate:  best,
			Method:     xref.MethodGlobal,
			Confidence: score * 100,
			Debug:      debugString(variant, score),
		}
	}

	reason := xref.ReasonLowScore
	if len(bucket) == 0 {
		reason = xref.ReasonNoTeamCandidates
	}
	d := Decision{Reason: reason}
	if ok && score > 0 {
		d.BestName = best.Player.Name
		d.BestScore = score
		d.Debug = debugString(variant, score)
	}
	return d
}

// pickBest scans candidates in order and keeps the strictly best
// score, so ties resolve to the earliest candidate.
func pickBest(target Target, candidates []Candidate, scorer *similarity.Scorer) (Candidate, float64, string, bool) {
	if len(candidates) == 0 {
		return Candidate{}, 0, "", false
	}
	var (
		best        Candidate
		bestScore   = -1.0
		bestVariant string
	)
	for _, c := range candidates {
		score, variant := scorer.ScoreIdentity(target.Identity, c.Identity)
		if score > bestScore {
			best = c
			bestScore = score
			bestVariant = variant
		}
	}
	return best, bestScore, bestVariant, true
}

// breakTie picks among duplicate exact matches by position prefix,
// falling back to the first candidate in bucket order.
func breakTie(exact []Candidate, position string) Candidate {
	if prefix := positionPrefix(position); prefix != "" {
		for _, c := range exact {
			if positionPrefix(c.Player.Position) == prefix {
				return c
			}
		}
	}
	return exact[0]
}

// positionPrefix reduces a position label to its leading letter, so
// "DEF", "Defender" and "D" all compare equal.
func positionPrefix(position string) string {
	position = strings.TrimSpace(position)
	if position == "" {
		return ""
	}
	return strings.ToUpper(position[:1])
}

func debugString(variant string, score float64) string {
	return fmt.Sprintf("base_best_on='%s', score=%.3f", variant, score)
}
