package similarity

import (
	"github.com/epl-data/xreflink/internal/platform/textnorm"
)

// Blend weights for ScorePair. Hand-tuned against observed catalogs;
// change them and the acceptance thresholds move with them.
const (
	weightTokenSet  = 0.35
	weightWeighted  = 0.25
	weightTokenSort = 0.20
	weightPrefix    = 0.20

	bonusSurname  = 0.05
	bonusInitial  = 0.03
	bonusPhonetic = 0.03
)

// Identity is the precomputed matching form of one raw name. Build it
// once per record and reuse it; everything in it is immutable.
type Identity struct {
	Raw      string
	Norm     string
	First    string
	Surname  string
	Phonetic string
	Variants []string
}

// Scorer blends the backend metrics into one [0,1] score.
type Scorer struct {
	backend Backend
}

func NewScorer(backend Backend) *Scorer {
	return &Scorer{backend: backend}
}

func (s *Scorer) Backend() Backend { return s.backend }

// Identity precomputes the normalized form, variants, surname and
// phonetic code for a raw name.
func (s *Scorer) Identity(raw string) Identity {
	first, _ := textnorm.FirstLast(raw)
	surname := textnorm.Surname(raw)
	return Identity{
		Raw:      raw,
		Norm:     textnorm.Normalize(raw),
		First:    first,
		Surname:  surname,
		Phonetic: s.backend.PhoneticCode(surname),
		Variants: textnorm.Variants(raw),
	}
}

// ScorePair scores two raw strings: both are normalized, an empty side
// scores 0, otherwise the four backend metrics are blended.
func (s *Scorer) ScorePair(a, b string) float64 {
	an, bn := textnorm.Normalize(a), textnorm.Normalize(b)
	if an == "" || bn == "" {
		return 0
	}

	blend := weightTokenSet*s.backend.TokenSetRatio(an, bn) +
		weightWeighted*s.backend.WeightedRatio(an, bn) +
		weightTokenSort*s.backend.TokenSortRatio(an, bn) +
		weightPrefix*s.backend.PrefixRatio(an, bn)

	return clamp01(blend)
}

// ScoreIdentity scores a target against every variant of a candidate,
// keeps the best, then adds surname, initial and phonetic bonuses on
// top, capped at 1.0. The best variant is returned for audit output.
func (s *Scorer) ScoreIdentity(target, candidate Identity) (float64, string) {
	variants := candidate.Variants
	if len(variants) == 0 {
		variants = []string{candidate.Norm}
	}

	best := 0.0
	bestVariant := ""
	for _, v := range variants {
		if sc := s.ScorePair(target.Norm, v); sc > best {
			best = sc
			bestVariant = v
		}
	}

	bonus := 0.0
	if target.Surname != "" && target.Surname == candidate.Surname {
		bonus += bonusSurname
	}
	if target.First != "" && candidate.First != "" && target.First[0] == candidate.First[0] {
		bonus += bonusInitial
	}
	if target.Phonetic != "" && target.Phonetic == candidate.Phonetic {
		bonus += bonusPhonetic
	}

	return clamp01(best + bonus), bestVariant
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
