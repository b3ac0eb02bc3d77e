// Package similarity scores how likely two player names refer to the
// same person. A Backend supplies the individual string metrics and the
// phonetic encoder; the Scorer blends them and applies bonuses.
package similarity

import (
	"fmt"
	"strings"
)

const (
	BackendToken    = "token"
	BackendSequence = "sequence"
)

// Backend is the set of string metrics the scorer blends. Implementations
// must be stateless and safe for concurrent use; the backend is chosen
// once at startup and never switched mid-run.
type Backend interface {
	Name() string

	// All ratios take already-normalized inputs and return [0,1].
	TokenSetRatio(a, b string) float64
	TokenSortRatio(a, b string) float64
	WeightedRatio(a, b string) float64
	PrefixRatio(a, b string) float64

	// PhoneticCode encodes a surname, or returns "" when the backend
	// has no phonetic capability.
	PhoneticCode(word string) string
}

// NewBackend selects a backend by name. Empty means the full token
// backend; "sequence" is the degraded fallback that only uses a
// sequence-alignment ratio.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendToken:
		return TokenBackend{}, nil
	case BackendSequence:
		return SequenceBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity backend %q", name)
	}
}
