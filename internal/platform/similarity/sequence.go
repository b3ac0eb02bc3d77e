package similarity

// SequenceBackend is the degraded fallback: every metric collapses to
// the plain sequence-alignment ratio and no phonetic codes are
// produced. Matching still works, just with weaker discrimination.
type SequenceBackend struct{}

func (SequenceBackend) Name() string { return BackendSequence }

func (SequenceBackend) TokenSetRatio(a, b string) float64 {
	return sequenceRatio(a, b)
}

func (SequenceBackend) TokenSortRatio(a, b string) float64 {
	return sequenceRatio(a, b)
}

func (SequenceBackend) WeightedRatio(a, b string) float64 {
	return sequenceRatio(a, b)
}

func (SequenceBackend) PrefixRatio(a, b string) float64 {
	return sequenceRatio(a, b)
}

func (SequenceBackend) PhoneticCode(string) string { return "" }

func sequenceRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return ratio(a, b)
}
