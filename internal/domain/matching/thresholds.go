package matching

import "fmt"

// Thresholds are the acceptance cut-offs on the [0,1] score scale.
type Thresholds struct {
	// TeamBlock accepts a fuzzy match inside the target's team bucket.
	TeamBlock float64
	// Strict upgrades a team-bucket acceptance to the strict method tag.
	Strict float64
	// Global accepts a fuzzy match from the unblocked candidate pool.
	Global float64
	// Resolver accepts a fuzzy team-label match during team resolution.
	Resolver float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		TeamBlock: 0.84,
		Strict:    0.97,
		Global:    0.88,
		Resolver:  0.90,
	}
}

func (t Thresholds) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"team block", t.TeamBlock},
		{"strict", t.Strict},
		{"global", t.Global},
		{"resolver", t.Resolver},
	} {
		if v.value < 0 || v.value > 1 {
			return fmt.Errorf("%s threshold %f out of range [0,1]", v.name, v.value)
		}
	}

	return nil
}
