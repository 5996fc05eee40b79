package chainbench

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/gridtokenx/chainbench/log"
)

// MixEntry pairs an operation kind with its selection weight.
type MixEntry struct {
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight"`
}

// MixSelector picks operation kinds by walking cumulative weights in
// entry order. A draw landing past the cumulative total, possible when
// the weights sum below 1, falls back to the first kind.
type MixSelector struct {
	kinds []string
	cum   []float64
}

// NewMixSelector builds a selector from the entries in iteration order.
func NewMixSelector(entries []MixEntry) (*MixSelector, error) {
	if len(entries) == 0 {
		return nil, errors.New("operation mix is empty")
	}
	s := &MixSelector{
		kinds: make([]string, 0, len(entries)),
		cum:   make([]float64, 0, len(entries)),
	}
	total := 0.0
	for _, e := range entries {
		if e.Weight < 0 {
			return nil, fmt.Errorf("negative weight %f for operation %s", e.Weight, e.Kind)
		}
		total += e.Weight
		s.kinds = append(s.kinds, e.Kind)
		s.cum = append(s.cum, total)
	}
	if math.Abs(total-1.0) > 0.001 {
		log.Warningf("operation mix weights sum to %f, expected 1.0", total)
	}
	return s, nil
}

// Pick selects a kind using the caller's random source.
func (s *MixSelector) Pick(r *rand.Rand) string {
	u := r.Float64()
	for i, c := range s.cum {
		if u < c {
			return s.kinds[i]
		}
	}
	return s.kinds[0]
}

// deriveMix turns the write ratio shortcut into an explicit mix.
func deriveMix(w float64) []MixEntry {
	if w < 0 {
		w = 0
	} else if w > 1 {
		w = 1
	}
	return []MixEntry{
		{Kind: OpUpdate, Weight: w},
		{Kind: OpRead, Weight: 1 - w},
	}
}
