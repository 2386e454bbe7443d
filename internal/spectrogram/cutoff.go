package spectrogram

import (
	"fmt"
	"sort"
)

// Cutoff computes the frac-th quantile of the flattened spectrogram S:
// sort the flattened values ascending and return the element at index
// floor(N*frac), clamped to N-1 so frac=1 saturates to the maximum
// rather than indexing out of range.
//
// An empty spectrogram (zero time columns) has no cells to quantile; it
// returns 0 so that the subsequent peak finder — which has nothing to
// iterate over either — trivially yields no peaks.
func (s *Spectrogram) Cutoff(frac float64) (float64, error) {
	if frac < 0 || frac > 1 {
		return 0, fmt.Errorf("spectrogram: frac_cut must be in [0, 1], got %v", frac)
	}

	n := s.FreqBins() * s.TimeBins()
	if n == 0 {
		return 0, nil
	}

	flat := make([]float64, 0, n)
	for _, row := range s.S {
		flat = append(flat, row...)
	}
	sort.Float64s(flat)

	idx := int(float64(n) * frac)
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return flat[idx], nil
}
