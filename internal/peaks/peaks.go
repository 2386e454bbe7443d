// Package peaks implements 2-D local-maximum detection over a
// spectrogram using a Minkowski-iterated structuring element.
package peaks

import (
	"fmt"

	"github.com/resonantlabs/constellate/internal/spectrogram"
)

// Peak is an integer (time-bin, freq-bin) coordinate.
type Peak struct {
	T uint16
	F uint16
}

// footprint returns the set of (df, dt) offsets that make up the
// p_nn-iterated Minkowski dilation of the 4-connected unit structuring
// element. Dilating the unit diamond (center + 4 axis neighbors, an L1
// ball of radius 1) with itself p_nn times is, by definition of the
// Minkowski sum of L1 balls, exactly the L1 ball of radius p_nn: every
// (df, dt) with |df|+|dt| <= p_nn. Building that set directly is
// equivalent to the literal iterate-and-union construction but avoids
// p_nn passes over a growing offset set.
func footprint(pnn int) [][2]int {
	offsets := make([][2]int, 0, 2*pnn*pnn+2*pnn+1)
	for df := -pnn; df <= pnn; df++ {
		rem := pnn - abs(df)
		for dt := -rem; dt <= rem; dt++ {
			offsets = append(offsets, [2]int{df, dt})
		}
	}
	return offsets
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Find extracts local peaks from S above cutoff c within the p_nn-
// iterated diamond neighborhood. Boundary cells use a "nearest"
// (clamped-index) border, consistent across enrollment and query.
// Returned peaks are sorted by ascending t then ascending f.
func Find(s *spectrogram.Spectrogram, c float64, pnn int) ([]Peak, error) {
	if pnn < 0 {
		return nil, fmt.Errorf("peaks: p_nn must be >= 0, got %d", pnn)
	}

	freqBins := s.FreqBins()
	timeBins := s.TimeBins()
	if freqBins == 0 || timeBins == 0 {
		return []Peak{}, nil
	}

	offs := footprint(pnn)

	// Scanning t outer, f inner already produces ascending-t-then-f
	// order without a separate sort.
	var out []Peak
	for t := 0; t < timeBins; t++ {
		for f := 0; f < freqBins; f++ {
			v := s.S[f][t]
			if v < c {
				continue
			}

			dilated := v
			for _, o := range offs {
				ff := clamp(f+o[0], 0, freqBins-1)
				tt := clamp(t+o[1], 0, timeBins-1)
				if s.S[ff][tt] > dilated {
					dilated = s.S[ff][tt]
				}
			}

			if v == dilated {
				out = append(out, Peak{T: uint16(t), F: uint16(f)})
			}
		}
	}

	if out == nil {
		out = []Peak{}
	}
	return out, nil
}
