package peaks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonantlabs/constellate/internal/spectrogram"
)

func gridSpectrogram(freqBins, timeBins int, fill func(f, t int) float64) *spectrogram.Spectrogram {
	s := &spectrogram.Spectrogram{S: make([][]float64, freqBins), DF: 1, DT: 1}
	for f := range s.S {
		s.S[f] = make([]float64, timeBins)
		for t := range s.S[f] {
			s.S[f][t] = fill(f, t)
		}
	}
	return s
}

func TestFindRejectsNegativePNN(t *testing.T) {
	s := gridSpectrogram(3, 3, func(f, t int) float64 { return 0 })
	_, err := Find(s, 0, -1)
	assert.Error(t, err)
}

func TestFindEmptySpectrogramYieldsNoPeaks(t *testing.T) {
	s := &spectrogram.Spectrogram{S: [][]float64{}}
	pks, err := Find(s, 0, 1)
	require.NoError(t, err)
	assert.NotNil(t, pks)
	assert.Empty(t, pks)
}

func TestFindSingleSpikeIsThePeak(t *testing.T) {
	s := gridSpectrogram(9, 9, func(f, t int) float64 {
		if f == 4 && t == 4 {
			return 10
		}
		return 1
	})

	pks, err := Find(s, 5, 2) // between the flat background and the spike
	require.NoError(t, err)
	require.Len(t, pks, 1)
	assert.Equal(t, Peak{T: 4, F: 4}, pks[0])
}

func TestFindRespectsCutoffThreshold(t *testing.T) {
	s := gridSpectrogram(9, 9, func(f, t int) float64 {
		if f == 4 && t == 4 {
			return 10
		}
		return 1
	})

	pks, err := Find(s, 20, 2) // above every value
	require.NoError(t, err)
	assert.Empty(t, pks)
}

func TestFindReturnsAscendingTThenF(t *testing.T) {
	s := gridSpectrogram(6, 6, func(f, t int) float64 {
		if (f == 1 && t == 1) || (f == 4 && t == 4) || (f == 1 && t == 4) {
			return 10
		}
		return 0
	})

	pks, err := Find(s, 5, 1)
	require.NoError(t, err)
	require.Len(t, pks, 3)
	for i := 1; i < len(pks); i++ {
		prev, cur := pks[i-1], pks[i]
		assert.True(t, cur.T > prev.T || (cur.T == prev.T && cur.F >= prev.F))
	}
}

func TestFootprintIsL1Ball(t *testing.T) {
	offs := footprint(2)
	for _, o := range offs {
		assert.LessOrEqual(t, abs(o[0])+abs(o[1]), 2)
	}
	// (0,0), 4 at radius 1, 8 at radius 2 => 1 + 4 + 8 = 13
	assert.Len(t, offs, 13)
}
