// Package spectrogram implements the STFT → log-power spectrogram
// builder and the adaptive quantile cutoff derived from it.
package spectrogram

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// floor is the log-power floor applied to every cell, so a silent frame
// never produces -Inf.
const floor = 1e-20

// Spectrogram is the time-frequency matrix S[f][t]: each cell holds
// log(max(power, 1e-20)). DF and DT are the frequency-bin and time-bin
// physical sizes in Hz and seconds, respectively.
type Spectrogram struct {
	S  [][]float64 // S[freqBin][timeFrame]
	DF float64
	DT float64
}

// FreqBins returns the number of frequency rows (NFFT/2+1), or 0 for an
// empty spectrogram.
func (s *Spectrogram) FreqBins() int {
	return len(s.S)
}

// TimeBins returns the number of time columns, or 0 for an empty
// spectrogram.
func (s *Spectrogram) TimeBins() int {
	if len(s.S) == 0 {
		return 0
	}
	return len(s.S[0])
}

// rescale normalizes pcm to a consistent numeric range: if the buffer
// already looks scaled to [-1, 1], it's multiplied up by 2^15 so the
// downstream log/quantile math behaves the same regardless of whether
// the caller handed us int16-range samples or float-normalized ones.
func rescale(pcm []float64) []float64 {
	maxAbs := 0.0
	for _, v := range pcm {
		a := math.Abs(v)
		if a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs > 1.0 {
		return pcm
	}
	out := make([]float64, len(pcm))
	for i, v := range pcm {
		out[i] = v * 32768.0
	}
	return out
}

// hann returns a Hann window of length n: w[i] = 0.5 - 0.5*cos(2*pi*i/(n-1)).
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// Build computes the STFT of pcm at sample rate fs using an FFT of size
// nfft and noverlap samples of overlap between consecutive frames.
// Enrollment and query must use identical nfft/noverlap values.
//
// A signal shorter than one FFT window yields an empty spectrogram (zero
// time columns), not an error.
func Build(pcm []float64, fs, nfft, noverlap int) (*Spectrogram, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("spectrogram: sample rate must be positive, got %d", fs)
	}
	if nfft <= 0 {
		return nil, fmt.Errorf("spectrogram: nfft must be positive, got %d", nfft)
	}
	if noverlap < 0 || noverlap >= nfft {
		return nil, fmt.Errorf("spectrogram: noverlap must be in [0, nfft), got %d", noverlap)
	}

	freqBins := nfft/2 + 1
	step := nfft - noverlap

	if len(pcm) < nfft {
		return &Spectrogram{
			S:  make([][]float64, freqBins),
			DF: float64(fs) / float64(nfft),
			DT: float64(step) / float64(fs),
		}, nil
	}

	scaled := rescale(pcm)
	window := hann(nfft)

	// Floor division: a frame is only counted once nfft full samples are
	// available for it, so the last partial window (which would otherwise
	// need zero-padding) is dropped rather than synthesized. Enrollment
	// and query derive the same count from the same rule, so this never
	// causes a mismatch between the two.
	numFrames := (len(scaled)-nfft)/step + 1
	s := make([][]float64, freqBins)
	for f := range s {
		s[f] = make([]float64, numFrames)
	}

	frame := make([]float64, nfft)
	for t := 0; t < numFrames; t++ {
		start := t * step
		for i := 0; i < nfft; i++ {
			frame[i] = scaled[start+i] * window[i]
		}

		spectrum := fft.FFTReal(frame)
		for f := 0; f < freqBins; f++ {
			mag := spectrum[f]
			power := real(mag)*real(mag) + imag(mag)*imag(mag)
			if power < floor || math.IsNaN(power) || math.IsInf(power, 0) {
				power = floor
			}
			s[f][t] = math.Log(power)
		}
	}

	return &Spectrogram{
		S:  s,
		DF: float64(fs) / float64(nfft),
		DT: float64(step) / float64(fs),
	}, nil
}
