// Package pipeline wires the spectrogram, cutoff, peak-finding, and
// fingerprint stages into the single PCM-to-fingerprints pass that both
// catalog.Add and match.Against run, so enrollment and query can never
// drift apart on how they derive fingerprints from audio.
package pipeline

import (
	"github.com/resonantlabs/constellate/internal/fingerprint"
	"github.com/resonantlabs/constellate/internal/peaks"
	"github.com/resonantlabs/constellate/internal/spectrogram"
)

// Params are the DSP tuning parameters that must agree between
// enrollment and query.
type Params struct {
	SampleRate int
	NFFT       int
	Overlap    int
	FracCut    float64
	PNN        int
	FanValue   int
}

// Fingerprint runs the spectrogram → cutoff → peak-finding → hashing
// pipeline over pcm (sampled at p.SampleRate Hz).
func Fingerprint(pcm []float64, p Params) ([]fingerprint.Entry, error) {
	spec, err := spectrogram.Build(pcm, p.SampleRate, p.NFFT, p.Overlap)
	if err != nil {
		return nil, err
	}
	cutoff, err := spec.Cutoff(p.FracCut)
	if err != nil {
		return nil, err
	}
	pks, err := peaks.Find(spec, cutoff, p.PNN)
	if err != nil {
		return nil, err
	}
	return fingerprint.Generate(pks, p.FanValue)
}
