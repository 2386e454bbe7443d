package match

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonantlabs/constellate/internal/catalog"
	"github.com/resonantlabs/constellate/internal/fingerprint"
	"github.com/resonantlabs/constellate/internal/pipeline"
)

type memStore struct {
	index    map[fingerprint.Hash][]catalog.Posting
	registry []catalog.Record
}

func newMemStore() *memStore {
	return &memStore{index: map[fingerprint.Hash][]catalog.Posting{}}
}

func (m *memStore) LoadIndex() (map[fingerprint.Hash][]catalog.Posting, error) {
	out := map[fingerprint.Hash][]catalog.Posting{}
	for k, v := range m.index {
		out[k] = append([]catalog.Posting(nil), v...)
	}
	return out, nil
}

func (m *memStore) SaveIndex(idx map[fingerprint.Hash][]catalog.Posting) error {
	m.index = idx
	return nil
}

func (m *memStore) LoadRegistry() ([]catalog.Record, error) {
	return append([]catalog.Record(nil), m.registry...), nil
}

func (m *memStore) SaveRegistry(records []catalog.Record) error {
	m.registry = records
	return nil
}

func testDSP() catalog.DSPParams {
	return pipeline.Params{
		SampleRate: 8000,
		NFFT:       1024,
		Overlap:    512,
		FracCut:    0.9,
		PNN:        2,
		FanValue:   5,
	}
}

func sineWave(freq float64, fs, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(fs))
	}
	return out
}

func TestAgainstEmptyCatalogReturnsErrEmptyCatalog(t *testing.T) {
	dsp := testDSP()
	cat := catalog.New(newMemStore(), dsp)
	pcm := sineWave(440, dsp.SampleRate, dsp.SampleRate*3)

	_, err := Against(cat, pcm, dsp.SampleRate, dsp)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestAgainstRejectsSampleRateMismatch(t *testing.T) {
	dsp := testDSP()
	cat := catalog.New(newMemStore(), dsp)
	pcm := sineWave(440, 44100, 44100)

	_, err := Against(cat, pcm, 44100, dsp)
	assert.Error(t, err)
}

func TestAgainstFindsEnrolledSong(t *testing.T) {
	dsp := testDSP()
	store := newMemStore()
	cat := catalog.New(store, dsp)

	full := sineWave(440, dsp.SampleRate, dsp.SampleRate*5)
	_, err := cat.Add(full, dsp.SampleRate, "song", "artist")
	require.NoError(t, err)

	clip := full[dsp.SampleRate : dsp.SampleRate*3]

	result, err := Against(cat, clip, dsp.SampleRate, dsp)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "song", result.Name)
	assert.Equal(t, "artist", result.Artist)
}

func TestAgainstUnrelatedClipReturnsNoMatch(t *testing.T) {
	dsp := testDSP()
	store := newMemStore()
	cat := catalog.New(store, dsp)

	enrolled := sineWave(440, dsp.SampleRate, dsp.SampleRate*5)
	_, err := cat.Add(enrolled, dsp.SampleRate, "song", "artist")
	require.NoError(t, err)

	query := make([]float64, dsp.SampleRate*3) // silence, no matching fingerprints

	_, err = Against(cat, query, dsp.SampleRate, dsp)
	assert.Error(t, err)
}

func TestAgainstExcludesTombstonedSongs(t *testing.T) {
	dsp := testDSP()
	store := newMemStore()
	cat := catalog.New(store, dsp)

	full := sineWave(440, dsp.SampleRate, dsp.SampleRate*5)
	_, err := cat.Add(full, dsp.SampleRate, "song", "artist")
	require.NoError(t, err)
	require.NoError(t, cat.Remove("song", "artist"))

	clip := full[dsp.SampleRate : dsp.SampleRate*3]
	_, err = Against(cat, clip, dsp.SampleRate, dsp)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}
