// Package match turns a query clip's fingerprints into catalog
// postings, scores each candidate song by its best-aligned
// (anchor_time - query_time) offset bucket, and returns the single best
// candidate.
package match

import (
	"errors"
	"fmt"

	"github.com/resonantlabs/constellate/internal/catalog"
	"github.com/resonantlabs/constellate/internal/pipeline"
)

// ErrNoMatch is returned when the query clip's fingerprints produce no
// hash collisions against the catalog at all.
var ErrNoMatch = errors.New("match: no matching song found")

// ErrEmptyCatalog is returned when the catalog has no live songs at
// all, distinguished from ErrNoMatch for callers that want to tell the
// two apart.
var ErrEmptyCatalog = errors.New("match: catalog is empty")

// Result is the best-scoring candidate for a query.
type Result struct {
	SongID int
	Name   string
	Artist string
	// Score is the number of fingerprints that agreed on the winning
	// offset bucket: the histogram's peak count, not a normalized
	// probability.
	Score int
	// Offset is the winning (anchor_time - query_time) bucket, in
	// spectrogram time bins: the query clip's estimated start position
	// within the matched song.
	Offset int
}

// offsetKey identifies one histogram bucket: a candidate song and a
// specific alignment offset between its anchor times and the query's.
type offsetKey struct {
	songID int
	offset int
}

// Against fingerprints pcm (sampled at fs Hz) with the same DSP
// parameters the catalog was built with, and returns the best-matching
// song: the (song_id, offset) histogram bin with the greatest count
// wins; an empty histogram is ErrNoMatch. ErrEmptyCatalog distinguishes
// the case where the catalog holds no live songs at all.
func Against(cat *catalog.Catalog, pcm []float64, fs int, dsp catalog.DSPParams) (*Result, error) {
	if fs != dsp.SampleRate {
		return nil, fmt.Errorf("match: query sampled at %d Hz, catalog built at %d Hz", fs, dsp.SampleRate)
	}

	allRecords, err := cat.Registry()
	if err != nil {
		return nil, err
	}
	liveCount := 0
	for _, r := range allRecords {
		if !r.Tombstoned {
			liveCount++
		}
	}
	if liveCount == 0 {
		return nil, ErrEmptyCatalog
	}

	entries, err := pipeline.Fingerprint(pcm, dsp)
	if err != nil {
		return nil, err
	}

	votes := map[offsetKey]int{}
	for _, e := range entries {
		postings, err := cat.Lookup(e.Hash)
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			offset := int(p.AnchorTime) - int(e.AnchorT)
			votes[offsetKey{songID: p.SongID, offset: offset}]++
		}
	}

	if len(votes) == 0 {
		return nil, ErrNoMatch
	}

	bestKey := offsetKey{songID: -1}
	bestScore := -1
	for k, v := range votes {
		if v > bestScore || (v == bestScore && (k.songID < bestKey.songID || (k.songID == bestKey.songID && k.offset < bestKey.offset))) {
			bestScore = v
			bestKey = k
		}
	}

	// Remove purges every posting for a tombstoned song_id (see
	// catalog.Catalog.Remove), so this can only be reached for a live
	// song; allRecords[bestKey.songID] is safe to index directly.
	rec := allRecords[bestKey.songID]

	return &Result{
		SongID: bestKey.songID,
		Name:   rec.Name,
		Artist: rec.Artist,
		Score:  bestScore,
		Offset: bestKey.offset,
	}, nil
}
