// Package catalog implements the inverted index from fingerprint hash
// to postings, the song registry, and the add/remove/list/lookup/
// persist lifecycle that ties them together.
//
// The lazy-load guard is centralized in ensureLoaded, called at the top
// of every public method, rather than wrapped around the methods from
// outside as a decorator.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/resonantlabs/constellate/internal/fingerprint"
	"github.com/resonantlabs/constellate/internal/pipeline"
	"github.com/resonantlabs/constellate/utils/logger"
)

// ErrDuplicateSong is returned (and only logged as a warning, never
// fatal) when Add is asked to enroll a (name, artist) pair already
// present in the registry.
var ErrDuplicateSong = errors.New("catalog: song already present")

// ErrSongNotFound is returned (and only logged as a warning) when
// Remove targets a (name, artist) pair absent from the registry.
var ErrSongNotFound = errors.New("catalog: song not found")

// ErrSampleRateMismatch is returned when a PCM buffer's sample rate
// disagrees with the DSP parameters the catalog was built with.
var ErrSampleRateMismatch = errors.New("catalog: sample rate mismatch")

// Posting is a (song_id, anchor_time) pair.
type Posting struct {
	SongID     int
	AnchorTime uint16
}

// Record is a song registry slot: either a live (name, artist) entry or
// a tombstone. Registry indices are song_ids and are never reused or
// shifted.
type Record struct {
	Name       string
	Artist     string
	Tombstoned bool
}

// DSPParams are the tuning parameters that must agree between
// enrollment and query.
type DSPParams = pipeline.Params

// Catalog is the in-memory inverted index + song registry, backed by a
// pluggable Store for persistence.
type Catalog struct {
	store  Store
	dsp    DSPParams
	loaded bool

	index    map[fingerprint.Hash][]Posting
	registry []Record
}

// New constructs a Catalog over store with the given DSP parameters. The
// catalog starts unloaded; the first public operation lazily loads it
// from store.
func New(store Store, dsp DSPParams) *Catalog {
	return &Catalog{store: store, dsp: dsp}
}

// ensureLoaded guarantees the in-memory state reflects the backing
// store before any public method reads or mutates it.
func (c *Catalog) ensureLoaded() error {
	if c.loaded {
		return nil
	}
	return c.Load()
}

// Load reads the index and registry from the current store
// unconditionally, bypassing the loaded flag. A missing backing store
// yields an empty catalog, not an error.
func (c *Catalog) Load() error {
	idx, err := c.store.LoadIndex()
	if err != nil {
		return fmt.Errorf("catalog: load index: %w", err)
	}
	reg, err := c.store.LoadRegistry()
	if err != nil {
		return fmt.Errorf("catalog: load registry: %w", err)
	}
	if idx == nil {
		idx = map[fingerprint.Hash][]Posting{}
	}
	c.index = idx
	c.registry = reg
	c.loaded = true
	return nil
}

// Save persists the in-memory index and registry to the current store.
func (c *Catalog) Save() error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	if err := c.store.SaveIndex(c.index); err != nil {
		return fmt.Errorf("catalog: save index: %w", err)
	}
	if err := c.store.SaveRegistry(c.registry); err != nil {
		return fmt.Errorf("catalog: save registry: %w", err)
	}
	return nil
}

// Clear resets the loaded flag; the next public operation reloads from
// the store.
func (c *Catalog) Clear() {
	c.loaded = false
	c.index = nil
	c.registry = nil
}

// Switch transactionally redirects the catalog to newStore: it loads
// into scratch state first, and only swaps the live store/index/
// registry in if that load succeeds. On failure the previous in-memory
// state is left untouched and the error is returned.
func (c *Catalog) Switch(newStore Store) error {
	idx, err := newStore.LoadIndex()
	if err != nil {
		return fmt.Errorf("catalog: switch: load index: %w", err)
	}
	reg, err := newStore.LoadRegistry()
	if err != nil {
		return fmt.Errorf("catalog: switch: load registry: %w", err)
	}
	if idx == nil {
		idx = map[fingerprint.Hash][]Posting{}
	}

	c.store = newStore
	c.index = idx
	c.registry = reg
	c.loaded = true
	return nil
}

// Lookup returns the postings for hash h, or an empty slice if none
// exist.
func (c *Catalog) Lookup(h fingerprint.Hash) ([]Posting, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	return c.index[h], nil
}

// List returns the sorted, tombstone-filtered registry records.
func (c *Catalog) List() ([]Record, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(c.registry))
	for _, r := range c.registry {
		if !r.Tombstoned {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Artist < out[j].Artist
	})
	return out, nil
}

// Registry returns the raw, song_id-indexed registry slice, tombstones
// included. Unlike List, which filters and re-sorts for display, this
// preserves the indexing that Posting.SongID references directly —
// callers that resolve postings back to song metadata need this, not
// List.
func (c *Catalog) Registry() ([]Record, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	return c.registry, nil
}

// Add fingerprints pcm (sampled at fs Hz) and enrolls it under (name,
// artist) as a new song_id. Adding an already-present (name, artist) is
// a no-op: it returns ErrDuplicateSong and leaves the registry
// untouched, after logging a warning.
func (c *Catalog) Add(pcm []float64, fs int, name, artist string) (songID int, err error) {
	if err := c.ensureLoaded(); err != nil {
		return 0, err
	}
	if fs != c.dsp.SampleRate {
		return 0, fmt.Errorf("%w: catalog built at %d Hz, got %d Hz", ErrSampleRateMismatch, c.dsp.SampleRate, fs)
	}

	for _, r := range c.registry {
		if !r.Tombstoned && r.Name == name && r.Artist == artist {
			logger.Warn(fmt.Sprintf("catalog: %q by %q already in database, skipping", name, artist))
			return 0, ErrDuplicateSong
		}
	}

	entries, err := pipeline.Fingerprint(pcm, c.dsp)
	if err != nil {
		return 0, err
	}

	songID = len(c.registry)
	c.registry = append(c.registry, Record{Name: name, Artist: artist})
	for _, e := range entries {
		c.index[e.Hash] = append(c.index[e.Hash], Posting{SongID: songID, AnchorTime: e.AnchorT})
	}

	return songID, nil
}

// Remove tombstones the registry slot for (name, artist) and purges
// every posting with that song_id from every hash's posting list.
// Removing an absent (name, artist) is a no-op: it returns
// ErrSongNotFound after logging a warning.
func (c *Catalog) Remove(name, artist string) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}

	songID := -1
	for i, r := range c.registry {
		if !r.Tombstoned && r.Name == name && r.Artist == artist {
			songID = i
			break
		}
	}
	if songID == -1 {
		logger.Warn(fmt.Sprintf("catalog: %q by %q not found, nothing to remove", name, artist))
		return ErrSongNotFound
	}

	c.registry[songID] = Record{Tombstoned: true}

	for h, postings := range c.index {
		kept := postings[:0]
		for _, p := range postings {
			if p.SongID != songID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(c.index, h)
		} else {
			c.index[h] = kept
		}
	}

	return nil
}
