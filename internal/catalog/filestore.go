package catalog

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/resonantlabs/constellate/internal/fingerprint"
)

// FileStore is the default Store: two sibling artifacts — Path for the
// inverted index, Path+"_song_list" for the registry — encoded with
// gopkg.in/yaml.v3.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore rooted at base path p.
func NewFileStore(p string) *FileStore {
	return &FileStore{Path: p}
}

func (f *FileStore) registryPath() string {
	return f.Path + "_song_list"
}

type indexFile struct {
	Entries map[fingerprint.Hash][]Posting `yaml:"entries"`
}

type registryFile struct {
	Records []Record `yaml:"records"`
}

// LoadIndex reads the inverted index from f.Path. A missing file yields
// an empty, non-nil map, not an error.
func (f *FileStore) LoadIndex() (map[fingerprint.Hash][]Posting, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[fingerprint.Hash][]Posting{}, nil
	}
	if err != nil {
		return nil, err
	}

	var decoded indexFile
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	if decoded.Entries == nil {
		decoded.Entries = map[fingerprint.Hash][]Posting{}
	}
	return decoded.Entries, nil
}

// SaveIndex writes the inverted index to f.Path.
func (f *FileStore) SaveIndex(idx map[fingerprint.Hash][]Posting) error {
	data, err := yaml.Marshal(indexFile{Entries: idx})
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o644)
}

// LoadRegistry reads the song registry from f.Path+"_song_list". A
// missing file yields an empty, non-nil slice, not an error.
func (f *FileStore) LoadRegistry() ([]Record, error) {
	data, err := os.ReadFile(f.registryPath())
	if os.IsNotExist(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	var decoded registryFile
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	if decoded.Records == nil {
		decoded.Records = []Record{}
	}
	return decoded.Records, nil
}

// SaveRegistry writes the song registry to f.Path+"_song_list".
func (f *FileStore) SaveRegistry(records []Record) error {
	data, err := yaml.Marshal(registryFile{Records: records})
	if err != nil {
		return err
	}
	return os.WriteFile(f.registryPath(), data, 0o644)
}
