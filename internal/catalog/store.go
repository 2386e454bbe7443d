package catalog

import (
	"fmt"

	"github.com/resonantlabs/constellate/internal/fingerprint"
	"github.com/resonantlabs/constellate/config"
)

// Store is the persistence collaborator behind Catalog: the inverted
// index and the song registry, behind a single pluggable backend
// interface.
type Store interface {
	LoadIndex() (map[fingerprint.Hash][]Posting, error)
	SaveIndex(map[fingerprint.Hash][]Posting) error
	LoadRegistry() ([]Record, error)
	SaveRegistry([]Record) error
}

// NewStore builds the Store described by cfg, switching on
// cfg.Database.Type across the file, postgres, and mysql backends.
func NewStore(cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileStore(cfg.Path), nil
	case "postgres":
		return NewSQLStore("postgres", cfg.DSN)
	case "mysql":
		return NewSQLStore("mysql", cfg.DSN)
	default:
		return nil, fmt.Errorf("catalog: unsupported database type: %s", cfg.Type)
	}
}
