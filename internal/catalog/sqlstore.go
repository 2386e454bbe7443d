package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/resonantlabs/constellate/internal/fingerprint"
)

// SQLStore is the shared-catalog Store backend: MySQL or Postgres over
// plain database/sql with parameterized queries, selected by driver
// name.
//
// It stores exactly the Posting/Record shapes Catalog already works
// with — two tables, no extra normalization — so it is a transcoding
// layer, not a second source of catalog semantics.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore opens a SQL-backed Store using driver ("postgres" or
// "mysql") against dsn, and ensures its two tables exist.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", driver, err)
	}
	s := &SQLStore{db: db, driver: driver}
	if err := s.setup(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// placeholders builds the driver-appropriate bind-parameter list for an
// n-argument INSERT: "?, ?, ..." for mysql, "$1, $2, ..." for postgres.
func (s *SQLStore) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if s.driver == "mysql" {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprintf("$%d", i+1)
		}
	}
	return strings.Join(parts, ", ")
}

func (s *SQLStore) setup() error {
	autoIncrement := "SERIAL"
	if s.driver == "mysql" {
		autoIncrement = "INTEGER AUTO_INCREMENT"
	}

	_, err := s.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS songs (
			song_id %s PRIMARY KEY,
			name VARCHAR(512) NOT NULL,
			artist VARCHAR(512) NOT NULL,
			tombstoned BOOLEAN NOT NULL DEFAULT FALSE
		)`, autoIncrement))
	if err != nil {
		return fmt.Errorf("catalog: create songs table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS fingerprints (
			hash BIGINT NOT NULL,
			song_id INTEGER NOT NULL,
			anchor_time INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("catalog: create fingerprints table: %w", err)
	}

	return nil
}

// Close releases the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// LoadIndex reads every (hash, song_id, anchor_time) row into an
// in-memory postings map.
func (s *SQLStore) LoadIndex() (map[fingerprint.Hash][]Posting, error) {
	rows, err := s.db.Query(`SELECT hash, song_id, anchor_time FROM fingerprints`)
	if err != nil {
		return nil, fmt.Errorf("catalog: query fingerprints: %w", err)
	}
	defer rows.Close()

	idx := map[fingerprint.Hash][]Posting{}
	for rows.Next() {
		var h int64
		var p Posting
		var anchor int64
		if err := rows.Scan(&h, &p.SongID, &anchor); err != nil {
			return nil, fmt.Errorf("catalog: scan fingerprint row: %w", err)
		}
		p.AnchorTime = uint16(anchor)
		key := fingerprint.Hash(uint64(h))
		idx[key] = append(idx[key], p)
	}
	return idx, rows.Err()
}

// SaveIndex replaces the fingerprints table's contents with idx, inside
// a single transaction so a failure mid-write leaves the previous
// contents intact.
func (s *SQLStore) SaveIndex(idx map[fingerprint.Hash][]Posting) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM fingerprints`); err != nil {
		return fmt.Errorf("catalog: clear fingerprints: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO fingerprints (hash, song_id, anchor_time) VALUES (%s)`, s.placeholders(3)))
	if err != nil {
		return fmt.Errorf("catalog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for h, postings := range idx {
		for _, p := range postings {
			if _, err := stmt.Exec(int64(h), p.SongID, int(p.AnchorTime)); err != nil {
				return fmt.Errorf("catalog: insert fingerprint: %w", err)
			}
		}
	}

	return tx.Commit()
}

// LoadRegistry reads every song row, ordered by song_id so index
// positions line up with the song_ids postings reference.
func (s *SQLStore) LoadRegistry() ([]Record, error) {
	rows, err := s.db.Query(`SELECT song_id, name, artist, tombstoned FROM songs ORDER BY song_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("catalog: query songs: %w", err)
	}
	defer rows.Close()

	var records []Record
	nextID := 0
	for rows.Next() {
		var songID int
		var r Record
		if err := rows.Scan(&songID, &r.Name, &r.Artist, &r.Tombstoned); err != nil {
			return nil, fmt.Errorf("catalog: scan song row: %w", err)
		}
		// song_id is a dense, never-reused index; fill any gap with
		// tombstones so registry[sid] stays valid.
		for nextID < songID {
			records = append(records, Record{Tombstoned: true})
			nextID++
		}
		records = append(records, r)
		nextID++
	}
	if records == nil {
		records = []Record{}
	}
	return records, rows.Err()
}

// SaveRegistry replaces the songs table's contents with records, inside
// a single transaction.
func (s *SQLStore) SaveRegistry(records []Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM songs`); err != nil {
		return fmt.Errorf("catalog: clear songs: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO songs (song_id, name, artist, tombstoned) VALUES (%s)`, s.placeholders(4)))
	if err != nil {
		return fmt.Errorf("catalog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for songID, r := range records {
		if _, err := stmt.Exec(songID, r.Name, r.Artist, r.Tombstoned); err != nil {
			return fmt.Errorf("catalog: insert song: %w", err)
		}
	}

	return tx.Commit()
}
