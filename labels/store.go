package labels

import (
	"database/sql"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/pkg/errors"
)

// Store records which barcode label is assigned to which medium serial
// number. Mappings are upserted; every change is also appended to a
// history table so label reassignments stay traceable.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS label_mappings (
	serial     VARCHAR PRIMARY KEY,
	barcode    VARCHAR NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS label_history (
	serial     VARCHAR NOT NULL,
	barcode    VARCHAR NOT NULL,
	changed_at TIMESTAMP NOT NULL
);
`

// Open opens or creates the store. An empty path yields an in-memory
// database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening label store")
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating label store schema")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpdateMapping records that the medium with the given serial now
// carries the given barcode label.
func (s *Store) UpdateMapping(serial string, barcode string) error {
	if serial == "" {
		return errors.New("empty serial")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting label update")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	_, err = tx.Exec(`INSERT INTO label_mappings (serial, barcode, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (serial) DO UPDATE SET barcode = excluded.barcode, updated_at = excluded.updated_at`,
		serial, barcode, now)
	if err != nil {
		return errors.Wrapf(err, "upserting label for %s", serial)
	}

	_, err = tx.Exec(`INSERT INTO label_history (serial, barcode, changed_at) VALUES (?, ?, ?)`,
		serial, barcode, now)
	if err != nil {
		return errors.Wrapf(err, "appending label history for %s", serial)
	}

	return tx.Commit()
}

// Lookup returns the barcode currently mapped to the serial, or "" when
// the serial is unknown.
func (s *Store) Lookup(serial string) (string, error) {
	var barcode string
	err := s.db.QueryRow(`SELECT barcode FROM label_mappings WHERE serial = ?`, serial).Scan(&barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "looking up label for %s", serial)
	}
	return barcode, nil
}

type Change struct {
	Serial    string
	Barcode   string
	ChangedAt time.Time
}

// History returns all recorded label changes for a serial, oldest first.
func (s *Store) History(serial string) ([]Change, error) {
	rows, err := s.db.Query(`SELECT serial, barcode, changed_at FROM label_history
		WHERE serial = ? ORDER BY changed_at`, serial)
	if err != nil {
		return nil, errors.Wrapf(err, "reading label history for %s", serial)
	}
	defer func() {
		_ = rows.Close()
	}()

	var changes []Change
	for rows.Next() {
		var change Change
		if err := rows.Scan(&change.Serial, &change.Barcode, &change.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, rows.Err()
}
