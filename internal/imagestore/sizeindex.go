package imagestore

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const indexFileName = "folio/images.db"

// SizeIndex remembers image dimensions keyed by path and modification time,
// so reopening a large document does not re-read every image header.
// A nil *SizeIndex is valid and remembers nothing.
type SizeIndex struct {
	db *sql.DB
}

// OpenSizeIndex opens the index at path, or in the XDG data directory when
// path is empty.
func OpenSizeIndex(path string) (*SizeIndex, error) {
	if path == "" {
		p, err := xdg.DataFile(indexFileName)
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initIndexSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SizeIndex{db: db}, nil
}

func initIndexSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS image_sizes (
			path TEXT PRIMARY KEY,
			mtime INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL
		);
	`)
	return err
}

// Lookup returns the recorded size of path if it was indexed at mtime.
func (ix *SizeIndex) Lookup(path string, mtime int64) (width, height int, ok bool) {
	if ix == nil {
		return 0, 0, false
	}

	err := ix.db.QueryRow(
		`SELECT width, height FROM image_sizes WHERE path = ? AND mtime = ?`,
		path, mtime,
	).Scan(&width, &height)
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}

// Put records the size of path at mtime, replacing any older entry.
func (ix *SizeIndex) Put(path string, mtime int64, width, height int) error {
	if ix == nil {
		return nil
	}

	_, err := ix.db.Exec(`
		INSERT INTO image_sizes (path, mtime, width, height)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			width = excluded.width,
			height = excluded.height
	`, path, mtime, width, height)
	return err
}

// Len returns the number of indexed images.
func (ix *SizeIndex) Len() (int, error) {
	if ix == nil {
		return 0, errors.New("size index not open")
	}
	var n int
	err := ix.db.QueryRow(`SELECT COUNT(*) FROM image_sizes`).Scan(&n)
	return n, err
}

func (ix *SizeIndex) Close() error {
	if ix == nil {
		return nil
	}
	return ix.db.Close()
}
