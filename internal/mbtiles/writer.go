package mbtiles

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/MeKo-Tech/terrainmap/internal/tile"
)

const (
	// DefaultBatchSize is the number of tiles to buffer before flushing to the database.
	DefaultBatchSize = 100
)

//go:embed migrations/*.sql
var migrations embed.FS

// TileEntry represents a single buffered tile.
type TileEntry struct {
	Coords tile.Coords
	Data   []byte
}

// Options tunes a Writer.
type Options struct {
	// BatchSize is the number of tiles per transaction.
	BatchSize int
	// Gzip compresses tile data before storage. Readers detect it.
	Gzip bool
}

// Writer writes tiles to an MBTiles database.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []TileEntry
	metadata  Metadata
	batchSize int
	gzip      bool
	written   int
	mu        sync.Mutex
}

// New creates a new MBTiles writer.
// The database is created if it doesn't exist and migrated to the current schema.
func New(path string, metadata Metadata, opts Options) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 50000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := insertMetadata(db, metadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert metadata: %w", err)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Writer{
		db:        db,
		path:      path,
		batch:     make([]TileEntry, 0, batchSize),
		batchSize: batchSize,
		gzip:      opts.Gzip,
		metadata:  metadata,
	}, nil
}

// migrateUp applies the embedded schema migrations. The migrate instance is
// not closed because that would close db.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// insertMetadata replaces the metadata table contents.
func insertMetadata(db *sql.DB, meta Metadata) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	if _, err := tx.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range meta.ToMap() {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}

	return tx.Commit()
}

// WriteTile adds a tile to the batch. When the batch is full, it is automatically flushed.
// Rows are stored in TMS order, so y is flipped on the way in.
func (w *Writer) WriteTile(c tile.Coords, data []byte) error {
	if !c.Valid() {
		return fmt.Errorf("tile %s is outside its zoom level", c)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, TileEntry{Coords: c, Data: data})

	if len(w.batch) >= w.batchSize {
		return w.flushLocked()
	}

	return nil
}

// Written returns the number of tiles committed so far.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush writes any buffered tiles to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes buffered tiles to the database. Must be called with lock held.
func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range w.batch {
		data := e.Data
		if w.gzip {
			if data, err = gzipCompress(e.Data); err != nil {
				return fmt.Errorf("failed to compress tile %s: %w", e.Coords, err)
			}
		}

		if _, err := stmt.Exec(e.Coords.Z, e.Coords.X, tmsRow(e.Coords), data); err != nil {
			return fmt.Errorf("failed to insert tile %s: %w", e.Coords, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.written += len(w.batch)
	w.batch = w.batch[:0]
	return nil
}

// Close flushes any remaining tiles and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return err
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

func tmsRow(c tile.Coords) uint32 {
	return (uint32(1) << c.Z) - 1 - c.Y
}

// gzipCompress compresses data with gzip.
func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)

	if _, err := gw.Write(data); err != nil {
		gw.Close()
		return nil, err
	}

	if err := gw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
