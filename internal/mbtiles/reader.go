package mbtiles

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/MeKo-Tech/terrainmap/internal/tile"
)

// ErrTileNotFound is returned by ReadTile for tiles missing from the database.
var ErrTileNotFound = errors.New("tile not found")

// Reader reads tiles from an MBTiles database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens an MBTiles database for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='tiles'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain tiles table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadTile returns the stored tile bytes, decompressing gzip when present.
// Rows are looked up in TMS order.
func (r *Reader) ReadTile(c tile.Coords) ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrTileNotFound, c)
	}

	var data []byte
	err := r.db.QueryRow(
		"SELECT tile_data FROM tiles WHERE zoom_level=? AND tile_column=? AND tile_row=?",
		c.Z, c.X, tmsRow(c),
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTileNotFound, c)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tile: %w", err)
	}

	if !isGzip(data) {
		return data, nil
	}
	uncompressed, err := gzipDecompress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress tile: %w", err)
	}
	return uncompressed, nil
}

// Count returns the number of stored tiles.
func (r *Reader) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM tiles").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tiles: %w", err)
	}
	return n, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name string
		var value sql.NullString
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		values[name] = value.String
	}
	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return parseMetadata(values), nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// gzipDecompress decompresses gzip data.
func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
