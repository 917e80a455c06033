// Package store provides a SQLite-backed cache for parsed telemetry points.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/gcusage/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed point caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked state of one parsed log.
type FileInfo struct {
	MtimeNs           int64
	SizeBytes         int64
	Segments          int
	MalformedSegments int
	UnusablePoints    int
}

// Matches reports whether the tracked file still has the given mtime and size.
func (fi FileInfo) Matches(mtimeNs, sizeBytes int64) bool {
	return fi.MtimeNs == mtimeNs && fi.SizeBytes == sizeBytes
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query(`SELECT file_path, mtime_ns, size_bytes,
		segments, malformed_segments, unusable_points FROM file_tracker`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes,
			&fi.Segments, &fi.MalformedSegments, &fi.UnusablePoints); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SavePoints replaces the cached points of filePath and records its state.
func (c *Cache) SavePoints(filePath string, fi FileInfo, points []model.MetricPoint) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM points WHERE file_path = ?", filePath); err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker
		(file_path, mtime_ns, size_bytes, segments, malformed_segments, unusable_points, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		filePath, fi.MtimeNs, fi.SizeBytes, fi.Segments, fi.MalformedSegments, fi.UnusablePoints,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO points
		(file_path, seq, timestamp_ms, model, type, session_id, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range points {
		var sessionID sql.NullString
		if p.HasSession() {
			sessionID = sql.NullString{String: p.SessionID, Valid: true}
		}
		if _, err := stmt.Exec(filePath, p.Seq, p.TimestampMs, p.Model, p.Type, sessionID, p.Value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadPoints reads the cached points of filePath in Seq order.
func (c *Cache) LoadPoints(filePath string) ([]model.MetricPoint, error) {
	rows, err := c.db.Query(`SELECT seq, timestamp_ms, model, type, session_id, value
		FROM points WHERE file_path = ? ORDER BY seq`, filePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var points []model.MetricPoint
	for rows.Next() {
		var p model.MetricPoint
		var sessionID sql.NullString
		if err := rows.Scan(&p.Seq, &p.TimestampMs, &p.Model, &p.Type, &sessionID, &p.Value); err != nil {
			return nil, err
		}
		if sessionID.Valid {
			p.SessionID = sessionID.String
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// DeleteFile removes a tracked file and its cached points.
func (c *Cache) DeleteFile(filePath string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}

// PointCount returns the number of cached points.
func (c *Cache) PointCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM points").Scan(&count)
	return count, err
}
