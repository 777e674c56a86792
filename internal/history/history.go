package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/feudadrien/a11yscan/internal/model"
)

// DBFileName is the SQLite database file name inside the data directory.
const DBFileName = "a11yscan.db"

// DB provides SQLite-based storage for scan results.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all targets rather
// than one file per site. This keeps history listing and cross-target
// queries simple and makes backup/restore a single-file operation.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &DB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *DB) Close() error {
	return h.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (h *DB) createTables() error {
	schema := `
	-- Scans store complete scan results as JSON plus queryable counts
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		strategy TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_violations INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		impact_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_scans_target ON scans(target);
	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScan persists a scan result. strategy records how the scan was
// performed (url, html, file, login, batch). The stored row never
// contains credentials: the result JSON is engine output only.
func (h *DB) SaveScan(ctx context.Context, target, strategy string, result *model.ScanResult) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}

	impactSummary := map[string]int{
		"critical": 0,
		"serious":  0,
		"moderate": 0,
		"minor":    0,
	}
	for _, v := range result.Violations {
		if _, ok := impactSummary[string(v.Impact)]; ok {
			impactSummary[string(v.Impact)]++
		}
	}
	impactJSON, _ := json.Marshal(impactSummary) //nolint:errcheck,errchkjson // simple map; Marshal won't fail

	query := `
	INSERT INTO scans (target, strategy, total_violations, result_json, impact_summary)
	VALUES (?, ?, ?, ?, ?)
	`

	res, err := h.db.ExecContext(ctx, query,
		target,
		strategy,
		len(result.Violations),
		string(resultJSON),
		string(impactJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan: %w", err)
	}

	return res.LastInsertId()
}

// GetLatestScan retrieves the most recent scan result for a target.
// Returns nil without error when the target has no history.
func (h *DB) GetLatestScan(ctx context.Context, target string) (*model.ScanResult, error) {
	query := `
	SELECT result_json FROM scans
	WHERE target = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var resultJSON string
	err := h.db.QueryRowContext(ctx, query, target).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	var result model.ScanResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse stored result: %w", err)
	}

	return &result, nil
}

// GetScanByID retrieves a scan result by its database ID.
// Returns nil without error when the ID does not exist.
func (h *DB) GetScanByID(ctx context.Context, id int64) (*model.ScanResult, error) {
	query := `
	SELECT result_json FROM scans
	WHERE id = ?
	`

	var resultJSON string
	err := h.db.QueryRowContext(ctx, query, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	var result model.ScanResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse stored result: %w", err)
	}

	return &result, nil
}

// ListTargets returns all targets with stored scans.
func (h *DB) ListTargets(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT target FROM scans
	ORDER BY target
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

// ScanMetadata contains summary information about a stored scan.
// This is used for displaying scan history without loading full results.
type ScanMetadata struct {
	// ID is the unique identifier of the scan in the database.
	ID int64

	// Target is the scanned URL or file label.
	Target string

	// Strategy records how the scan was performed.
	Strategy string

	// Timestamp is when the scan was stored.
	Timestamp time.Time

	// TotalViolations counts all violations regardless of impact.
	TotalViolations int

	// ImpactSummary contains counts of violations by impact level.
	ImpactSummary map[string]int
}

// ListScans retrieves scan metadata for a target, newest first.
// This is more efficient than loading full results when only metadata
// is needed.
func (h *DB) ListScans(ctx context.Context, target string) ([]ScanMetadata, error) {
	query := `
	SELECT id, target, strategy, timestamp, total_violations, impact_summary
	FROM scans
	WHERE target = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := h.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var results []ScanMetadata
	for rows.Next() {
		var meta ScanMetadata
		var timestamp string
		var impactJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Target, &meta.Strategy, &timestamp,
			&meta.TotalViolations, &impactJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		meta.ImpactSummary = make(map[string]int)
		if impactJSON.Valid && impactJSON.String != "" {
			if err := json.Unmarshal([]byte(impactJSON.String), &meta.ImpactSummary); err != nil {
				meta.ImpactSummary = make(map[string]int)
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
