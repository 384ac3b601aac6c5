package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore archives decoded downlinks in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS downlinks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	received_at TEXT NOT NULL,
	raw_hex TEXT NOT NULL,
	type_code INTEGER NOT NULL,
	address_qualifier TEXT NOT NULL,
	address TEXT NOT NULL,
	latitude REAL,
	longitude REAL,
	altitude_ft INTEGER,
	altitude_type TEXT,
	nic INTEGER,
	ground_speed_kt INTEGER,
	track_deg REAL,
	vertical_rate_fpm INTEGER,
	callsign TEXT,
	emitter_category INTEGER,
	emergency TEXT,
	secondary_altitude_ft INTEGER,
	signal_strength REAL
);

CREATE INDEX IF NOT EXISTS idx_downlinks_address ON downlinks(address);
CREATE INDEX IF NOT EXISTS idx_downlinks_received_at ON downlinks(received_at);
`

// Insert stores one record.
func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO downlinks (
			received_at, raw_hex, type_code, address_qualifier, address,
			latitude, longitude, altitude_ft, altitude_type, nic,
			ground_speed_kt, track_deg, vertical_rate_fpm, callsign,
			emitter_category, emergency, secondary_altitude_ft, signal_strength
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ReceivedAt.UTC().Format(time.RFC3339Nano), rec.RawHex, rec.TypeCode, rec.Qualifier, rec.Address,
		rec.Latitude, rec.Longitude, rec.Altitude, nullString(rec.AltitudeType), rec.NIC,
		rec.GroundSpeed, rec.Track, rec.VerticalRate, nullString(rec.CallSign),
		rec.Category, nullString(rec.Emergency), rec.SecondaryAlt, rec.SignalStrength,
	)
	if err != nil {
		return fmt.Errorf("insert downlink: %w", err)
	}
	return nil
}

// CountByAddress returns how many downlinks were stored for an address.
func (s *SQLiteStore) CountByAddress(ctx context.Context, address string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM downlinks WHERE address = ?`, address).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count downlinks: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
