package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore archives decoded downlinks in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL and creates the
// downlinks table when missing.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// CreateSchema creates the downlinks table.
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS downlinks (
		id                      BIGSERIAL PRIMARY KEY,
		received_at             TIMESTAMPTZ NOT NULL,
		raw_hex                 TEXT NOT NULL,
		type_code               SMALLINT NOT NULL,
		address_qualifier       TEXT NOT NULL,
		address                 TEXT NOT NULL,
		latitude                DOUBLE PRECISION,
		longitude               DOUBLE PRECISION,
		altitude_ft             INTEGER,
		altitude_type           TEXT,
		nic                     SMALLINT,
		ground_speed_kt         INTEGER,
		track_deg               DOUBLE PRECISION,
		vertical_rate_fpm       INTEGER,
		callsign                TEXT,
		emitter_category        SMALLINT,
		emergency               TEXT,
		secondary_altitude_ft   INTEGER,
		signal_strength         DOUBLE PRECISION
	);

	CREATE INDEX IF NOT EXISTS idx_downlinks_address ON downlinks(address);
	CREATE INDEX IF NOT EXISTS idx_downlinks_received_at ON downlinks(received_at);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Insert stores one record.
func (s *PostgresStore) Insert(ctx context.Context, rec *Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO downlinks (
			received_at, raw_hex, type_code, address_qualifier, address,
			latitude, longitude, altitude_ft, altitude_type, nic,
			ground_speed_kt, track_deg, vertical_rate_fpm, callsign,
			emitter_category, emergency, secondary_altitude_ft, signal_strength
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		rec.ReceivedAt.UTC(), rec.RawHex, int16(rec.TypeCode), rec.Qualifier, rec.Address,
		rec.Latitude, rec.Longitude, rec.Altitude, textOrNil(rec.AltitudeType), smallint(rec.NIC),
		rec.GroundSpeed, rec.Track, rec.VerticalRate, textOrNil(rec.CallSign),
		smallint(rec.Category), textOrNil(rec.Emergency), rec.SecondaryAlt, rec.SignalStrength,
	)
	if err != nil {
		return fmt.Errorf("insert downlink: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func textOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func smallint(v *uint8) *int16 {
	if v == nil {
		return nil
	}
	n := int16(*v)
	return &n
}
