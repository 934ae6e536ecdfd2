package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// The users and group_members tables are owned by the hosted user and chat
// services; the columns below are the subset this subsystem reads or writes.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		last_latitude DOUBLE PRECISION,
		last_longitude DOUBLE PRECISION,
		last_location_update TIMESTAMPTZ,
		tracking_enabled BOOLEAN,
		device_info TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS location_samples (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		accuracy DOUBLE PRECISION,
		sampled_at TIMESTAMPTZ NOT NULL,
		received_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS location_samples_user_received_idx
		ON location_samples (user_id, received_at DESC)`,
	`CREATE TABLE IF NOT EXISTS group_members (
		group_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (group_id, user_id)
	)`,
}

// EnsureSchema creates the tables used by the location stores if they are missing
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}
	return nil
}
