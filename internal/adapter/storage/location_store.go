// internal/adapter/storage/location_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"huddle/internal/domain/location"
)

// LocationStore implements storage for location samples and the
// last-known location cache on the users table
type LocationStore struct {
	db *pgxpool.Pool
}

// NewLocationStore creates a new location store
func NewLocationStore(db *pgxpool.Pool) *LocationStore {
	return &LocationStore{
		db: db,
	}
}

// InsertSample appends a sample to the history
func (s *LocationStore) InsertSample(ctx context.Context, sample location.Sample) error {
	query := `
		INSERT INTO location_samples (
			id, user_id, latitude, longitude, accuracy, sampled_at, received_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.db.Exec(
		ctx,
		query,
		sample.ID,
		sample.UserID,
		sample.Latitude,
		sample.Longitude,
		sample.Accuracy,
		sample.SampledAt,
		sample.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting sample: %w", err)
	}

	return nil
}

// FindSamplesForUsers returns samples for the given users, newest received first
func (s *LocationStore) FindSamplesForUsers(ctx context.Context, userIDs []string) ([]location.ProfiledSample, error) {
	query := `
		SELECT
			s.id::text, s.user_id, s.latitude, s.longitude, s.accuracy,
			s.sampled_at, s.received_at,
			COALESCE(u.display_name, ''), COALESCE(u.avatar_url, '')
		FROM location_samples s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.user_id = ANY($1)
		ORDER BY s.received_at DESC
	`

	rows, err := s.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var samples []location.ProfiledSample
	for rows.Next() {
		var ps location.ProfiledSample

		err := rows.Scan(
			&ps.ID,
			&ps.UserID,
			&ps.Latitude,
			&ps.Longitude,
			&ps.Accuracy,
			&ps.SampledAt,
			&ps.ReceivedAt,
			&ps.DisplayName,
			&ps.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning sample: %w", err)
		}

		samples = append(samples, ps)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}

	return samples, nil
}

// GetUserState retrieves the cached location state of a user
func (s *LocationStore) GetUserState(ctx context.Context, userID string) (*location.UserState, error) {
	query := `
		SELECT
			id, last_latitude, last_longitude, last_location_update,
			tracking_enabled, COALESCE(device_info, '')
		FROM users
		WHERE id = $1
	`

	var state location.UserState
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&state.UserID,
		&state.LastLatitude,
		&state.LastLongitude,
		&state.LastLocationUpdate,
		&state.TrackingEnabled,
		&state.DeviceInfo,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, location.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user state: %w", err)
	}

	return &state, nil
}

// UpdateLastLocation upserts the last-known location of the sample's owner
func (s *LocationStore) UpdateLastLocation(ctx context.Context, sample location.Sample, deviceInfo string) error {
	query := `
		INSERT INTO users (
			id, last_latitude, last_longitude, last_location_update, device_info
		) VALUES (
			$1, $2, $3, $4, NULLIF($5, '')
		)
		ON CONFLICT (id) DO UPDATE
		SET
			last_latitude = $2,
			last_longitude = $3,
			last_location_update = $4,
			device_info = COALESCE(NULLIF($5, ''), users.device_info)
	`

	_, err := s.db.Exec(
		ctx,
		query,
		sample.UserID,
		sample.Latitude,
		sample.Longitude,
		sample.ReceivedAt,
		deviceInfo,
	)
	if err != nil {
		return fmt.Errorf("error updating last location: %w", err)
	}

	return nil
}

// SetTrackingEnabled upserts a user's tracking preference
func (s *LocationStore) SetTrackingEnabled(ctx context.Context, userID string, enabled bool) error {
	query := `
		INSERT INTO users (id, tracking_enabled)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET tracking_enabled = $2
	`

	if _, err := s.db.Exec(ctx, query, userID, enabled); err != nil {
		return fmt.Errorf("error updating tracking preference: %w", err)
	}

	return nil
}
