// internal/domain/location/service.go

package location

import (
	"context"
	"errors"
)

// Common errors
var (
	// Client side
	ErrPermissionDenied    = errors.New("location permission not granted")
	ErrPositionUnavailable = errors.New("device position unavailable")
	ErrNetwork             = errors.New("location submission failed")

	// Server side
	ErrUnauthorized     = errors.New("not authorized to update this user's location")
	ErrTrackingDisabled = errors.New("location tracking is disabled for this user")
	ErrPersistence      = errors.New("location storage unavailable")
	ErrInvalidReport    = errors.New("invalid location report")
	ErrNotFound         = errors.New("not found")
)

// Ingestor accepts location reports from authenticated callers
type Ingestor interface {
	// Ingest validates, persists and caches a report on behalf of callerID
	Ingest(ctx context.Context, callerID string, report Report) (*Sample, error)

	// SetTrackingEnabled records a user's own tracking preference
	SetTrackingEnabled(ctx context.Context, callerID, userID string, enabled bool) (*UserState, error)

	// GetUserState returns the last known location of the caller
	GetUserState(ctx context.Context, callerID, userID string) (*UserState, error)
}

// Aggregator answers "where is everyone in this group right now"
type Aggregator interface {
	// GroupLocations returns the latest sample per member, newest first
	GroupLocations(ctx context.Context, groupID string) ([]MemberLocation, error)
}

// SampleStore persists location samples
type SampleStore interface {
	// InsertSample appends a sample. Samples are never updated.
	InsertSample(ctx context.Context, s Sample) error

	// FindSamplesForUsers returns samples owned by userIDs, newest received first,
	// joined with the owner's profile
	FindSamplesForUsers(ctx context.Context, userIDs []string) ([]ProfiledSample, error)
}

// UserStateStore persists the last-known location cache and tracking preference
type UserStateStore interface {
	// GetUserState returns ErrNotFound when the user has no record
	GetUserState(ctx context.Context, userID string) (*UserState, error)

	// UpdateLastLocation upserts the cache from a sample. An empty deviceInfo
	// leaves the stored descriptor untouched.
	UpdateLastLocation(ctx context.Context, s Sample, deviceInfo string) error

	// SetTrackingEnabled upserts the tracking preference
	SetTrackingEnabled(ctx context.Context, userID string, enabled bool) error
}

// MembershipResolver resolves a group's members. Membership is owned by the
// messaging service; it is read-only here.
type MembershipResolver interface {
	// MemberIDs returns the group's member ids in membership order
	MemberIDs(ctx context.Context, groupID string) ([]string, error)
}
