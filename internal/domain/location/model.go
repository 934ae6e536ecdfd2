package location

import (
	"time"
)

// AccuracyTier selects how precise a device fix should be
type AccuracyTier string

const (
	AccuracyBalanced AccuracyTier = "balanced" // Periodic reports
	AccuracyHigh     AccuracyTier = "high"     // On-demand reports
)

// Sample is one reported position for a user. Samples are append-only.
type Sample struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   *float64  `json:"accuracy"`
	SampledAt  time.Time `json:"sampled_at"`
	ReceivedAt time.Time `json:"received_at"`
}

// UserState is the last-known location cache kept on the user record
type UserState struct {
	UserID             string     `json:"user_id"`
	LastLatitude       *float64   `json:"last_latitude"`
	LastLongitude      *float64   `json:"last_longitude"`
	LastLocationUpdate *time.Time `json:"last_location_update"`
	TrackingEnabled    *bool      `json:"-"`
	DeviceInfo         string     `json:"device_info,omitempty"`
}

// IsTrackingEnabled reports the effective preference. A missing flag means enabled.
func (s UserState) IsTrackingEnabled() bool {
	return s.TrackingEnabled == nil || *s.TrackingEnabled
}

// Report is a single location report as submitted by a client
type Report struct {
	TargetUserID string
	Latitude     float64
	Longitude    float64
	Accuracy     *float64
	SampledAt    time.Time
	DeviceInfo   string
}

// Profile holds the minimal display fields joined into group views
type Profile struct {
	UserID      string
	DisplayName string
	AvatarURL   string
}

// ProfiledSample is a sample joined with its owner's profile
type ProfiledSample struct {
	Sample
	DisplayName string
	AvatarURL   string
}

// MemberLocation is one row of a group's live map: the latest sample of a member
type MemberLocation struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Accuracy    *float64  `json:"accuracy"`
	SampledAt   time.Time `json:"sampled_at"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Fix is a position produced by the device positioning service
type Fix struct {
	Latitude   float64
	Longitude  float64
	Accuracy   *float64
	CapturedAt time.Time
}
