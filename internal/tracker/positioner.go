// internal/tracker/positioner.go

package tracker

import (
	"context"
	"time"

	"huddle/internal/domain/location"
)

// Permission is the foreground location permission state of the device
type Permission string

const (
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
	PermissionUndetermined Permission = "undetermined"
)

// Positioner is the device positioning service
type Positioner interface {
	// Permission returns the live foreground location permission
	Permission(ctx context.Context) (Permission, error)

	// CurrentPosition acquires a fix at the requested accuracy tier
	CurrentPosition(ctx context.Context, tier location.AccuracyTier) (location.Fix, error)
}

// FixedPositioner reports a configured position. It stands in for a GPS
// receiver on stationary devices and agents.
type FixedPositioner struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Denied    bool
}

// NewFixedPositioner creates a positioner for a fixed point. A non-positive
// accuracy is reported as unknown.
func NewFixedPositioner(lat, lng, accuracy float64) *FixedPositioner {
	p := &FixedPositioner{Latitude: lat, Longitude: lng}
	if accuracy > 0 {
		p.Accuracy = &accuracy
	}
	return p
}

// Permission returns the live foreground location permission
func (p *FixedPositioner) Permission(ctx context.Context) (Permission, error) {
	if p.Denied {
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

// CurrentPosition returns the configured point captured now
func (p *FixedPositioner) CurrentPosition(ctx context.Context, tier location.AccuracyTier) (location.Fix, error) {
	if err := ctx.Err(); err != nil {
		return location.Fix{}, err
	}

	return location.Fix{
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Accuracy:   p.Accuracy,
		CapturedAt: time.Now().UTC(),
	}, nil
}
