// internal/service/location/ingestor.go

package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"huddle/internal/domain/location"
)

// EventPublisher is the subset of *nats.Conn used to announce accepted samples
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// IngestorConfig contains configuration for the location ingestor
type IngestorConfig struct {
	EventsTopic string
}

// reportRules mirrors location.Report with the constraints a report must satisfy
type reportRules struct {
	TargetUserID string    `validate:"required"`
	Latitude     float64   `validate:"latitude"`
	Longitude    float64   `validate:"longitude"`
	Accuracy     *float64  `validate:"omitempty,gt=0"`
	SampledAt    time.Time `validate:"required"`
	DeviceInfo   string    `validate:"max=256"`
}

// LocationIngestor implements the location.Ingestor interface
type LocationIngestor struct {
	samples  location.SampleStore
	users    location.UserStateStore
	eventBus EventPublisher
	config   IngestorConfig
	validate *validator.Validate
	now      func() time.Time
}

// NewLocationIngestor creates a new ingestor. eventBus may be nil.
func NewLocationIngestor(
	samples location.SampleStore,
	users location.UserStateStore,
	eventBus EventPublisher,
	config IngestorConfig,
) *LocationIngestor {
	if config.EventsTopic == "" {
		config.EventsTopic = "location"
	}

	return &LocationIngestor{
		samples:  samples,
		users:    users,
		eventBus: eventBus,
		config:   config,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Ingest validates, persists and caches a report on behalf of callerID
func (li *LocationIngestor) Ingest(ctx context.Context, callerID string, report location.Report) (*location.Sample, error) {
	// Ownership is checked before anything else is looked at
	if callerID == "" || callerID != report.TargetUserID {
		return nil, location.ErrUnauthorized
	}

	if err := li.validate.Struct(reportRules(report)); err != nil {
		return nil, fmt.Errorf("%w: %v", location.ErrInvalidReport, err)
	}

	enabled, err := li.trackingEnabled(ctx, report.TargetUserID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, location.ErrTrackingDisabled
	}

	sample := location.Sample{
		ID:         uuid.New().String(),
		UserID:     report.TargetUserID,
		Latitude:   report.Latitude,
		Longitude:  report.Longitude,
		Accuracy:   report.Accuracy,
		SampledAt:  report.SampledAt.UTC(),
		ReceivedAt: li.now().UTC(),
	}

	if err := li.samples.InsertSample(ctx, sample); err != nil {
		return nil, fmt.Errorf("%w: %w", location.ErrPersistence, err)
	}

	// The sample is the source of truth; a stale cache is tolerated
	if err := li.users.UpdateLastLocation(ctx, sample, report.DeviceInfo); err != nil {
		log.Printf("Error updating last known location for user %s: %v", sample.UserID, err)
	}

	if err := li.publishLocationEvent(sample); err != nil {
		// Log error but continue
		log.Printf("Error publishing location event for user %s: %v", sample.UserID, err)
	}

	return &sample, nil
}

// SetTrackingEnabled records a user's own tracking preference
func (li *LocationIngestor) SetTrackingEnabled(ctx context.Context, callerID, userID string, enabled bool) (*location.UserState, error) {
	if callerID == "" || callerID != userID {
		return nil, location.ErrUnauthorized
	}

	if err := li.users.SetTrackingEnabled(ctx, userID, enabled); err != nil {
		return nil, fmt.Errorf("%w: %w", location.ErrPersistence, err)
	}

	return li.GetUserState(ctx, callerID, userID)
}

// GetUserState returns the last known location of the caller. A user who
// has never reported gets an empty state with tracking enabled.
func (li *LocationIngestor) GetUserState(ctx context.Context, callerID, userID string) (*location.UserState, error) {
	if callerID == "" || callerID != userID {
		return nil, location.ErrUnauthorized
	}

	state, err := li.users.GetUserState(ctx, userID)
	if errors.Is(err, location.ErrNotFound) {
		return &location.UserState{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", location.ErrPersistence, err)
	}

	return state, nil
}

// trackingEnabled treats a missing user or a missing flag as enabled
func (li *LocationIngestor) trackingEnabled(ctx context.Context, userID string) (bool, error) {
	state, err := li.users.GetUserState(ctx, userID)
	if errors.Is(err, location.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: error reading tracking preference: %w", location.ErrPersistence, err)
	}

	return state.IsTrackingEnabled(), nil
}

// publishLocationEvent publishes an accepted sample to the event bus
func (li *LocationIngestor) publishLocationEvent(sample location.Sample) error {
	if li.eventBus == nil {
		return nil
	}

	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("error marshaling sample: %w", err)
	}

	topic := fmt.Sprintf("%s.%s.updated", li.config.EventsTopic, sample.UserID)
	return li.eventBus.Publish(topic, data)
}
