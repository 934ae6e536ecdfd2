// internal/adapter/storage/memory_store.go

package storage

import (
	"context"
	"sort"
	"sync"

	"huddle/internal/domain/location"
)

// MemoryStore keeps samples, user state and group membership in process.
// It backs STORAGE_DRIVER=memory and the package tests.
type MemoryStore struct {
	samples  []location.Sample
	users    map[string]*location.UserState
	profiles map[string]location.Profile
	groups   map[string][]string
	mutex    sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*location.UserState),
		profiles: make(map[string]location.Profile),
		groups:   make(map[string][]string),
	}
}

// PutProfile stores the display fields of a user
func (s *MemoryStore) PutProfile(p location.Profile) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.profiles[p.UserID] = p
}

// SetGroupMembers replaces the membership of a group
func (s *MemoryStore) SetGroupMembers(groupID string, userIDs []string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.groups[groupID] = append([]string(nil), userIDs...)
}

// InsertSample appends a sample to the history
func (s *MemoryStore) InsertSample(ctx context.Context, sample location.Sample) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.samples = append(s.samples, sample)
	return nil
}

// Samples returns a copy of the full history in insertion order
func (s *MemoryStore) Samples() []location.Sample {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return append([]location.Sample(nil), s.samples...)
}

// FindSamplesForUsers returns samples for the given users, newest received
// first. Equal receive times are ordered by most recent insertion.
func (s *MemoryStore) FindSamplesForUsers(ctx context.Context, userIDs []string) ([]location.ProfiledSample, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	var result []location.ProfiledSample
	for i := len(s.samples) - 1; i >= 0; i-- {
		sample := s.samples[i]
		if !wanted[sample.UserID] {
			continue
		}

		profile := s.profiles[sample.UserID]
		result = append(result, location.ProfiledSample{
			Sample:      sample,
			DisplayName: profile.DisplayName,
			AvatarURL:   profile.AvatarURL,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ReceivedAt.After(result[j].ReceivedAt)
	})

	return result, nil
}

// GetUserState retrieves the cached location state of a user
func (s *MemoryStore) GetUserState(ctx context.Context, userID string) (*location.UserState, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	state, exists := s.users[userID]
	if !exists {
		return nil, location.ErrNotFound
	}

	copied := *state
	return &copied, nil
}

// UpdateLastLocation upserts the last-known location of the sample's owner
func (s *MemoryStore) UpdateLastLocation(ctx context.Context, sample location.Sample, deviceInfo string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	state := s.userLocked(sample.UserID)

	lat, lng, at := sample.Latitude, sample.Longitude, sample.ReceivedAt
	state.LastLatitude = &lat
	state.LastLongitude = &lng
	state.LastLocationUpdate = &at
	if deviceInfo != "" {
		state.DeviceInfo = deviceInfo
	}

	return nil
}

// SetTrackingEnabled upserts a user's tracking preference
func (s *MemoryStore) SetTrackingEnabled(ctx context.Context, userID string, enabled bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.userLocked(userID).TrackingEnabled = &enabled
	return nil
}

// MemberIDs returns the member user IDs of a group in membership order
func (s *MemoryStore) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return append([]string(nil), s.groups[groupID]...), nil
}

func (s *MemoryStore) userLocked(userID string) *location.UserState {
	state, exists := s.users[userID]
	if !exists {
		state = &location.UserState{UserID: userID}
		s.users[userID] = state
	}
	return state
}
