// internal/service/location/aggregator.go

package location

import (
	"context"
	"fmt"

	"huddle/internal/domain/location"
)

// GroupAggregator implements the location.Aggregator interface
type GroupAggregator struct {
	members location.MembershipResolver
	samples location.SampleStore
}

// NewGroupAggregator creates a new group aggregator
func NewGroupAggregator(members location.MembershipResolver, samples location.SampleStore) *GroupAggregator {
	return &GroupAggregator{
		members: members,
		samples: samples,
	}
}

// GroupLocations returns the latest sample of every member that has reported,
// newest received first. Group ACLs are enforced upstream.
func (ga *GroupAggregator) GroupLocations(ctx context.Context, groupID string) ([]location.MemberLocation, error) {
	memberIDs, err := ga.members.MemberIDs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: error resolving members of group %s: %w", location.ErrPersistence, groupID, err)
	}

	if len(memberIDs) == 0 {
		return []location.MemberLocation{}, nil
	}

	samples, err := ga.samples.FindSamplesForUsers(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: error fetching samples for group %s: %w", location.ErrPersistence, groupID, err)
	}

	return LatestPerMember(memberIDs, samples), nil
}

// LatestPerMember keeps the first sample seen for each member. samples must be
// ordered newest first; the output keeps that order. Samples of non-members
// are dropped.
func LatestPerMember(memberIDs []string, samples []location.ProfiledSample) []location.MemberLocation {
	members := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}

	remaining := len(members)
	result := make([]location.MemberLocation, 0, remaining)
	for _, s := range samples {
		if remaining == 0 {
			break
		}
		if !members[s.UserID] {
			continue
		}
		// Clearing the entry marks the member as seen
		members[s.UserID] = false
		remaining--

		result = append(result, location.MemberLocation{
			UserID:      s.UserID,
			DisplayName: s.DisplayName,
			AvatarURL:   s.AvatarURL,
			Latitude:    s.Latitude,
			Longitude:   s.Longitude,
			Accuracy:    s.Accuracy,
			SampledAt:   s.SampledAt,
			ReceivedAt:  s.ReceivedAt,
		})
	}

	return result
}
