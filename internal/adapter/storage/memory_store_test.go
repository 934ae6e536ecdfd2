package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"huddle/internal/domain/location"
)

func TestMemoryStoreFindSamplesOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.PutProfile(location.Profile{UserID: "a", DisplayName: "Ana", AvatarURL: "https://img/a.png"})

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	inserts := []location.Sample{
		{ID: "1", UserID: "a", ReceivedAt: base},
		{ID: "2", UserID: "b", ReceivedAt: base.Add(2 * time.Minute)},
		{ID: "3", UserID: "x", ReceivedAt: base.Add(3 * time.Minute)},
		{ID: "4", UserID: "a", ReceivedAt: base.Add(time.Minute)},
		{ID: "5", UserID: "b", ReceivedAt: base.Add(2 * time.Minute)},
	}
	for _, s := range inserts {
		if err := store.InsertSample(ctx, s); err != nil {
			t.Fatalf("InsertSample: %v", err)
		}
	}

	got, err := store.FindSamplesForUsers(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("FindSamplesForUsers: %v", err)
	}

	// Ties on receive time favour the later insert
	want := []string{"5", "2", "4", "1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected sample %s, got %s", i, id, got[i].ID)
		}
	}

	if got[2].DisplayName != "Ana" || got[2].AvatarURL != "https://img/a.png" {
		t.Fatalf("expected profile join, got %+v", got[2])
	}
}

func TestMemoryStoreUserState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.GetUserState(ctx, "u1"); !errors.Is(err, location.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now := time.Now().UTC()
	if err := store.UpdateLastLocation(ctx, location.Sample{UserID: "u1", Latitude: 1, Longitude: 2, ReceivedAt: now}, "pixel"); err != nil {
		t.Fatalf("UpdateLastLocation: %v", err)
	}
	if err := store.UpdateLastLocation(ctx, location.Sample{UserID: "u1", Latitude: 3, Longitude: 4, ReceivedAt: now}, ""); err != nil {
		t.Fatalf("UpdateLastLocation: %v", err)
	}

	state, err := store.GetUserState(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserState: %v", err)
	}
	if *state.LastLatitude != 3 || *state.LastLongitude != 4 {
		t.Fatalf("expected latest coordinates, got %v,%v", *state.LastLatitude, *state.LastLongitude)
	}
	if state.DeviceInfo != "pixel" {
		t.Fatalf("expected device info to be kept, got %q", state.DeviceInfo)
	}
	if !state.IsTrackingEnabled() {
		t.Fatal("expected tracking enabled by default")
	}

	if err := store.SetTrackingEnabled(ctx, "u1", false); err != nil {
		t.Fatalf("SetTrackingEnabled: %v", err)
	}
	state, _ = store.GetUserState(ctx, "u1")
	if state.IsTrackingEnabled() {
		t.Fatal("expected tracking disabled")
	}
}

func TestMemoryStoreMembers(t *testing.T) {
	store := NewMemoryStore()
	store.SetGroupMembers("g1", []string{"a", "b"})

	members, err := store.MemberIDs(context.Background(), "g1")
	if err != nil {
		t.Fatalf("MemberIDs: %v", err)
	}
	if len(members) != 2 || members[0] != "a" || members[1] != "b" {
		t.Fatalf("unexpected members %v", members)
	}

	members, _ = store.MemberIDs(context.Background(), "missing")
	if len(members) != 0 {
		t.Fatalf("expected no members, got %v", members)
	}
}
