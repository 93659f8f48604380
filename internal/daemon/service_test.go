package daemon

import (
	"testing"
	"time"
)

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Sessions:        10,
		TodayActiveSecs: 3600,
		Tokens:          1_000_000,
		SyncedDays:      4,
	}
	curr := Snapshot{
		Sessions:        12,
		TodayActiveSecs: 4500,
		Tokens:          1_250_000,
		SyncedDays:      5,
	}

	delta := diffSnapshots(prev, curr)
	if delta.Sessions != 2 {
		t.Fatalf("Sessions delta = %d, want 2", delta.Sessions)
	}
	if delta.TodayActiveSecs != 900 {
		t.Fatalf("TodayActiveSecs delta = %d, want 900", delta.TodayActiveSecs)
	}
	if delta.Tokens != 250_000 {
		t.Fatalf("Tokens delta = %d, want 250000", delta.Tokens)
	}
	if delta.SyncedDays != 1 {
		t.Fatalf("SyncedDays delta = %d, want 1", delta.SyncedDays)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
}

func TestDiffSnapshotsZero(t *testing.T) {
	snap := Snapshot{Sessions: 3, Tokens: 42}
	if !diffSnapshots(snap, snap).isZero() {
		t.Fatal("identical snapshots should produce a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}
