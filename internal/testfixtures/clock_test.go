package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Run("defaults to reference time", func(t *testing.T) {
		if got := NewClock(time.Time{}).Now(); !got.Equal(ReferenceTime()) {
			t.Fatalf("expected ReferenceTime, got %v", got)
		}
	})

	t.Run("advance and set move the shared instant", func(t *testing.T) {
		start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
		clock := NewClock(start)
		nowFn := clock.NowFunc()

		if got := clock.Advance(31 * time.Minute); !got.Equal(start.Add(31 * time.Minute)) {
			t.Fatalf("advance returned %v", got)
		}
		if got := nowFn(); !got.Equal(start.Add(31 * time.Minute)) {
			t.Fatalf("NowFunc did not observe advance, got %v", got)
		}

		clock.Set(start)
		if got := nowFn(); !got.Equal(start) {
			t.Fatalf("expected %v after Set, got %v", start, got)
		}
	})

	t.Run("nil clock falls back to wall time", func(t *testing.T) {
		var clock *Clock
		if clock.NowFunc()().IsZero() {
			t.Fatal("expected wall clock time")
		}
	})
}
