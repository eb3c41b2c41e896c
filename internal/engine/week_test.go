package engine

import (
	"testing"
	"time"
)

func TestWeekOfAnchorsOnMonday(t *testing.T) {
	// 2026-08-24 is a Monday.
	for day := 24; day <= 30; day++ {
		w := WeekOf(time.Date(2026, 8, day, 15, 30, 0, 0, time.UTC))
		if w.Start() != "2026-08-24" {
			t.Fatalf("day %d: start = %s, want 2026-08-24", day, w.Start())
		}
		if w.End() != "2026-08-30" {
			t.Fatalf("day %d: end = %s, want 2026-08-30", day, w.End())
		}
	}
}

func TestWeekOfSundayBelongsToPrecedingMonday(t *testing.T) {
	w := WeekOf(time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC))
	if w.Start() != "2026-08-17" || w.End() != "2026-08-23" {
		t.Fatalf("unexpected window %s..%s", w.Start(), w.End())
	}
}

func TestWeekDays(t *testing.T) {
	w := WeekOf(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	days := w.Days()
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0] != "2026-08-24" || days[6] != "2026-08-30" {
		t.Fatalf("unexpected day range %s..%s", days[0], days[6])
	}
}

func TestWeekNavigation(t *testing.T) {
	w := WeekOf(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	if w.Next().Start() != "2026-08-31" {
		t.Fatalf("next = %s", w.Next().Start())
	}
	if w.Prev().Start() != "2026-08-17" {
		t.Fatalf("prev = %s", w.Prev().Start())
	}
	if w.Next().Prev().Start() != w.Start() {
		t.Fatal("next then prev must return to the same window")
	}
}
