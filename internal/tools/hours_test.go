package tools

import (
	"testing"
	"time"
)

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule("mon-fri=09:30-17:00, sat=10:00-14:00")
	if err != nil {
		t.Fatalf("ParseSchedule failed: %v", err)
	}

	// 2024-01-03 is a Wednesday.
	open := time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC)
	if !s.IsOpen(open) {
		t.Fatalf("expected open at %v", open)
	}
	if s.IsOpen(open.Add(-time.Minute)) {
		t.Fatalf("expected closed before opening")
	}
	if s.IsOpen(time.Date(2024, 1, 3, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected closed at closing time")
	}
	if s.IsOpen(time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected closed on sunday")
	}
	if got := s.Describe(time.Monday); got != "Monday: 9:30 AM to 5 PM" {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestParseScheduleWrapsAroundWeek(t *testing.T) {
	s, err := ParseSchedule("fri-mon=12:00-13:00")
	if err != nil {
		t.Fatalf("ParseSchedule failed: %v", err)
	}
	for _, d := range []time.Weekday{time.Friday, time.Saturday, time.Sunday, time.Monday} {
		if s.Describe(d) == d.String()+": closed" {
			t.Fatalf("expected %s to be open", d)
		}
	}
	if s.Describe(time.Tuesday) != "Tuesday: closed" {
		t.Fatalf("expected tuesday closed")
	}
}

func TestParseScheduleErrors(t *testing.T) {
	for _, in := range []string{
		"mon",
		"funday=10:00-12:00",
		"mon=10:00",
		"mon=25:00-26:00",
		"mon=12:00-10:00",
	} {
		if _, err := ParseSchedule(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
