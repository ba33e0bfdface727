package tools

import (
	"fmt"
	"strings"
	"time"
)

// Schedule holds weekly opening hours. Days without an entry are closed.
type Schedule struct {
	days map[time.Weekday]span
}

type span struct {
	open, close time.Duration // offsets from midnight
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// ParseSchedule parses entries like "mon-sat=10:00-17:00,sun=12:00-16:00".
func ParseSchedule(s string) (*Schedule, error) {
	sched := &Schedule{days: make(map[time.Weekday]span)}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		daysPart, hoursPart, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("schedule entry %q: missing '='", part)
		}
		days, err := parseDayRange(daysPart)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %q: %w", part, err)
		}
		openStr, closeStr, ok := strings.Cut(hoursPart, "-")
		if !ok {
			return nil, fmt.Errorf("schedule entry %q: hours must be HH:MM-HH:MM", part)
		}
		open, err := parseClock(openStr)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %q: %w", part, err)
		}
		closeAt, err := parseClock(closeStr)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %q: %w", part, err)
		}
		if closeAt <= open {
			return nil, fmt.Errorf("schedule entry %q: closing time must be after opening time", part)
		}
		for _, d := range days {
			sched.days[d] = span{open: open, close: closeAt}
		}
	}
	return sched, nil
}

func parseDayRange(s string) ([]time.Weekday, error) {
	from, to, isRange := strings.Cut(s, "-")
	start, ok := parseWeekday(from)
	if !ok {
		return nil, fmt.Errorf("unknown day %q", from)
	}
	if !isRange {
		return []time.Weekday{start}, nil
	}
	end, ok := parseWeekday(to)
	if !ok {
		return nil, fmt.Errorf("unknown day %q", to)
	}
	var out []time.Weekday
	for d := start; ; d = (d + 1) % 7 {
		out = append(out, d)
		if d == end {
			break
		}
	}
	return out, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// IsOpen reports whether the store is open at t (already in the store's zone).
func (s *Schedule) IsOpen(t time.Time) bool {
	sp, ok := s.days[t.Weekday()]
	if !ok {
		return false
	}
	offset := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	return offset >= sp.open && offset < sp.close
}

// Describe returns the hours for one weekday.
func (s *Schedule) Describe(d time.Weekday) string {
	sp, ok := s.days[d]
	if !ok {
		return d.String() + ": closed"
	}
	return fmt.Sprintf("%s: %s to %s", d, clock(sp.open), clock(sp.close))
}

// String lists the hours for the whole week starting on Monday.
func (s *Schedule) String() string {
	parts := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		parts = append(parts, s.Describe(time.Weekday(i%7)))
	}
	return strings.Join(parts, "; ")
}

func clock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	if m == 0 {
		return fmt.Sprintf("%d %s", h12, suffix)
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}
