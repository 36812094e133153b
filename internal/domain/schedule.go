package domain

import (
	"time"
)

// Layouts of the stored schedule strings.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04"
)

// ParseLocalDate parses a date-only string as local midnight. Date-only
// strings must never go through a UTC-based parse or the rendered day shifts
// in western timezones.
func ParseLocalDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// ParseLocalDateTime parses a stored schedule value in local time. It accepts
// the minute-precision form, a seconds-precision form from older documents,
// and a bare date (interpreted as local midnight).
func ParseLocalDateTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateTimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	return ParseLocalDate(s)
}

// FormatDateTime renders t in the stored minute-precision layout.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// FormatDate renders t in the stored date-only layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func datePortion(s string) string {
	if len(s) >= len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

// realisticOrHour returns the realistic estimate in hours with a one hour
// floor, used wherever a missing or broken end has to be synthesized.
func realisticOrHour(e EstimateHours) float64 {
	if e.Realistic > 0 {
		return e.Realistic
	}
	return 1
}

func addHours(t time.Time, hrs float64) time.Time {
	return t.Add(time.Duration(hrs * float64(time.Hour)))
}

// NormalizeSchedule canonicalizes a task's time representation in place. It
// is idempotent and total: malformed date strings are left as-is rather than
// aborting the repair of the remaining fields.
//
// Repairs, in order: legacy date/timeblock migration, missing end synthesis,
// legacy date mirror, nil-slice and boolean defaults, end-after-start
// enforcement, and backlog promotion once a start exists. Subtask schedules
// go through the same routine.
func NormalizeSchedule(t *Task) {
	normalizeScheduleFields(&t.Scheduled, t.EstimateHours)

	if t.Assignees == nil {
		t.Assignees = []string{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	if t.InCalendar == nil {
		inCal := true
		t.InCalendar = &inCal
	}
	for i := range t.Subtasks {
		sub := &t.Subtasks[i]
		normalizeScheduleFields(&sub.Scheduled, EstimateHours{})
		if !sub.Status.IsValid() {
			sub.Status = SubtaskTodo
		}
		if sub.InCalendar == nil {
			inCal := true
			sub.InCalendar = &inCal
		}
	}

	// Backlog and "has a date" are mutually exclusive in steady state.
	if t.Scheduled.HasStart() && t.Status == StatusBacklog {
		t.Status = StatusScheduled
	}
}

func normalizeScheduleFields(s *Schedule, est EstimateHours) {
	// Migrate legacy date(+timeblock) to start/end.
	if s.Start == "" && s.Date != "" {
		if s.AllDay {
			s.Start = s.Date
			if s.End == "" {
				s.End = s.Date
			}
		} else {
			s.Start = s.Date + "T09:00"
			if s.End == "" {
				s.End = s.Date + "T17:00"
			}
		}
	}

	// Synthesize a missing end.
	if s.Start != "" && s.End == "" {
		if s.AllDay {
			s.End = datePortion(s.Start)
		} else if start, err := ParseLocalDateTime(s.Start); err == nil {
			s.End = FormatDateTime(addHours(start, realisticOrHour(est)))
		}
	}

	// Keep the legacy date mirror in sync for callers still reading it.
	if s.Start != "" {
		s.Date = datePortion(s.Start)
	}

	// End must stay after start. All-day bounds are inclusive dates, so an
	// end equal to the start date is a valid single-day span there.
	if s.Start != "" && s.End != "" {
		if s.AllDay {
			start, serr := ParseLocalDate(datePortion(s.Start))
			end, eerr := ParseLocalDate(datePortion(s.End))
			if serr == nil && eerr == nil && end.Before(start) {
				s.End = datePortion(s.Start)
			}
		} else {
			start, serr := ParseLocalDateTime(s.Start)
			end, eerr := ParseLocalDateTime(s.End)
			if serr == nil && eerr == nil && !end.After(start) {
				s.End = FormatDateTime(addHours(start, realisticOrHour(est)))
			}
		}
	}
}

// StartTime returns the schedule's start instant in local time.
func (s Schedule) StartTime() (time.Time, bool) {
	if s.Start == "" {
		return time.Time{}, false
	}
	if s.AllDay {
		t, err := ParseLocalDate(datePortion(s.Start))
		return t, err == nil
	}
	t, err := ParseLocalDateTime(s.Start)
	return t, err == nil
}

// EndTime returns the schedule's end instant in local time. For all-day
// schedules this is the stored inclusive end date's midnight; use
// DisplayInterval for range math.
func (s Schedule) EndTime() (time.Time, bool) {
	if s.End == "" {
		return time.Time{}, false
	}
	if s.AllDay {
		t, err := ParseLocalDate(datePortion(s.End))
		return t, err == nil
	}
	t, err := ParseLocalDateTime(s.End)
	return t, err == nil
}

// DisplayInterval returns the half-open [start, end) interval used for
// range-overlap math and bar geometry. The stored inclusive all-day end
// becomes the following midnight so a one-day task spans a full day; a
// missing or unparseable end falls back to start plus one hour.
func (s Schedule) DisplayInterval() (time.Time, time.Time, bool) {
	start, ok := s.StartTime()
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if s.AllDay {
		end, ok := s.EndTime()
		if !ok {
			end = start
		}
		return start, end.AddDate(0, 0, 1), true
	}
	end, ok := s.EndTime()
	if !ok || !end.After(start) {
		end = start.Add(time.Hour)
	}
	return start, end, true
}

// Overlaps reports whether the schedule's display interval intersects the
// half-open range [rangeStart, rangeEnd).
func (s Schedule) Overlaps(rangeStart, rangeEnd time.Time) bool {
	start, end, ok := s.DisplayInterval()
	if !ok {
		return false
	}
	return end.After(rangeStart) && start.Before(rangeEnd)
}
