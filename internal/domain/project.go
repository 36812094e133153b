package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Zoom selects the visible time range granularity for the agenda and
// gantt views.
type Zoom string

const (
	ZoomDay   Zoom = "day"
	ZoomWeek  Zoom = "week"
	ZoomMonth Zoom = "month"
)

// Dutch weekday abbreviations, Monday first.
var dayNames = []string{"Ma", "Di", "Wo", "Do", "Vr", "Za", "Zo"}

// Range is a projected visible window: a half-open [Start, End) interval
// plus the column layout derived from the zoom level.
type Range struct {
	Start   time.Time
	End     time.Time
	Labels  []string
	Zoom    Zoom
	Columns int
}

// Midnight truncates t to local midnight.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday midnight at or before t.
func StartOfWeek(t time.Time) time.Time {
	d := Midnight(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// ProjectRange computes the visible window around a focus date for a zoom
// level. Day spans a single date with 24 hourly slots, week spans Monday
// through Sunday, month spans the calendar month with one column per day.
func ProjectRange(focus time.Time, zoom Zoom) Range {
	switch zoom {
	case ZoomWeek:
		start := StartOfWeek(focus)
		r := Range{Start: start, End: start.AddDate(0, 0, 7), Zoom: ZoomWeek, Columns: 7}
		for i := 0; i < 7; i++ {
			d := start.AddDate(0, 0, i)
			r.Labels = append(r.Labels, fmt.Sprintf("%s %02d/%02d", dayNames[i], d.Day(), int(d.Month())))
		}
		return r
	case ZoomMonth:
		start := time.Date(focus.Year(), focus.Month(), 1, 0, 0, 0, 0, focus.Location())
		end := start.AddDate(0, 1, 0)
		cols := int(math.Round(end.Sub(start).Hours() / 24))
		r := Range{Start: start, End: end, Zoom: ZoomMonth, Columns: cols}
		for i := 0; i < cols; i++ {
			r.Labels = append(r.Labels, fmt.Sprintf("%02d", start.AddDate(0, 0, i).Day()))
		}
		return r
	default:
		start := Midnight(focus)
		r := Range{Start: start, End: start.AddDate(0, 0, 1), Zoom: ZoomDay, Columns: 24}
		for hr := 0; hr < 24; hr++ {
			r.Labels = append(r.Labels, fmt.Sprintf("%02d:00", hr))
		}
		return r
	}
}

// CalendarGrid extends the focus month to full Monday-start weeks, so the
// month agenda always renders complete 7-wide rows with leading and
// trailing days from the adjacent months.
func CalendarGrid(focus time.Time) Range {
	first := time.Date(focus.Year(), focus.Month(), 1, 0, 0, 0, 0, focus.Location())
	last := first.AddDate(0, 1, -1)
	lead := (int(first.Weekday()) + 6) % 7
	cells := (lead + last.Day() + 6) / 7 * 7
	start := first.AddDate(0, 0, -lead)
	r := Range{Start: start, End: start.AddDate(0, 0, cells), Zoom: ZoomMonth, Columns: cells}
	for i := 0; i < cells; i++ {
		r.Labels = append(r.Labels, FormatDate(start.AddDate(0, 0, i)))
	}
	return r
}

// Span is a task or subtask whose display interval overlaps a projected
// range. Subtask is nil for the task's own row.
type Span struct {
	Task    *Task
	Subtask *Subtask
	Start   time.Time
	End     time.Time
}

// Title returns the subtask title when the span is a subtask row.
func (s Span) Title() string {
	if s.Subtask != nil {
		return s.Subtask.Title
	}
	return s.Task.Title
}

// VisibleSpans returns the scheduled tasks whose display interval overlaps
// [rangeStart, rangeEnd), sorted by start. The overlap test is half-open:
// an item ending exactly at rangeStart, or starting at rangeEnd, is out.
func VisibleSpans(tasks []*Task, rangeStart, rangeEnd time.Time) []Span {
	var out []Span
	for _, t := range tasks {
		ds, de, ok := t.Scheduled.DisplayInterval()
		if !ok || !de.After(rangeStart) || !ds.Before(rangeEnd) {
			continue
		}
		out = append(out, Span{Task: t, Start: ds, End: de})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Task.ID < out[j].Task.ID
	})
	return out
}

// Gantt render constants. Column widths differ per zoom so a week fits
// wide columns and a month fits the whole grid.
const (
	GanttLabelWidth      = 280
	GanttWeekColumnWidth = 100
	GanttDayColumnWidth  = 36
	ganttBarInset        = 4
	ganttBarMinWidth     = 24
)

// ColumnWidth returns the pixel width of one gantt column at this zoom.
func (z Zoom) ColumnWidth() float64 {
	if z == ZoomWeek {
		return GanttWeekColumnWidth
	}
	return GanttDayColumnWidth
}

// Bar is the horizontal geometry of a gantt bar in pixels.
type Bar struct {
	Left  float64
	Width float64
}

// GanttBar maps a display interval onto the range's columns. Week zoom
// positions bars at fractional day offsets; month zoom snaps the start to
// its day column and rounds the end up to whole days. Indices clamp to
// [0, Columns], and an end at or before the start is forced to half a
// column so the bar stays visible and clickable.
func (r Range) GanttBar(start, end time.Time) Bar {
	day := 24 * time.Hour
	var startIdx, endIdx float64
	if r.Zoom == ZoomWeek {
		startIdx = math.Max(0, float64(start.Sub(r.Start))/float64(day))
		endIdx = math.Min(float64(r.Columns), float64(end.Sub(r.Start))/float64(day))
	} else {
		startIdx = math.Max(0, float64(Midnight(start).Sub(r.Start))/float64(day))
		endIdx = math.Min(float64(r.Columns), math.Ceil(float64(end.Sub(r.Start))/float64(day)))
	}
	if endIdx <= startIdx {
		endIdx = startIdx + 0.5
	}
	colW := r.Zoom.ColumnWidth()
	return Bar{
		Left:  startIdx*colW + ganttBarInset,
		Width: math.Max(ganttBarMinWidth, (endIdx-startIdx)*colW-2*ganttBarInset),
	}
}

// UngroupedBucket labels the synthetic bucket for tasks without a group.
const UngroupedBucket = "Zonder groep"

// BucketRow is one gantt row: a task span plus the sub-rows for its
// subtasks that overlap the range on their own schedule.
type BucketRow struct {
	Span    Span
	Subrows []Span
}

// Bucket groups gantt rows under a group heading.
type Bucket struct {
	Group string
	Rows  []BucketRow
}

// GroupBuckets builds the grouped gantt layout. Every known group gets a
// bucket even when empty in range, so collapsing state stays stable as the
// focus moves; the ungrouped bucket only appears when occupied.
func GroupBuckets(tasks []*Task, groups []Group, rangeStart, rangeEnd time.Time) []Bucket {
	spans := VisibleSpans(tasks, rangeStart, rangeEnd)
	rows := make(map[string][]BucketRow)
	for _, sp := range spans {
		row := BucketRow{Span: sp}
		for i := range sp.Task.Subtasks {
			st := &sp.Task.Subtasks[i]
			ss, se, ok := st.Scheduled.DisplayInterval()
			if !ok || !se.After(rangeStart) || !ss.Before(rangeEnd) {
				continue
			}
			row.Subrows = append(row.Subrows, Span{Task: sp.Task, Subtask: st, Start: ss, End: se})
		}
		name := sp.Task.Group
		if name == "" {
			name = UngroupedBucket
		}
		rows[name] = append(rows[name], row)
	}
	var out []Bucket
	for _, g := range groups {
		out = append(out, Bucket{Group: g.Name, Rows: rows[g.Name]})
		delete(rows, g.Name)
	}
	if extra, ok := rows[UngroupedBucket]; ok {
		out = append(out, Bucket{Group: UngroupedBucket, Rows: extra})
		delete(rows, UngroupedBucket)
	}
	// Groups referenced by tasks but missing from the taxonomy still render.
	var stray []string
	for name := range rows {
		stray = append(stray, name)
	}
	sort.Strings(stray)
	for _, name := range stray {
		out = append(out, Bucket{Group: name, Rows: rows[name]})
	}
	return out
}

// BucketByDay registers every visible span once per covered day, bounded
// by the range, keyed by "YYYY-MM-DD". Multi-day items therefore land in
// each day cell they touch.
func BucketByDay(tasks []*Task, rangeStart, rangeEnd time.Time) map[string][]Span {
	byDay := make(map[string][]Span)
	for _, sp := range VisibleSpans(tasks, rangeStart, rangeEnd) {
		d := sp.Start
		if d.Before(rangeStart) {
			d = rangeStart
		}
		for d.Before(rangeEnd) && d.Before(sp.End) {
			key := FormatDate(d)
			byDay[key] = append(byDay[key], sp)
			d = d.AddDate(0, 0, 1)
		}
	}
	return byDay
}

// MaxCellItems caps how many items a day cell lists before the overflow
// counter takes over.
const MaxCellItems = 3

// CellPreview returns at most MaxCellItems spans plus the overflow count
// for a "+N meer" marker.
func CellPreview(items []Span) ([]Span, int) {
	if len(items) <= MaxCellItems {
		return items, 0
	}
	return items[:MaxCellItems], len(items) - MaxCellItems
}

// Day agenda slot geometry: one hour renders at a fixed height and events
// keep a minimum height so short blocks stay clickable.
const (
	HourSlotHeight = 56
	minEventHeight = 28
)

// EventBox is the vertical geometry of a timed event inside its starting
// hour slot.
type EventBox struct {
	Top    float64
	Height float64
}

// DayEventBox positions a timed event within the day agenda. The top
// offset is the minute fraction into the starting hour; the height covers
// the event's duration at HourSlotHeight per hour.
func DayEventBox(start, end time.Time) EventBox {
	top := float64(start.Minute()) / 60 * HourSlotHeight
	height := end.Sub(start).Hours() * HourSlotHeight
	return EventBox{Top: top, Height: math.Max(minEventHeight, height)}
}
