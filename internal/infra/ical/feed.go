// Package ical renders the derived calendar feed in RFC 5545 format.
package ical

import (
	"bytes"
	"strings"

	"github.com/mvdberg/klusplan/internal/domain"
)

const (
	prodID = "-//Klusplan//NL"
	// maxLineOctets is the RFC 5545 content line limit before folding.
	maxLineOctets = 75
)

// Renderer emits one VEVENT per scheduled task and per independently
// scheduled subtask. Items excluded from the feed or without a start are
// skipped.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render produces the full feed as CRLF-delimited bytes.
func (r *Renderer) Render(tasks []*domain.Task, people []*domain.Person) []byte {
	var buf bytes.Buffer
	writeLine(&buf, "BEGIN:VCALENDAR")
	writeLine(&buf, "VERSION:2.0")
	writeLine(&buf, "PRODID:"+prodID)
	writeLine(&buf, "CALSCALE:GREGORIAN")

	for _, t := range tasks {
		if !t.InCalendarFeed() || !t.Scheduled.HasStart() {
			continue
		}
		writeEvent(&buf, event{
			uid:      t.ID + "@klusplan",
			summary:  t.Title,
			location: t.Location,
			schedule: t.Scheduled,
			done:     t.Status == domain.StatusDone,
			desc:     taskDescription(t, people),
		})
		for i := range t.Subtasks {
			sub := &t.Subtasks[i]
			if sub.InCalendar != nil && !*sub.InCalendar {
				continue
			}
			if !sub.Scheduled.HasStart() {
				continue
			}
			writeEvent(&buf, event{
				uid:      sub.ID + "@klusplan",
				summary:  t.Title + " · " + sub.Title,
				location: t.Location,
				schedule: sub.Scheduled,
				done:     sub.Status == domain.SubtaskDone,
				desc:     taskDescription(t, people),
			})
		}
	}

	writeLine(&buf, "END:VCALENDAR")
	return buf.Bytes()
}

// event carries one VEVENT's fields.
// Fields are ordered to minimize memory padding.
type event struct {
	uid      string
	summary  string
	location string
	desc     string
	schedule domain.Schedule
	done     bool
}

func writeEvent(buf *bytes.Buffer, ev event) {
	start, ok := ev.schedule.StartTime()
	if !ok {
		return
	}
	_, end, ok := ev.schedule.DisplayInterval()
	if !ok {
		return
	}

	writeLine(buf, "BEGIN:VEVENT")
	writeLine(buf, "UID:"+escapeText(ev.uid))
	if ev.schedule.AllDay {
		// DisplayInterval already yields the exclusive end date.
		writeLine(buf, "DTSTART;VALUE=DATE:"+start.Format("20060102"))
		writeLine(buf, "DTEND;VALUE=DATE:"+end.Format("20060102"))
	} else {
		writeLine(buf, "DTSTART:"+start.Format("20060102T150405"))
		writeLine(buf, "DTEND:"+end.Format("20060102T150405"))
	}
	writeLine(buf, "SUMMARY:"+escapeText(ev.summary))
	if ev.location != "" {
		writeLine(buf, "LOCATION:"+escapeText(ev.location))
	}
	if ev.desc != "" {
		writeLine(buf, "DESCRIPTION:"+escapeText(ev.desc))
	}
	status := "CONFIRMED"
	if ev.done {
		status = "COMPLETED"
	}
	writeLine(buf, "STATUS:"+status)
	writeLine(buf, "END:VEVENT")
}

// taskDescription joins the informative task fields into one block.
func taskDescription(t *domain.Task, people []*domain.Person) string {
	var parts []string
	if t.Group != "" {
		parts = append(parts, "Groep: "+t.Group)
	}
	if len(t.Assignees) > 0 {
		names := make([]string, 0, len(t.Assignees))
		for _, id := range t.Assignees {
			names = append(names, domain.PersonName(people, id))
		}
		parts = append(parts, "Uitvoerder: "+strings.Join(names, ", "))
	}
	if t.DefinitionOfDone != "" {
		parts = append(parts, "DoD: "+t.DefinitionOfDone)
	}
	if t.Notes != "" {
		parts = append(parts, t.Notes)
	}
	return strings.Join(parts, "\n")
}

// escapeText escapes the characters RFC 5545 reserves in TEXT values.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// writeLine folds content lines longer than 75 octets with a CRLF plus
// single-space continuation.
func writeLine(buf *bytes.Buffer, line string) {
	raw := []byte(line)
	limit := maxLineOctets
	for len(raw) > limit {
		cut := limit
		// Never split inside a UTF-8 sequence.
		for cut > 1 && raw[cut]&0xC0 == 0x80 {
			cut--
		}
		buf.Write(raw[:cut])
		buf.WriteString("\r\n ")
		raw = raw[cut:]
		// Continuation lines lose one octet to the leading space.
		limit = maxLineOctets - 1
	}
	buf.Write(raw)
	buf.WriteString("\r\n")
}
