package domain

import (
	"fmt"
	"sort"
	"time"
)

// Notification rules. The rule name is part of the dedup key, so each
// (item, rule) pair yields at most one entry per build.
const (
	RuleStartSoon2  = "t-2"
	RuleStartSoon1  = "t-1"
	RuleStartsToday = "t-0"
	RuleOverdue     = "overdue"
	RuleBlocked     = "blocked"
)

// Notification is one actionable reminder derived from the task list.
type Notification struct {
	Key       string
	Rule      string
	TaskID    string
	SubtaskID string
	Title     string
	Message   string
	Priority  int
}

const (
	priStartSoon2  = 40
	priStartSoon1  = 50
	priBlocked     = 55
	priStartsToday = 60
	priOverdueBase = 70
	priOverdueMax  = 100
)

// BuildNotifications derives the notification list from the tasks at a
// point in time. It is pure and recomputed on demand; dismissal filtering
// is the caller's concern. Entries come back sorted by priority, highest
// first.
func BuildNotifications(tasks []*Task, now time.Time) []Notification {
	today := Midnight(now)
	var out []Notification
	seen := make(map[string]bool)
	add := func(n Notification) {
		if seen[n.Key] {
			return
		}
		seen[n.Key] = true
		out = append(out, n)
	}

	for _, t := range tasks {
		if !t.Status.IsTerminal() {
			if start, ok := t.Scheduled.StartTime(); ok {
				switch daysUntil(today, start) {
				case 2:
					add(Notification{
						Key:      "task:" + t.ID + ":" + RuleStartSoon2,
						Rule:     RuleStartSoon2,
						TaskID:   t.ID,
						Title:    t.Title,
						Message:  "Start over 2 dagen",
						Priority: priStartSoon2,
					})
				case 1:
					add(Notification{
						Key:      "task:" + t.ID + ":" + RuleStartSoon1,
						Rule:     RuleStartSoon1,
						TaskID:   t.ID,
						Title:    t.Title,
						Message:  "Start morgen",
						Priority: priStartSoon1,
					})
				case 0:
					if t.Status == StatusScheduled {
						add(Notification{
							Key:      "task:" + t.ID + ":" + RuleStartsToday,
							Rule:     RuleStartsToday,
							TaskID:   t.ID,
							Title:    t.Title,
							Message:  "Start vandaag",
							Priority: priStartsToday,
						})
					}
				}
			}
			if _, de, ok := t.Scheduled.DisplayInterval(); ok && !now.Before(de) {
				over := int(now.Sub(de).Hours() / 24)
				pri := priOverdueBase + over*5
				if pri > priOverdueMax {
					pri = priOverdueMax
				}
				msg := "Eindtijd verstreken"
				if over > 0 {
					msg = fmt.Sprintf("Eindtijd %d dagen verstreken", over)
				}
				add(Notification{
					Key:      "task:" + t.ID + ":" + RuleOverdue,
					Rule:     RuleOverdue,
					TaskID:   t.ID,
					Title:    t.Title,
					Message:  msg,
					Priority: pri,
				})
			}
		}
		if t.Status.IsBlocked() {
			add(Notification{
				Key:      "task:" + t.ID + ":" + RuleBlocked,
				Rule:     RuleBlocked,
				TaskID:   t.ID,
				Title:    t.Title,
				Message:  string(t.Status),
				Priority: priBlocked,
			})
		}

		for i := range t.Subtasks {
			st := &t.Subtasks[i]
			if st.Status == SubtaskDone {
				continue
			}
			start, ok := st.Scheduled.StartTime()
			if !ok {
				continue
			}
			var rule, msg string
			var pri int
			switch daysUntil(today, start) {
			case 2:
				rule, msg, pri = RuleStartSoon2, "Start over 2 dagen", priStartSoon2
			case 1:
				rule, msg, pri = RuleStartSoon1, "Start morgen", priStartSoon1
			case 0:
				rule, msg, pri = RuleStartsToday, "Start vandaag", priStartsToday
			default:
				continue
			}
			add(Notification{
				Key:       "sub:" + st.ID + ":" + rule,
				Rule:      rule,
				TaskID:    t.ID,
				SubtaskID: st.ID,
				Title:     t.Title + " · " + st.Title,
				Message:   msg,
				Priority:  pri,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// daysUntil counts whole calendar days from today's midnight to the day
// the instant falls on. Negative for past days.
func daysUntil(today, at time.Time) int {
	return int(Midnight(at).Sub(today).Hours() / 24)
}
