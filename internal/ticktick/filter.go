package ticktick

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Filter selects tasks for QueryTasks. Name describes the selection, e.g.
// "due today"; Match is evaluated against now.
type Filter struct {
	Name  string
	Match func(task Task, now time.Time) bool
}

// day returns the calendar day of t in its own location, as a UTC midnight
// so days from different offsets compare by date alone.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dueDay returns the calendar day the task is due on, in the offset its
// due date was written with.
func dueDay(task Task) (time.Time, bool) {
	due, ok := task.Due()
	if !ok {
		return time.Time{}, false
	}
	return day(due), true
}

func isDueInDays(task Task, now time.Time, days int) bool {
	d, ok := dueDay(task)
	return ok && d.Equal(day(now).AddDate(0, 0, days))
}

func isOverdue(task Task, now time.Time) bool {
	due, ok := task.Due()
	return ok && due.Before(now)
}

// All matches every task.
func All() Filter {
	return Filter{Name: "included", Match: func(Task, time.Time) bool { return true }}
}

// DueToday matches tasks due on the current calendar day.
func DueToday() Filter {
	return Filter{Name: "due today", Match: func(t Task, now time.Time) bool {
		return isDueInDays(t, now, 0)
	}}
}

// DueInDays matches tasks due exactly days days from today.
func DueInDays(days int) (Filter, error) {
	if days < 0 {
		return Filter{}, errors.New("Days must be a non-negative integer.")
	}

	name := "due today"
	switch {
	case days == 1:
		name = "due in 1 day"
	case days > 1:
		name = fmt.Sprintf("due in %d days", days)
	}
	return Filter{Name: name, Match: func(t Task, now time.Time) bool {
		return isDueInDays(t, now, days)
	}}, nil
}

// DueThisWeek matches tasks due between today and seven days from today, inclusive.
func DueThisWeek() Filter {
	return Filter{Name: "due this week", Match: func(t Task, now time.Time) bool {
		d, ok := dueDay(t)
		if !ok {
			return false
		}
		today := day(now)
		return !d.Before(today) && !d.After(today.AddDate(0, 0, 7))
	}}
}

// Overdue matches tasks whose due time has passed.
func Overdue() Filter {
	return Filter{Name: "overdue", Match: isOverdue}
}

// ByPriority matches tasks of priority p.
func ByPriority(p Priority) (Filter, error) {
	if !p.Valid() {
		return Filter{}, fmt.Errorf("Invalid priority %d. Valid values: [0, 1, 3, 5]", int(p))
	}
	return Filter{Name: fmt.Sprintf("priority '%s (%d)'", p, int(p)), Match: func(t Task, _ time.Time) bool {
		return t.Priority == p
	}}, nil
}

// Search matches tasks whose title, content or checklist item titles contain
// term, ignoring case.
func Search(term string) (Filter, error) {
	if strings.TrimSpace(term) == "" {
		return Filter{}, errors.New("Search term cannot be empty.")
	}
	needle := strings.ToLower(term)
	return Filter{Name: fmt.Sprintf("matching '%s'", term), Match: func(t Task, _ time.Time) bool {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Content), needle) {
			return true
		}
		for _, item := range t.Items {
			if strings.Contains(strings.ToLower(item.Title), needle) {
				return true
			}
		}
		return false
	}}, nil
}

// Engaged matches high priority tasks and tasks that are due today or overdue.
func Engaged() Filter {
	return Filter{Name: "engaged", Match: func(t Task, now time.Time) bool {
		return t.Priority == PriorityHigh || isOverdue(t, now) || isDueInDays(t, now, 0)
	}}
}

// Next matches medium priority tasks and tasks due tomorrow.
func Next() Filter {
	return Filter{Name: "next", Match: func(t Task, now time.Time) bool {
		return t.Priority == PriorityMedium || isDueInDays(t, now, 1)
	}}
}
