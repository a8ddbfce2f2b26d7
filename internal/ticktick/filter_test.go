package ticktick

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// now is 2025-03-10 15:00 UTC throughout the filter tests.
var filterNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func taskDue(offsetDays int, hour int) Task {
	due := time.Date(2025, 3, 10+offsetDays, hour, 0, 0, 0, time.UTC)
	return Task{ID: "t", Title: "task", DueDate: due.Format(DateLayout)}
}

func TestTaskDue(t *testing.T) {
	due, ok := Task{DueDate: "2025-03-10T09:30:00.000+0000"}.Due()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), due.UTC())

	_, ok = Task{}.Due()
	assert.False(t, ok)

	_, ok = Task{DueDate: "tomorrow"}.Due()
	assert.False(t, ok)
}

func TestDueFilters(t *testing.T) {
	in3, err := DueInDays(3)
	require.NoError(t, err)
	tomorrow, err := DueInDays(1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		task   Task
		want   bool
	}{
		{"today matches earlier today", DueToday(), taskDue(0, 1), true},
		{"today matches later today", DueToday(), taskDue(0, 23), true},
		{"today ignores tomorrow", DueToday(), taskDue(1, 9), false},
		{"today ignores no due date", DueToday(), Task{}, false},
		{"in 3 days", in3, taskDue(3, 9), true},
		{"in 3 days ignores 2", in3, taskDue(2, 9), false},
		{"week includes today", DueThisWeek(), taskDue(0, 9), true},
		{"week includes day 7", DueThisWeek(), taskDue(7, 23), true},
		{"week excludes day 8", DueThisWeek(), taskDue(8, 0), false},
		{"week excludes yesterday", DueThisWeek(), taskDue(-1, 9), false},
		{"overdue earlier today", Overdue(), taskDue(0, 9), true},
		{"not overdue later today", Overdue(), taskDue(0, 18), false},
		{"overdue last week", Overdue(), taskDue(-7, 9), true},
		{"unparsable is never overdue", Overdue(), Task{DueDate: "soon"}, false},
		{"own offset day ahead of UTC", DueToday(), Task{DueDate: "2025-03-11T01:00:00.000+0800"}, false},
		{"own offset day ahead of UTC is tomorrow", tomorrow, Task{DueDate: "2025-03-11T01:00:00.000+0800"}, true},
		{"own offset day behind UTC", DueToday(), Task{DueDate: "2025-03-09T22:00:00.000-0500"}, false},
		{"own offset today", DueToday(), Task{DueDate: "2025-03-10T20:00:00.000-0500"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.task, filterNow))
		})
	}
}

func TestDueInDays_Negative(t *testing.T) {
	_, err := DueInDays(-1)
	assert.EqualError(t, err, "Days must be a non-negative integer.")
}

func TestDueInDays_Name(t *testing.T) {
	f0, _ := DueInDays(0)
	f1, _ := DueInDays(1)
	f5, _ := DueInDays(5)
	assert.Equal(t, "due today", f0.Name)
	assert.Equal(t, "due in 1 day", f1.Name)
	assert.Equal(t, "due in 5 days", f5.Name)
}

func TestByPriority(t *testing.T) {
	f, err := ByPriority(PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, "priority 'High (5)'", f.Name)
	assert.True(t, f.Match(Task{Priority: PriorityHigh}, filterNow))
	assert.False(t, f.Match(Task{Priority: PriorityLow}, filterNow))

	_, err = ByPriority(4)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	f, err := Search("MiLk")
	require.NoError(t, err)

	assert.True(t, f.Match(Task{Title: "Buy milk"}, filterNow))
	assert.True(t, f.Match(Task{Title: "Groceries", Content: "oat MILK"}, filterNow))
	assert.True(t, f.Match(Task{Title: "Groceries", Items: []ChecklistItem{{Title: "eggs"}, {Title: "milk"}}}, filterNow))
	assert.False(t, f.Match(Task{Title: "Groceries", Content: "bread"}, filterNow))

	_, err = Search("   ")
	assert.EqualError(t, err, "Search term cannot be empty.")
}

func TestEngagedAndNext(t *testing.T) {
	engaged := Engaged()
	assert.True(t, engaged.Match(Task{Priority: PriorityHigh}, filterNow))
	assert.True(t, engaged.Match(taskDue(0, 20), filterNow), "due later today")
	assert.True(t, engaged.Match(taskDue(-2, 9), filterNow), "overdue")
	assert.False(t, engaged.Match(taskDue(1, 9), filterNow))
	assert.False(t, engaged.Match(Task{Priority: PriorityMedium}, filterNow))

	next := Next()
	assert.True(t, next.Match(Task{Priority: PriorityMedium}, filterNow))
	assert.True(t, next.Match(taskDue(1, 9), filterNow))
	assert.False(t, next.Match(taskDue(0, 20), filterNow))
	assert.False(t, next.Match(Task{Priority: PriorityHigh}, filterNow))
}

func TestAll(t *testing.T) {
	assert.True(t, All().Match(Task{}, filterNow))
}
