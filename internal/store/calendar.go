package store

import (
	"fmt"
	"time"
)

// TasksForDate returns all tasks scheduled on the given calendar day.
// Both the stored timestamp and the query value are truncated to day
// granularity, so time-of-day never causes a boundary mismatch. Tasks
// without a scheduledDate are never returned.
func (s *Store) TasksForDate(day time.Time) ([]Task, error) {
	return s.queryTasks(
		"SELECT "+taskColumns+" "+taskJoin+
			" WHERE t.scheduled_date IS NOT NULL AND date(t.scheduled_date) = date(?)"+
			" ORDER BY t.scheduled_date ASC",
		timeToString(day),
	)
}

// TasksForMonth returns all tasks scheduled within the given month,
// inclusive of the first and last day, sorted by scheduled date.
func (s *Store) TasksForMonth(month, year int) ([]Task, error) {
	if month < 1 || month > 12 {
		return nil, validationf("month", fmt.Sprintf("month out of range: %d", month))
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	return s.queryTasks(
		"SELECT "+taskColumns+" "+taskJoin+
			" WHERE t.scheduled_date IS NOT NULL AND date(t.scheduled_date) >= date(?) AND date(t.scheduled_date) <= date(?)"+
			" ORDER BY t.scheduled_date ASC",
		timeToString(first), timeToString(last),
	)
}

// RescheduleTask sets a task's scheduledDate without touching status or
// position. A nil date clears the schedule.
func (s *Store) RescheduleTask(id string, date *time.Time) (*Task, error) {
	res, err := s.writer.Execute(
		"UPDATE tasks SET scheduled_date = ?, updated_at = ? WHERE id = ?",
		nullableTimeToString(date), timeToString(time.Now().UTC()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("reschedule task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetTask(id)
}
