package store_test

import (
	"testing"
	"time"

	"github.com/slatehq/slate/internal/store"
)

func TestTasksForDateTruncatesToDay(t *testing.T) {
	s := testStore(t)
	c := mustCreateCampaign(t, s, "Calendar")

	late := mustCreateTask(t, s, map[string]any{
		"title": "Late in the day", "campaign": c.ID, "scheduledDate": "2026-03-05T23:30:00Z",
	})
	early := mustCreateTask(t, s, map[string]any{
		"title": "Early", "campaign": c.ID, "scheduledDate": "2026-03-05T00:15:00Z",
	})
	mustCreateTask(t, s, map[string]any{
		"title": "Next day", "campaign": c.ID, "scheduledDate": "2026-03-06",
	})
	mustCreateTask(t, s, map[string]any{"title": "Unscheduled", "campaign": c.ID})

	day := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	tasks, err := s.TasksForDate(day)
	if err != nil {
		t.Fatalf("TasksForDate: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("TasksForDate returned %v, want [%s %s]", taskIDs(tasks), early.ID, late.ID)
	}
	for _, task := range tasks {
		if task.ID != late.ID && task.ID != early.ID {
			t.Errorf("unexpected task %s on 2026-03-05", task.ID)
		}
	}
}

func TestTasksForMonthBoundaries(t *testing.T) {
	s := testStore(t)
	c := mustCreateCampaign(t, s, "Calendar")

	first := mustCreateTask(t, s, map[string]any{"title": "First", "campaign": c.ID, "scheduledDate": "2026-03-01"})
	last := mustCreateTask(t, s, map[string]any{"title": "Last", "campaign": c.ID, "scheduledDate": "2026-03-31T23:59:00Z"})
	mid := mustCreateTask(t, s, map[string]any{"title": "Mid", "campaign": c.ID, "scheduledDate": "2026-03-15"})
	mustCreateTask(t, s, map[string]any{"title": "February", "campaign": c.ID, "scheduledDate": "2026-02-28"})
	mustCreateTask(t, s, map[string]any{"title": "April", "campaign": c.ID, "scheduledDate": "2026-04-01"})

	tasks, err := s.TasksForMonth(3, 2026)
	if err != nil {
		t.Fatalf("TasksForMonth: %v", err)
	}
	want := []string{first.ID, mid.ID, last.ID}
	got := taskIDs(tasks)
	if len(got) != len(want) {
		t.Fatalf("TasksForMonth returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month order[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTasksForMonthRejectsBadMonth(t *testing.T) {
	s := testStore(t)
	if _, err := s.TasksForMonth(13, 2026); !store.IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestRescheduleLeavesStatusAndOrder(t *testing.T) {
	s := testStore(t)
	c := mustCreateCampaign(t, s, "Calendar")
	task := mustCreateTask(t, s, map[string]any{"title": "Move date", "campaign": c.ID, "status": "review"})

	when := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	got, err := s.RescheduleTask(task.ID, &when)
	if err != nil {
		t.Fatalf("RescheduleTask: %v", err)
	}
	if got.ScheduledDate == nil || !got.ScheduledDate.Equal(when) {
		t.Errorf("scheduledDate = %v, want %v", got.ScheduledDate, when)
	}
	if got.Status != task.Status || got.Order != task.Order {
		t.Errorf("reschedule touched (%s, %d), was (%s, %d)",
			got.Status, got.Order, task.Status, task.Order)
	}

	cleared, err := s.RescheduleTask(task.ID, nil)
	if err != nil {
		t.Fatalf("RescheduleTask(nil): %v", err)
	}
	if cleared.ScheduledDate != nil {
		t.Errorf("scheduledDate = %v, want nil after clear", cleared.ScheduledDate)
	}
}
