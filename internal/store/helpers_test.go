package store_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/slatehq/slate/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return store.NewStore(db)
}

func doc(t *testing.T, fields map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	return raw
}

func mustCreateUser(t *testing.T, s *store.Store, name, email string) *store.User {
	t.Helper()
	u, err := s.CreateUser(doc(t, map[string]any{"name": name, "email": email}))
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u
}

func mustCreateCampaign(t *testing.T, s *store.Store, name string) *store.Campaign {
	t.Helper()
	now := time.Now().UTC()
	c, err := s.CreateCampaign(doc(t, map[string]any{
		"name":      name,
		"startDate": now.AddDate(0, 0, -7).Format("2006-01-02"),
		"endDate":   now.AddDate(0, 0, 7).Format("2006-01-02"),
	}))
	if err != nil {
		t.Fatalf("CreateCampaign(%s): %v", name, err)
	}
	return c
}

func mustCreateTask(t *testing.T, s *store.Store, fields map[string]any) *store.Task {
	t.Helper()
	task, err := s.CreateTask(doc(t, fields))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func taskIDs(tasks []store.Task) []string {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}
