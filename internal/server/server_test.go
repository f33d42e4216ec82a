package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slatehq/slate/internal/server"
	"github.com/slatehq/slate/internal/store"
)

func testServer(t *testing.T) (*server.Server, *store.Store) {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s := store.NewStore(db)
	return server.New(s, ":0", "*"), s
}

func doRequest(t *testing.T, srv *server.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createCampaign(t *testing.T, srv *server.Server, name string) store.Campaign {
	t.Helper()
	now := time.Now().UTC()
	w := doRequest(t, srv, "POST", "/api/campaigns", map[string]any{
		"name":      name,
		"startDate": now.AddDate(0, 0, -7).Format("2006-01-02"),
		"endDate":   now.AddDate(0, 0, 7).Format("2006-01-02"),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create campaign: status = %d, body = %s", w.Code, w.Body.String())
	}
	var c store.Campaign
	decodeResponse(t, w, &c)
	return c
}

func createTask(t *testing.T, srv *server.Server, fields map[string]any) store.Task {
	t.Helper()
	w := doRequest(t, srv, "POST", "/api/tasks", fields)
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: status = %d, body = %s", w.Code, w.Body.String())
	}
	var task store.Task
	decodeResponse(t, w, &task)
	return task
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	w := doRequest(t, srv, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	decodeResponse(t, w, &resp)
	if resp["status"] != "healthy" || resp["database"] != "connected" {
		t.Errorf("health = %v", resp)
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv, _ := testServer(t)

	w := doRequest(t, srv, "POST", "/api/users", map[string]any{"name": "Maya", "email": "maya@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create user: status = %d, body = %s", w.Code, w.Body.String())
	}
	var user store.User
	decodeResponse(t, w, &user)

	c := createCampaign(t, srv, "Spring Launch")

	task := createTask(t, srv, map[string]any{
		"title":    "Draft blog post",
		"campaign": c.ID,
		"assignee": user.ID,
		"priority": "high",
		"labels":   []string{"content"},
	})
	if task.Order != 0 {
		t.Errorf("first task order = %d, want 0", task.Order)
	}
	if task.Assignee == nil || task.Assignee.ID != user.ID {
		t.Errorf("assignee = %v, want projection of %s", task.Assignee, user.ID)
	}
	if task.Campaign == nil || task.Campaign.Name != "Spring Launch" {
		t.Errorf("campaign ref = %v", task.Campaign)
	}

	// Drag onto another column.
	w = doRequest(t, srv, "PATCH", "/api/tasks/"+task.ID+"/status", map[string]any{"status": "in-progress"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status: status = %d, body = %s", w.Code, w.Body.String())
	}
	var moved store.Task
	decodeResponse(t, w, &moved)
	if moved.Status != store.StatusInProgress {
		t.Errorf("status = %q, want in-progress", moved.Status)
	}

	w = doRequest(t, srv, "GET", "/api/tasks?campaign="+c.ID+"&status=in-progress", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var tasks []store.Task
	decodeResponse(t, w, &tasks)
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Errorf("filtered list = %v", tasks)
	}

	w = doRequest(t, srv, "DELETE", "/api/tasks/"+task.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", w.Code)
	}
	w = doRequest(t, srv, "GET", "/api/tasks/"+task.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}

func TestReorderBatch(t *testing.T) {
	srv, _ := testServer(t)
	c := createCampaign(t, srv, "Launch")

	a := createTask(t, srv, map[string]any{"title": "A", "campaign": c.ID})
	b := createTask(t, srv, map[string]any{"title": "B", "campaign": c.ID})

	w := doRequest(t, srv, "PUT", "/api/tasks/reorder/batch", map[string]any{
		"tasks": []map[string]any{
			{"id": a.ID, "status": "in-progress", "order": 0},
			{"id": b.ID, "status": "todo", "order": 0},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder: status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	decodeResponse(t, w, &resp)
	if resp["message"] != "Tasks reordered" {
		t.Errorf("message = %q", resp["message"])
	}

	w = doRequest(t, srv, "GET", "/api/tasks/"+a.ID, nil)
	var got store.Task
	decodeResponse(t, w, &got)
	if got.Status != store.StatusInProgress || got.Order != 0 {
		t.Errorf("task A after reorder: status = %q, order = %d", got.Status, got.Order)
	}

	// Invalid status in a batch entry rejects the whole batch.
	w = doRequest(t, srv, "PUT", "/api/tasks/reorder/batch", map[string]any{
		"tasks": []map[string]any{{"id": a.ID, "status": "archived", "order": 0}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad reorder: status = %d, want 400", w.Code)
	}

	// So does an entry that omits "order" entirely.
	w = doRequest(t, srv, "PUT", "/api/tasks/reorder/batch", map[string]any{
		"tasks": []map[string]any{{"id": a.ID, "status": "todo"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("orderless reorder: status = %d, want 400", w.Code)
	}
}

func TestCommentEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	c := createCampaign(t, srv, "Launch")
	task := createTask(t, srv, map[string]any{"title": "A", "campaign": c.ID})

	w := doRequest(t, srv, "POST", "/api/tasks/"+task.ID+"/comments", map[string]any{"text": "looks good"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: status = %d, body = %s", w.Code, w.Body.String())
	}
	var got store.Task
	decodeResponse(t, w, &got)
	if len(got.Comments) != 1 || got.Comments[0].Text != "looks good" {
		t.Errorf("comments = %v", got.Comments)
	}

	w = doRequest(t, srv, "POST", "/api/tasks/"+task.ID+"/comments", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty comment: status = %d, want 400", w.Code)
	}
}

func TestCascadeDeleteEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	c := createCampaign(t, srv, "Doomed")
	for i := 0; i < 3; i++ {
		createTask(t, srv, map[string]any{"title": fmt.Sprintf("T%d", i), "campaign": c.ID})
	}

	w := doRequest(t, srv, "DELETE", "/api/campaigns/"+c.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete campaign: status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	decodeResponse(t, w, &resp)
	if resp["message"] != "Campaign and tasks deleted" {
		t.Errorf("message = %q", resp["message"])
	}

	w = doRequest(t, srv, "GET", "/api/tasks?campaign="+c.ID, nil)
	var tasks []store.Task
	decodeResponse(t, w, &tasks)
	if len(tasks) != 0 {
		t.Errorf("tasks after cascade = %v", tasks)
	}

	w = doRequest(t, srv, "DELETE", "/api/campaigns/"+c.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", w.Code)
	}
}

func TestValidationAndNotFoundMapping(t *testing.T) {
	srv, _ := testServer(t)

	w := doRequest(t, srv, "POST", "/api/tasks", map[string]any{"title": "no campaign"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing campaign: status = %d, want 400", w.Code)
	}
	var resp map[string]string
	decodeResponse(t, w, &resp)
	if resp["code"] != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", resp["code"])
	}

	c := createCampaign(t, srv, "Launch")
	w = doRequest(t, srv, "POST", "/api/tasks", map[string]any{"title": "bad", "campaign": c.ID, "status": "archived"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad status enum: status = %d, want 400", w.Code)
	}

	w = doRequest(t, srv, "GET", "/api/tasks/task_missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown task: status = %d, want 404", w.Code)
	}
	decodeResponse(t, w, &resp)
	if resp["code"] != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", resp["code"])
	}

	w = doRequest(t, srv, "GET", "/api/campaigns/cmp_missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown campaign: status = %d, want 404", w.Code)
	}
}

func TestCalendarEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	c := createCampaign(t, srv, "Launch")
	createTask(t, srv, map[string]any{"title": "March post", "campaign": c.ID, "scheduledDate": "2026-03-15"})
	createTask(t, srv, map[string]any{"title": "April post", "campaign": c.ID, "scheduledDate": "2026-04-02"})

	w := doRequest(t, srv, "GET", "/api/tasks/calendar?month=3&year=2026", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("calendar: status = %d, body = %s", w.Code, w.Body.String())
	}
	var tasks []store.Task
	decodeResponse(t, w, &tasks)
	if len(tasks) != 1 || tasks[0].Title != "March post" {
		t.Errorf("calendar tasks = %v", tasks)
	}

	w = doRequest(t, srv, "GET", "/api/tasks/calendar?month=13&year=2026", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("month 13: status = %d, want 400", w.Code)
	}
	w = doRequest(t, srv, "GET", "/api/tasks/calendar?month=3", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing year: status = %d, want 400", w.Code)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	c := createCampaign(t, srv, "Launch")
	createTask(t, srv, map[string]any{"title": "A", "campaign": c.ID})
	createTask(t, srv, map[string]any{"title": "B", "campaign": c.ID, "status": "done"})

	w := doRequest(t, srv, "GET", "/api/stats/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: status = %d, body = %s", w.Code, w.Body.String())
	}
	var stats store.DashboardStats
	decodeResponse(t, w, &stats)
	if stats.Summary.TotalTasks != 2 || stats.Summary.CompletedTasks != 1 {
		t.Errorf("summary = %+v", stats.Summary)
	}
	if stats.Summary.TotalCampaigns != 1 {
		t.Errorf("total campaigns = %d, want 1", stats.Summary.TotalCampaigns)
	}
}

func TestCampaignAnalyticsEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	c := createCampaign(t, srv, "Launch")
	createTask(t, srv, map[string]any{"title": "A", "campaign": c.ID, "labels": []string{"content"}})
	createTask(t, srv, map[string]any{"title": "B", "campaign": c.ID, "status": "done"})

	w := doRequest(t, srv, "GET", "/api/stats/campaigns/"+c.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("analytics: status = %d, body = %s", w.Code, w.Body.String())
	}
	var got store.CampaignAnalytics
	decodeResponse(t, w, &got)
	if got.TaskStats.Total != 2 || got.TaskStats.ByStatus["done"] != 1 {
		t.Errorf("task stats = %+v", got.TaskStats)
	}
	if got.TaskStats.ByLabel["content"] != 1 {
		t.Errorf("byLabel = %v", got.TaskStats.ByLabel)
	}

	w = doRequest(t, srv, "GET", "/api/stats/campaigns/cmp_missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown campaign analytics: status = %d, want 404", w.Code)
	}
}

func TestCampaignDetailIncludesTaskStats(t *testing.T) {
	srv, _ := testServer(t)
	c := createCampaign(t, srv, "Launch")
	createTask(t, srv, map[string]any{"title": "A", "campaign": c.ID})

	w := doRequest(t, srv, "GET", "/api/campaigns/"+c.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get campaign: status = %d", w.Code)
	}
	var resp struct {
		store.Campaign
		TaskStats map[string]int `json:"taskStats"`
	}
	decodeResponse(t, w, &resp)
	if resp.TaskStats["todo"] != 1 {
		t.Errorf("taskStats = %v", resp.TaskStats)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest("OPTIONS", "/api/tasks", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("preflight: status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow-origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
