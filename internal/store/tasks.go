package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.labels,
	t.due_date, t.scheduled_date, t.position, t.checklist, t.attachments, t.comments,
	t.created_at, t.updated_at,
	c.id, c.name, c.color,
	u.id, u.name, u.email, u.avatar`

const taskJoin = `FROM tasks t
	LEFT JOIN campaigns c ON c.id = t.campaign_id
	LEFT JOIN users u ON u.id = t.assignee_id`

// taskOrder places tasks by their position within the bucket; duplicate
// positions fall back to newest-first.
const taskOrder = "ORDER BY t.position ASC, t.created_at DESC"

type taskDoc struct {
	Title         *string         `json:"title"`
	Description   *string         `json:"description"`
	Status        *string         `json:"status"`
	Priority      *string         `json:"priority"`
	Labels        []string        `json:"labels"`
	Campaign      *string         `json:"campaign"`
	Assignee      *string         `json:"assignee"`
	DueDate       *string         `json:"dueDate"`
	ScheduledDate *string         `json:"scheduledDate"`
	Order         *int            `json:"order"`
	Checklist     []ChecklistItem `json:"checklist"`
	Attachments   []Attachment    `json:"attachments"`
}

// TaskFilter restricts ListTasks. Zero values mean "no constraint".
type TaskFilter struct {
	Campaign      string
	Status        string
	Assignee      string
	Label         string
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}

// CreateTask inserts a new task at the end of its (campaign, status)
// bucket: order becomes max(order)+1 among bucket siblings, or 0 for an
// empty bucket. Existing tasks are never repositioned.
func (s *Store) CreateTask(doc json.RawMessage) (*Task, error) {
	if err := validateDocument(taskCreateSchema, doc); err != nil {
		return nil, err
	}
	var req taskDoc
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, &ValidationError{Message: "invalid JSON body"}
	}

	dueDate, err := parseNullableDate("dueDate", req.DueDate)
	if err != nil {
		return nil, err
	}
	scheduledDate, err := parseNullableDate("scheduledDate", req.ScheduledDate)
	if err != nil {
		return nil, err
	}

	status := StatusTodo
	if req.Status != nil {
		status = *req.Status
	}
	priority := PriorityMedium
	if req.Priority != nil {
		priority = *req.Priority
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	var assigneeID *string
	if req.Assignee != nil && *req.Assignee != "" {
		assigneeID = req.Assignee
	}
	if req.Labels == nil {
		req.Labels = []string{}
	}
	if req.Checklist == nil {
		req.Checklist = []ChecklistItem{}
	}
	if req.Attachments == nil {
		req.Attachments = []Attachment{}
	}

	labelsJSON, _ := json.Marshal(req.Labels)
	checklistJSON, _ := json.Marshal(req.Checklist)
	attachmentsJSON, _ := json.Marshal(req.Attachments)

	id := NewTaskID()
	now := timeToString(time.Now().UTC())

	// The scalar subquery computes the append position atomically with
	// the insert; the write connection serializes concurrent creates.
	_, err = s.writer.Execute(
		`INSERT INTO tasks (id, title, description, status, priority, labels,
			campaign_id, assignee_id, due_date, scheduled_date, position,
			checklist, attachments, comments, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE campaign_id = ? AND status = ?),
			?, ?, '[]', ?, ?)`,
		id, strings.TrimSpace(*req.Title), description, status, priority, string(labelsJSON),
		*req.Campaign, assigneeID, nullableTimeToString(dueDate), nullableTimeToString(scheduledDate),
		*req.Campaign, status,
		string(checklistJSON), string(attachmentsJSON), now, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, validationf("campaign", "campaign does not exist")
		}
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(id)
}

// ListTasks returns tasks matching the filter, sorted by position within
// each bucket and newest-first on ties.
func (s *Store) ListTasks(filter TaskFilter) ([]Task, error) {
	where := []string{}
	args := []interface{}{}

	if filter.Campaign != "" {
		where = append(where, "t.campaign_id = ?")
		args = append(args, filter.Campaign)
	}
	if filter.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Assignee != "" {
		where = append(where, "t.assignee_id = ?")
		args = append(args, filter.Assignee)
	}
	if filter.Label != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(t.labels) WHERE json_each.value = ?)")
		args = append(args, filter.Label)
	}
	if filter.ScheduledFrom != nil && filter.ScheduledTo != nil {
		where = append(where, "t.scheduled_date IS NOT NULL AND date(t.scheduled_date) >= date(?) AND date(t.scheduled_date) <= date(?)")
		args = append(args, timeToString(*filter.ScheduledFrom), timeToString(*filter.ScheduledTo))
	}

	query := "SELECT " + taskColumns + " " + taskJoin
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " " + taskOrder

	return s.queryTasks(query, args...)
}

// GetTask returns one task by ID with campaign and assignee projections.
func (s *Store) GetTask(id string) (*Task, error) {
	row := s.db.Read.QueryRow("SELECT "+taskColumns+" "+taskJoin+" WHERE t.id = ?", id)
	t, err := scanTask(row, time.Now().UTC())
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return t, err
}

// UpdateTask applies a partial update to a task.
func (s *Store) UpdateTask(id string, doc json.RawMessage) (*Task, error) {
	if err := validateDocument(taskUpdateSchema, doc); err != nil {
		return nil, err
	}
	var req taskDoc
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, &ValidationError{Message: "invalid JSON body"}
	}

	sets := []string{"updated_at = ?"}
	args := []interface{}{timeToString(time.Now().UTC())}
	if req.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *req.Status)
	}
	if req.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *req.Priority)
	}
	if req.Labels != nil {
		labelsJSON, _ := json.Marshal(req.Labels)
		sets = append(sets, "labels = ?")
		args = append(args, string(labelsJSON))
	}
	if req.Campaign != nil {
		sets = append(sets, "campaign_id = ?")
		args = append(args, *req.Campaign)
	}
	if req.Assignee != nil {
		sets = append(sets, "assignee_id = ?")
		if *req.Assignee == "" {
			args = append(args, nil)
		} else {
			args = append(args, *req.Assignee)
		}
	}
	if req.DueDate != nil {
		due, err := parseNullableDate("dueDate", req.DueDate)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "due_date = ?")
		args = append(args, nullableTimeToString(due))
	}
	if req.ScheduledDate != nil {
		scheduled, err := parseNullableDate("scheduledDate", req.ScheduledDate)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "scheduled_date = ?")
		args = append(args, nullableTimeToString(scheduled))
	}
	if req.Order != nil {
		sets = append(sets, "position = ?")
		args = append(args, *req.Order)
	}
	if req.Checklist != nil {
		checklistJSON, _ := json.Marshal(req.Checklist)
		sets = append(sets, "checklist = ?")
		args = append(args, string(checklistJSON))
	}
	if req.Attachments != nil {
		attachmentsJSON, _ := json.Marshal(req.Attachments)
		sets = append(sets, "attachments = ?")
		args = append(args, string(attachmentsJSON))
	}
	args = append(args, id)

	res, err := s.writer.Execute("UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, validationf("campaign", "campaign does not exist")
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetTask(id)
}

// UpdateTaskStatus sets status and position on a single task, the write
// behind a drag-and-drop column move. Siblings in the source and
// destination buckets are not renumbered; the client follows up with
// ReorderTasks to keep positions coherent.
func (s *Store) UpdateTaskStatus(id string, doc json.RawMessage) (*Task, error) {
	if err := validateDocument(statusUpdateSchema, doc); err != nil {
		return nil, err
	}
	var req struct {
		Status string `json:"status"`
		Order  *int   `json:"order"`
	}
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, &ValidationError{Message: "invalid JSON body"}
	}

	sets := []string{"status = ?", "updated_at = ?"}
	args := []interface{}{req.Status, timeToString(time.Now().UTC())}
	if req.Order != nil {
		sets = append(sets, "position = ?")
		args = append(args, *req.Order)
	}
	args = append(args, id)

	res, err := s.writer.Execute("UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetTask(id)
}

// ReorderEntry is one task move within a batch reorder.
type ReorderEntry struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Order  int    `json:"order"`
}

// ReorderTasks applies a batch of status/position updates in a single
// transaction. The document is validated as received, so entries missing
// id, status, or order are rejected rather than defaulted. Entries
// referencing unknown task IDs are skipped; the caller only observes
// aggregate success or failure.
func (s *Store) ReorderTasks(doc json.RawMessage) error {
	if err := validateDocument(reorderSchema, doc); err != nil {
		return err
	}
	var req struct {
		Tasks []ReorderEntry `json:"tasks"`
	}
	if err := json.Unmarshal(doc, &req); err != nil {
		return &ValidationError{Message: "invalid JSON body"}
	}
	entries := req.Tasks

	now := timeToString(time.Now().UTC())
	return s.writer.ExecuteTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("UPDATE tasks SET status = ?, position = ?, updated_at = ? WHERE id = ?")
		if err != nil {
			return fmt.Errorf("prepare reorder: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.Exec(e.Status, e.Order, now, e.ID); err != nil {
				return fmt.Errorf("reorder task %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// AddComment appends a comment to a task's comment sequence.
func (s *Store) AddComment(id string, doc json.RawMessage) (*Task, error) {
	if err := validateDocument(commentCreateSchema, doc); err != nil {
		return nil, err
	}
	var req struct {
		User string `json:"user"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, &ValidationError{Message: "invalid JSON body"}
	}

	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comments := append(task.Comments, Comment{User: req.User, Text: req.Text, CreatedAt: now})
	commentsJSON, err := json.Marshal(comments)
	if err != nil {
		return nil, fmt.Errorf("marshal comments: %w", err)
	}

	_, err = s.writer.Execute(
		"UPDATE tasks SET comments = ?, updated_at = ? WHERE id = ?",
		string(commentsJSON), timeToString(now), id,
	)
	if err != nil {
		return nil, fmt.Errorf("append comment: %w", err)
	}
	return s.GetTask(id)
}

// DeleteTask removes a single task.
func (s *Store) DeleteTask(id string) error {
	res, err := s.writer.Execute("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountTasks returns the total number of tasks.
func (s *Store) CountTasks() (int, error) {
	var n int
	err := s.db.Read.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n)
	return n, err
}

func (s *Store) queryTasks(query string, args ...interface{}) ([]Task, error) {
	rows, err := s.db.Read.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows, now)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(row rowScanner, now time.Time) (*Task, error) {
	var t Task
	var labelsJSON, checklistJSON, attachmentsJSON, commentsJSON string
	var dueDate, scheduledDate sql.NullString
	var createdAt, updatedAt string
	var campaignID, campaignName, campaignColor sql.NullString
	var assigneeID, assigneeName, assigneeEmail, assigneeAvatar sql.NullString

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &labelsJSON,
		&dueDate, &scheduledDate, &t.Order, &checklistJSON, &attachmentsJSON, &commentsJSON,
		&createdAt, &updatedAt,
		&campaignID, &campaignName, &campaignColor,
		&assigneeID, &assigneeName, &assigneeEmail, &assigneeAvatar,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		t.DueDate = parseStoredNullableTime(&dueDate.String)
	}
	if scheduledDate.Valid {
		t.ScheduledDate = parseStoredNullableTime(&scheduledDate.String)
	}
	t.CreatedAt = parseStoredTime(createdAt)
	t.UpdatedAt = parseStoredTime(updatedAt)

	if err := json.Unmarshal([]byte(labelsJSON), &t.Labels); err != nil {
		return nil, fmt.Errorf("unmarshal labels for %s: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(checklistJSON), &t.Checklist); err != nil {
		return nil, fmt.Errorf("unmarshal checklist for %s: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(attachmentsJSON), &t.Attachments); err != nil {
		return nil, fmt.Errorf("unmarshal attachments for %s: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(commentsJSON), &t.Comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments for %s: %w", t.ID, err)
	}
	if t.Labels == nil {
		t.Labels = []string{}
	}
	if t.Checklist == nil {
		t.Checklist = []ChecklistItem{}
	}
	if t.Attachments == nil {
		t.Attachments = []Attachment{}
	}
	if t.Comments == nil {
		t.Comments = []Comment{}
	}

	if campaignID.Valid {
		t.Campaign = &CampaignRef{ID: campaignID.String, Name: campaignName.String, Color: campaignColor.String}
	}
	if assigneeID.Valid {
		t.Assignee = &UserRef{
			ID:     assigneeID.String,
			Name:   assigneeName.String,
			Email:  assigneeEmail.String,
			Avatar: assigneeAvatar.String,
		}
	}

	t.IsOverdue = t.computeOverdue(now)
	return &t, nil
}
