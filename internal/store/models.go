package store

import (
	"math"
	"time"
)

// Task statuses (Kanban columns)
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Campaign statuses
const (
	CampaignPlanning  = "planning"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
)

// User roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// TaskStatuses lists all Kanban columns in board order.
var TaskStatuses = []string{StatusTodo, StatusInProgress, StatusReview, StatusDone}

// TaskLabels is the closed set of labels a task may carry.
var TaskLabels = []string{"content", "seo", "ads", "social", "email", "event", "design", "video"}

// DefaultCampaignColor is applied when a campaign is created without one.
const DefaultCampaignColor = "#6366f1"

// User is a team member. Users are referenced weakly: deleting a user
// never cascades to their tasks or campaigns.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRef is the projection of a user embedded in task and campaign reads.
type UserRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// KPI is a campaign key performance indicator.
type KPI struct {
	Name    string  `json:"name"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
	Unit    string  `json:"unit"`
}

// Campaign is a marketing campaign. Deleting a campaign deletes all of
// its tasks.
type Campaign struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Budget      float64   `json:"budget"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Owner       *UserRef  `json:"owner"`
	Color       string    `json:"color"`
	KPIs        []KPI     `json:"kpis"`
	Progress    int       `json:"progress"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ComputeProgress returns schedule progress as a percentage of elapsed
// campaign duration: 0 before the start date, 100 after the end date.
func (c *Campaign) ComputeProgress(now time.Time) int {
	if now.Before(c.StartDate) {
		return 0
	}
	if now.After(c.EndDate) {
		return 100
	}
	total := c.EndDate.Sub(c.StartDate)
	if total <= 0 {
		return 100
	}
	elapsed := now.Sub(c.StartDate)
	return int(math.Round(float64(elapsed) / float64(total) * 100))
}

// CampaignRef is the projection of a campaign embedded in task reads.
type CampaignRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ChecklistItem is one entry of a task checklist.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Attachment is a named link attached to a task.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Comment is a user comment on a task.
type Comment struct {
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a unit of work on the Kanban board. Order positions the task
// within its (campaign, status) bucket; ties sort by createdAt descending.
type Task struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	Priority      string          `json:"priority"`
	Labels        []string        `json:"labels"`
	Campaign      *CampaignRef    `json:"campaign"`
	Assignee      *UserRef        `json:"assignee"`
	DueDate       *time.Time      `json:"dueDate"`
	ScheduledDate *time.Time      `json:"scheduledDate"`
	Order         int             `json:"order"`
	Checklist     []ChecklistItem `json:"checklist"`
	Attachments   []Attachment    `json:"attachments"`
	Comments      []Comment       `json:"comments"`
	IsOverdue     bool            `json:"isOverdue"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// computeOverdue reports whether the task is past due and not done.
func (t *Task) computeOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return now.After(*t.DueDate) && t.Status != StatusDone
}
