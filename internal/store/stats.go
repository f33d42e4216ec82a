package store

import (
	"fmt"
	"math"
	"time"
)

// Aggregator limits. Everything here is recomputed per call; there is no
// cache to invalidate.
const (
	dueSoonWindowDays   = 7
	dueSoonLimit        = 10
	overdueLimit        = 10
	activeCampaignLimit = 5
	recentActivityLimit = 10
)

// DashboardSummary holds the headline counts.
type DashboardSummary struct {
	TotalTasks     int `json:"totalTasks"`
	TotalCampaigns int `json:"totalCampaigns"`
	TotalUsers     int `json:"totalUsers"`
	CompletedTasks int `json:"completedTasks"`
}

// CampaignTaskBreakdown summarizes a campaign's tasks per board column.
type CampaignTaskBreakdown struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	InProgress int `json:"inProgress"`
	Todo       int `json:"todo"`
}

// CampaignProgress is a campaign annotated with its task breakdown; the
// progress field is overridden with task completion (done/total) rather
// than schedule elapsed.
type CampaignProgress struct {
	Campaign
	TaskStats CampaignTaskBreakdown `json:"taskStats"`
}

// WorkloadEntry is one user's count of open assigned tasks.
type WorkloadEntry struct {
	UserID    string `json:"id"`
	Name      string `json:"name"`
	TaskCount int    `json:"taskCount"`
}

// DashboardStats is the full dashboard payload.
type DashboardStats struct {
	Summary         DashboardSummary   `json:"summary"`
	TasksByStatus   map[string]int     `json:"tasksByStatus"`
	TasksByPriority map[string]int     `json:"tasksByPriority"`
	TasksDueSoon    []Task             `json:"tasksDueSoon"`
	OverdueTasks    []Task             `json:"overdueTasks"`
	ActiveCampaigns []CampaignProgress `json:"activeCampaigns"`
	RecentActivity  []Task             `json:"recentActivity"`
	TeamWorkload    []WorkloadEntry    `json:"teamWorkload"`
}

// Dashboard computes the dashboard payload by scanning the task,
// campaign, and user collections.
func (s *Store) Dashboard() (*DashboardStats, error) {
	out := &DashboardStats{}

	byStatus, err := s.countTasksBy("status", "")
	if err != nil {
		return nil, err
	}
	out.TasksByStatus = byStatus

	byPriority, err := s.countTasksBy("priority", "status != 'done'")
	if err != nil {
		return nil, err
	}
	out.TasksByPriority = byPriority

	totalTasks, err := s.CountTasks()
	if err != nil {
		return nil, err
	}
	totalCampaigns, err := s.CountCampaigns()
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.CountUsers()
	if err != nil {
		return nil, err
	}
	out.Summary = DashboardSummary{
		TotalTasks:     totalTasks,
		TotalCampaigns: totalCampaigns,
		TotalUsers:     totalUsers,
		CompletedTasks: byStatus[StatusDone],
	}

	today := time.Now().UTC()
	horizon := today.AddDate(0, 0, dueSoonWindowDays)

	out.TasksDueSoon, err = s.queryTasks(
		"SELECT "+taskColumns+" "+taskJoin+
			" WHERE t.due_date IS NOT NULL AND t.status != 'done'"+
			" AND date(t.due_date) >= date(?) AND date(t.due_date) <= date(?)"+
			" ORDER BY t.due_date ASC LIMIT ?",
		timeToString(today), timeToString(horizon), dueSoonLimit,
	)
	if err != nil {
		return nil, err
	}

	out.OverdueTasks, err = s.queryTasks(
		"SELECT "+taskColumns+" "+taskJoin+
			" WHERE t.due_date IS NOT NULL AND t.status != 'done'"+
			" AND date(t.due_date) < date(?)"+
			" ORDER BY t.due_date ASC LIMIT ?",
		timeToString(today), overdueLimit,
	)
	if err != nil {
		return nil, err
	}

	out.ActiveCampaigns, err = s.activeCampaignsWithProgress()
	if err != nil {
		return nil, err
	}

	out.RecentActivity, err = s.queryTasks(
		"SELECT "+taskColumns+" "+taskJoin+" ORDER BY t.updated_at DESC LIMIT ?",
		recentActivityLimit,
	)
	if err != nil {
		return nil, err
	}

	out.TeamWorkload, err = s.teamWorkload()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) countTasksBy(column, extraWhere string) (map[string]int, error) {
	query := "SELECT " + column + ", COUNT(*) FROM tasks"
	if extraWhere != "" {
		query += " WHERE " + extraWhere
	}
	query += " GROUP BY " + column

	rows, err := s.db.Read.Query(query)
	if err != nil {
		return nil, fmt.Errorf("count tasks by %s: %w", column, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// activeCampaignsWithProgress returns active and planning campaigns,
// most recently started first, each with its task breakdown.
func (s *Store) activeCampaignsWithProgress() ([]CampaignProgress, error) {
	rows, err := s.db.Read.Query(
		"SELECT "+campaignColumns+" "+campaignJoin+
			" WHERE c.status IN ('active', 'planning') ORDER BY c.start_date DESC LIMIT ?",
		activeCampaignLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("active campaigns: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	campaigns := []Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows, now)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := []CampaignProgress{}
	for _, c := range campaigns {
		stats, err := s.CampaignTaskStats(c.ID)
		if err != nil {
			return nil, err
		}
		breakdown := CampaignTaskBreakdown{
			Total:      stats[StatusTodo] + stats[StatusInProgress] + stats[StatusReview] + stats[StatusDone],
			Done:       stats[StatusDone],
			InProgress: stats[StatusInProgress],
			Todo:       stats[StatusTodo],
		}
		c.Progress = completionPercent(breakdown.Done, breakdown.Total)
		out = append(out, CampaignProgress{Campaign: c, TaskStats: breakdown})
	}
	return out, nil
}

func (s *Store) teamWorkload() ([]WorkloadEntry, error) {
	rows, err := s.db.Read.Query(
		`SELECT u.id, u.name, COUNT(*) AS task_count
		 FROM tasks t JOIN users u ON u.id = t.assignee_id
		 WHERE t.status != 'done'
		 GROUP BY u.id, u.name
		 ORDER BY task_count DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("team workload: %w", err)
	}
	defer rows.Close()

	entries := []WorkloadEntry{}
	for rows.Next() {
		var e WorkloadEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TaskCount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AnalyticsTaskStats breaks a campaign's tasks down along several axes.
type AnalyticsTaskStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByLabel    map[string]int `json:"byLabel"`
	ByAssignee map[string]int `json:"byAssignee"`
}

// CampaignAnalytics is the per-campaign analytics payload.
type CampaignAnalytics struct {
	Campaign  *Campaign          `json:"campaign"`
	TaskStats AnalyticsTaskStats `json:"taskStats"`
	Progress  int                `json:"progress"`
}

// AnalyzeCampaign computes per-campaign breakdowns by status, label, and
// assignee, plus the completion percentage.
func (s *Store) AnalyzeCampaign(id string) (*CampaignAnalytics, error) {
	campaign, err := s.GetCampaign(id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.ListTasks(TaskFilter{Campaign: id})
	if err != nil {
		return nil, err
	}

	stats := AnalyticsTaskStats{
		Total:      len(tasks),
		ByStatus:   map[string]int{},
		ByLabel:    map[string]int{},
		ByAssignee: map[string]int{},
	}
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		for _, label := range t.Labels {
			stats.ByLabel[label]++
		}
		if t.Assignee != nil {
			stats.ByAssignee[t.Assignee.Name]++
		}
	}

	return &CampaignAnalytics{
		Campaign:  campaign,
		TaskStats: stats,
		Progress:  completionPercent(stats.ByStatus[StatusDone], stats.Total),
	}, nil
}

func completionPercent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
