package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var seedTaskCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo data for development",
}

var seedDemoCmd = &cobra.Command{
	Use:          "demo",
	Short:        "Seed demo users, campaigns, and tasks for the board and dashboard",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedTaskCount <= 0 {
			return fmt.Errorf("--tasks must be > 0")
		}

		type created struct {
			ID string `json:"id"`
		}

		users := []map[string]any{
			{"name": "Maya Lindqvist", "email": "maya@example.com", "role": "admin"},
			{"name": "Jonas Weber", "email": "jonas@example.com", "role": "manager"},
			{"name": "Priya Nair", "email": "priya@example.com", "role": "member"},
			{"name": "Tom Okafor", "email": "tom@example.com", "role": "member"},
		}
		userIDs := make([]string, 0, len(users))
		for _, u := range users {
			var res created
			if err := postJSON("/api/users", u, &res); err != nil {
				return err
			}
			userIDs = append(userIDs, res.ID)
		}

		now := time.Now().UTC()
		campaigns := []map[string]any{
			{
				"name":        "Spring Product Launch",
				"description": "Cross-channel launch for the spring release",
				"status":      "active",
				"budget":      25000,
				"startDate":   now.AddDate(0, 0, -14).Format("2006-01-02"),
				"endDate":     now.AddDate(0, 1, 0).Format("2006-01-02"),
				"owner":       userIDs[0],
				"color":       "#6366f1",
				"kpis": []map[string]any{
					{"name": "Signups", "target": 5000, "current": 1800, "unit": "users"},
					{"name": "CTR", "target": 3.5, "current": 2.1, "unit": "%"},
				},
			},
			{
				"name":      "Newsletter Revamp",
				"status":    "planning",
				"budget":    4000,
				"startDate": now.AddDate(0, 0, 7).Format("2006-01-02"),
				"endDate":   now.AddDate(0, 2, 0).Format("2006-01-02"),
				"owner":     userIDs[1],
				"color":     "#f59e0b",
			},
		}
		campaignIDs := make([]string, 0, len(campaigns))
		for _, c := range campaigns {
			var res created
			if err := postJSON("/api/campaigns", c, &res); err != nil {
				return err
			}
			campaignIDs = append(campaignIDs, res.ID)
		}

		statuses := []string{"todo", "todo", "in-progress", "review", "done"}
		priorities := []string{"low", "medium", "high", "urgent"}
		labels := [][]string{{"content"}, {"seo", "ads"}, {"social"}, {"email"}, {"design", "video"}}

		for i := 0; i < seedTaskCount; i++ {
			task := map[string]any{
				"title":         fmt.Sprintf("Demo task %d", i+1),
				"description":   "Seeded for development",
				"status":        statuses[i%len(statuses)],
				"priority":      priorities[i%len(priorities)],
				"labels":        labels[i%len(labels)],
				"campaign":      campaignIDs[i%len(campaignIDs)],
				"assignee":      userIDs[i%len(userIDs)],
				"dueDate":       now.AddDate(0, 0, (i%14)-3).Format("2006-01-02"),
				"scheduledDate": now.AddDate(0, 0, i%21).Format("2006-01-02"),
			}
			if err := postJSON("/api/tasks", task, nil); err != nil {
				return err
			}
		}

		fmt.Printf("seeded %d users, %d campaigns, %d tasks\n", len(userIDs), len(campaignIDs), seedTaskCount)
		return nil
	},
}

func init() {
	seedDemoCmd.Flags().IntVar(&seedTaskCount, "tasks", 20, "Number of demo tasks to create")
	addClientFlags(seedDemoCmd)
	seedCmd.AddCommand(seedDemoCmd)
}
