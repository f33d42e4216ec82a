package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const campaignColumns = `c.id, c.name, c.description, c.status, c.budget, c.start_date, c.end_date,
	c.color, c.kpis, c.created_at, c.updated_at,
	u.id, u.name, u.email, u.avatar`

const campaignJoin = "FROM campaigns c LEFT JOIN users u ON u.id = c.owner_id"

type campaignDoc struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Budget      *float64 `json:"budget"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	Owner       *string  `json:"owner"`
	Color       *string  `json:"color"`
	KPIs        []KPI    `json:"kpis"`
}

// CreateCampaign inserts a new campaign.
func (s *Store) CreateCampaign(doc json.RawMessage) (*Campaign, error) {
	if err := validateDocument(campaignCreateSchema, doc); err != nil {
		return nil, err
	}
	var req campaignDoc
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, &ValidationError{Message: "invalid JSON body"}
	}

	start, err := parseDate("startDate", *req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("endDate", *req.EndDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &Campaign{
		ID:        NewCampaignID(),
		Name:      strings.TrimSpace(*req.Name),
		Status:    CampaignPlanning,
		StartDate: start,
		EndDate:   end,
		Color:     DefaultCampaignColor,
		KPIs:      req.KPIs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Budget != nil {
		c.Budget = *req.Budget
	}
	if req.Color != nil && *req.Color != "" {
		c.Color = *req.Color
	}
	if c.KPIs == nil {
		c.KPIs = []KPI{}
	}

	kpisJSON, err := json.Marshal(c.KPIs)
	if err != nil {
		return nil, fmt.Errorf("marshal kpis: %w", err)
	}

	var ownerID *string
	if req.Owner != nil && *req.Owner != "" {
		ownerID = req.Owner
	}

	_, err = s.writer.Execute(
		`INSERT INTO campaigns (id, name, description, status, budget, start_date, end_date, owner_id, color, kpis, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Status, c.Budget,
		timeToString(c.StartDate), timeToString(c.EndDate),
		ownerID, c.Color, string(kpisJSON),
		timeToString(c.CreatedAt), timeToString(c.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}
	return s.GetCampaign(c.ID)
}

// ListCampaigns returns all campaigns, newest first, with owner projections.
func (s *Store) ListCampaigns() ([]Campaign, error) {
	rows, err := s.db.Read.Query("SELECT " + campaignColumns + " " + campaignJoin + " ORDER BY c.created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
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
	return campaigns, rows.Err()
}

// GetCampaign returns one campaign by ID.
func (s *Store) GetCampaign(id string) (*Campaign, error) {
	row := s.db.Read.QueryRow("SELECT "+campaignColumns+" "+campaignJoin+" WHERE c.id = ?", id)
	c, err := scanCampaign(row, time.Now().UTC())
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return c, err
}

// CampaignTaskStats returns task counts per status for one campaign, with
// all board columns present even when zero.
func (s *Store) CampaignTaskStats(id string) (map[string]int, error) {
	rows, err := s.db.Read.Query(
		"SELECT status, COUNT(*) FROM tasks WHERE campaign_id = ? GROUP BY status", id)
	if err != nil {
		return nil, fmt.Errorf("campaign task stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int, len(TaskStatuses))
	for _, st := range TaskStatuses {
		stats[st] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats[status] = n
	}
	return stats, rows.Err()
}

// UpdateCampaign applies a partial update to a campaign.
func (s *Store) UpdateCampaign(id string, doc json.RawMessage) (*Campaign, error) {
	if err := validateDocument(campaignUpdateSchema, doc); err != nil {
		return nil, err
	}
	var req campaignDoc
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, &ValidationError{Message: "invalid JSON body"}
	}

	sets := []string{"updated_at = ?"}
	args := []interface{}{timeToString(time.Now().UTC())}
	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *req.Status)
	}
	if req.Budget != nil {
		sets = append(sets, "budget = ?")
		args = append(args, *req.Budget)
	}
	if req.StartDate != nil {
		start, err := parseDate("startDate", *req.StartDate)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "start_date = ?")
		args = append(args, timeToString(start))
	}
	if req.EndDate != nil {
		end, err := parseDate("endDate", *req.EndDate)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "end_date = ?")
		args = append(args, timeToString(end))
	}
	if req.Owner != nil {
		sets = append(sets, "owner_id = ?")
		if *req.Owner == "" {
			args = append(args, nil)
		} else {
			args = append(args, *req.Owner)
		}
	}
	if req.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *req.Color)
	}
	if req.KPIs != nil {
		kpisJSON, err := json.Marshal(req.KPIs)
		if err != nil {
			return nil, fmt.Errorf("marshal kpis: %w", err)
		}
		sets = append(sets, "kpis = ?")
		args = append(args, string(kpisJSON))
	}
	args = append(args, id)

	res, err := s.writer.Execute("UPDATE campaigns SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetCampaign(id)
}

// DeleteCampaign removes a campaign and every task that belongs to it.
// Both deletes run in one transaction so a failure leaves no orphans.
func (s *Store) DeleteCampaign(id string) error {
	found := false
	err := s.writer.ExecuteTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM tasks WHERE campaign_id = ?", id); err != nil {
			return fmt.Errorf("delete campaign tasks: %w", err)
		}
		res, err := tx.Exec("DELETE FROM campaigns WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete campaign: %w", err)
		}
		n, _ := res.RowsAffected()
		found = n > 0
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// CountCampaigns returns the total number of campaigns.
func (s *Store) CountCampaigns() (int, error) {
	var n int
	err := s.db.Read.QueryRow("SELECT COUNT(*) FROM campaigns").Scan(&n)
	return n, err
}

func scanCampaign(row rowScanner, now time.Time) (*Campaign, error) {
	var c Campaign
	var startDate, endDate, kpisJSON, createdAt, updatedAt string
	var ownerID, ownerName, ownerEmail, ownerAvatar sql.NullString
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Status, &c.Budget, &startDate, &endDate,
		&c.Color, &kpisJSON, &createdAt, &updatedAt,
		&ownerID, &ownerName, &ownerEmail, &ownerAvatar,
	)
	if err != nil {
		return nil, err
	}
	c.StartDate = parseStoredTime(startDate)
	c.EndDate = parseStoredTime(endDate)
	c.CreatedAt = parseStoredTime(createdAt)
	c.UpdatedAt = parseStoredTime(updatedAt)
	if err := json.Unmarshal([]byte(kpisJSON), &c.KPIs); err != nil {
		return nil, fmt.Errorf("unmarshal kpis for %s: %w", c.ID, err)
	}
	if c.KPIs == nil {
		c.KPIs = []KPI{}
	}
	if ownerID.Valid {
		c.Owner = &UserRef{
			ID:     ownerID.String,
			Name:   ownerName.String,
			Email:  ownerEmail.String,
			Avatar: ownerAvatar.String,
		}
	}
	c.Progress = c.ComputeProgress(now)
	return &c, nil
}
