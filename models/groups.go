package models

import "time"

type Group struct {
	ID          string    `json:"_id"`
	GroupID     string    `json:"group_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Admin       *UserRef  `json:"admin_id"`
	Members     []UserRef `json:"users"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdminName returns the admin's name or email, or "—" when the group has none.
func (g Group) AdminName() string {
	if g.Admin == nil {
		return "—"
	}
	return g.Admin.DisplayName()
}

type DefaultActivity struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	Points      int    `json:"points"`
}

type GroupDetail struct {
	Group             *Group            `json:"group"`
	DefaultActivities []DefaultActivity `json:"default_activities"`
}
