package domain

import "time"

// Goal is a KPI target over a date window, optionally tied to a campaign.
type Goal struct {
	ID          int64     `yaml:"id"`
	Metric      string    `yaml:"metric"`
	TargetValue float64   `yaml:"target_value"`
	StartDate   time.Time `yaml:"start_date"`
	EndDate     time.Time `yaml:"end_date"`
	CampaignID  *int64    `yaml:"campaign_id"`
	UserID      string    `yaml:"-"`
}

// ActiveOn reports whether day falls within the goal window, ignoring time of day.
func (g Goal) ActiveOn(day time.Time) bool {
	d := truncateDay(day)
	return !truncateDay(g.StartDate).After(d) && !truncateDay(g.EndDate).Before(d)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
