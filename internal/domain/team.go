package domain

import "time"

// Team is an organizational unit that owns KPI data and social feeds.
type Team struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
