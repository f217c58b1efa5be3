package domain

import "time"

// Campaign groups KPI entries and goals under a named initiative.
type Campaign struct {
	ID          int64     `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	StartDate   time.Time `yaml:"start_date"`
	EndDate     time.Time `yaml:"end_date"`
	UserID      string    `yaml:"-"`
}
