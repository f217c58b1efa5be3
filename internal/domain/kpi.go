package domain

import (
	"fmt"
	"time"
)

// EntryType classifies a KPI entry.
type EntryType string

const (
	EntryTypeOutput  EntryType = "Output"
	EntryTypeOuttake EntryType = "Outtake"
	EntryTypeOutcome EntryType = "Outcome"
)

// EntryTypes lists the entry types in display order.
var EntryTypes = []EntryType{EntryTypeOutput, EntryTypeOuttake, EntryTypeOutcome}

// ParseEntryType validates raw against the known entry types.
func ParseEntryType(raw string) (EntryType, error) {
	for _, t := range EntryTypes {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entry type %q", raw)
}

// Well-known metric names used by the dashboard cards.
const (
	MetricMediaPickups   = "Media pickups"
	MetricEngagementRate = "Engagement rate"
	MetricNewsRelease    = "News release"
	MetricVideoViews     = "Video views"
)

// KpiEntry is one recorded metric observation.
type KpiEntry struct {
	ID         int64     `yaml:"id"`
	Date       time.Time `yaml:"date"`
	Type       EntryType `yaml:"type"`
	Metric     string    `yaml:"metric"`
	Quantity   float64   `yaml:"quantity"`
	Notes      string    `yaml:"notes"`
	CampaignID *int64    `yaml:"campaign_id"`
	Link       string    `yaml:"link"`
	UserID     string    `yaml:"-"`
}
