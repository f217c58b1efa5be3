package dashboard

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// LatestValue is the most recent observation of a metric.
type LatestValue struct {
	Quantity float64   `json:"quantity"`
	Date     time.Time `json:"date"`
}

// GoalProgress is an active goal with its progress inside the goal window.
type GoalProgress struct {
	Goal         domain.Goal `json:"goal"`
	Current      float64     `json:"current"`
	Percent      float64     `json:"percent"`
	DaysLeft     string      `json:"days_left"`
	CampaignName string      `json:"campaign_name,omitempty"`
}

// MonthlyPoint is one bar of the media pickups chart.
type MonthlyPoint struct {
	Month string  `json:"month"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TypeCount is one slice of the entry-type chart.
type TypeCount struct {
	Type  domain.EntryType `json:"type"`
	Count int              `json:"count"`
}

// Summary feeds the dashboard cards and charts.
type Summary struct {
	CampaignID     *int64         `json:"campaign_id,omitempty"`
	MediaPickups   *LatestValue   `json:"media_pickups"`
	EngagementRate *LatestValue   `json:"engagement_rate"`
	VideoViews     *LatestValue   `json:"video_views"`
	NewsReleases   float64        `json:"news_releases"`
	ActiveGoals    []GoalProgress `json:"active_goals"`
	MonthlyPickups []MonthlyPoint `json:"monthly_pickups"`
	CountsByType   []TypeCount    `json:"counts_by_type"`
}

// Input bundles the collections the summary is computed from.
type Input struct {
	Entries   []domain.KpiEntry
	Campaigns []domain.Campaign
	Goals     []domain.Goal
	// CampaignID narrows entries and goals to one campaign when set.
	CampaignID *int64
	Now        time.Time
}

// Summarize computes the dashboard for in.
func Summarize(in Input) Summary {
	entries := filterByCampaign(in.Entries, in.CampaignID)
	return Summary{
		CampaignID:     in.CampaignID,
		MediaPickups:   latest(entries, domain.MetricMediaPickups),
		EngagementRate: latest(entries, domain.MetricEngagementRate),
		VideoViews:     latest(entries, domain.MetricVideoViews),
		NewsReleases:   total(entries, domain.MetricNewsRelease),
		ActiveGoals:    activeGoals(in, entries),
		MonthlyPickups: monthly(entries, domain.MetricMediaPickups),
		CountsByType:   countByType(entries),
	}
}

// Percent returns current/target as a percentage capped at 100, or 0 for a non-positive target.
func Percent(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(current/target*100, 100)
}

// DaysLeftLabel describes how long a goal ending on end has left as of now.
func DaysLeftLabel(end, now time.Time) string {
	diff := dayOf(end).Sub(dayOf(now))
	days := int(math.Ceil(diff.Hours() / 24))
	switch {
	case days < 0:
		return "Ended"
	case days == 0:
		return "Ends today"
	case days == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

func filterByCampaign(entries []domain.KpiEntry, campaignID *int64) []domain.KpiEntry {
	if campaignID == nil {
		return entries
	}
	out := make([]domain.KpiEntry, 0, len(entries))
	for _, e := range entries {
		if e.CampaignID != nil && *e.CampaignID == *campaignID {
			out = append(out, e)
		}
	}
	return out
}

func latest(entries []domain.KpiEntry, metric string) *LatestValue {
	var best *domain.KpiEntry
	for i := range entries {
		e := &entries[i]
		if e.Metric != metric {
			continue
		}
		if best == nil || e.Date.After(best.Date) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return &LatestValue{Quantity: best.Quantity, Date: best.Date}
}

func total(entries []domain.KpiEntry, metric string) float64 {
	var sum float64
	for _, e := range entries {
		if e.Metric == metric {
			sum += e.Quantity
		}
	}
	return sum
}

func activeGoals(in Input, entries []domain.KpiEntry) []GoalProgress {
	names := make(map[int64]string, len(in.Campaigns))
	for _, c := range in.Campaigns {
		names[c.ID] = c.Name
	}

	out := []GoalProgress{}
	for _, g := range in.Goals {
		if !g.ActiveOn(in.Now) {
			continue
		}
		if in.CampaignID != nil && (g.CampaignID == nil || *g.CampaignID != *in.CampaignID) {
			continue
		}
		current := progress(g, entries)
		gp := GoalProgress{
			Goal:     g,
			Current:  current,
			Percent:  Percent(current, g.TargetValue),
			DaysLeft: DaysLeftLabel(g.EndDate, in.Now),
		}
		if g.CampaignID != nil {
			gp.CampaignName = names[*g.CampaignID]
		}
		out = append(out, gp)
	}
	return out
}

func progress(g domain.Goal, entries []domain.KpiEntry) float64 {
	var sum float64
	for _, e := range entries {
		if e.Metric != g.Metric {
			continue
		}
		if e.Date.Before(g.StartDate) || e.Date.After(g.EndDate) {
			continue
		}
		sum += e.Quantity
	}
	return sum
}

func monthly(entries []domain.KpiEntry, metric string) []MonthlyPoint {
	sums := map[string]float64{}
	labels := map[string]string{}
	for _, e := range entries {
		if e.Metric != metric {
			continue
		}
		key := e.Date.Format("2006-01")
		sums[key] += e.Quantity
		labels[key] = e.Date.Format("Jan 06")
	}
	out := make([]MonthlyPoint, 0, len(sums))
	for key, v := range sums {
		out = append(out, MonthlyPoint{Month: key, Label: labels[key], Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func countByType(entries []domain.KpiEntry) []TypeCount {
	counts := map[domain.EntryType]int{}
	for _, e := range entries {
		counts[e.Type]++
	}
	out := []TypeCount{}
	for _, t := range domain.EntryTypes {
		if n := counts[t]; n > 0 {
			out = append(out, TypeCount{Type: t, Count: n})
		}
	}
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
